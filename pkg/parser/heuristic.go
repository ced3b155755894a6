package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reHeadAPIVersion = regexp.MustCompile(`^apiVersion:\s*(.+)`)
	reHeadKind       = regexp.MustCompile(`^kind:\s*(.+)`)

	// name: {{ include "chart.fullname" . }}-suffix
	reNameIncludeSuffix = regexp.MustCompile(`name:\s*\{\{\s*include\s+"[^"]+"\s+\.\s*\}\}-(\S+)`)
	// any brace template followed by a suffix, e.g. name: {{ .Release.Name }}-suffix
	reNameTemplateSuffix = regexp.MustCompile(`name:\s*\{\{[^}]*\}\}-(\S+)`)
	// plain literal name
	reNameLiteral = regexp.MustCompile(`(?m)^\s*name:\s*([A-Za-z0-9][A-Za-z0-9._-]*)\s*$`)

	reAppLabel = regexp.MustCompile(`app:\s*(\S+)`)
	reReplicas = regexp.MustCompile(`(?m)^\s*replicas:\s*(\d+)`)

	reServiceAccountSuffix  = regexp.MustCompile(`serviceAccountName:\s*\{\{[^}]*\}\}-(\S+)`)
	reServiceAccountLiteral = regexp.MustCompile(`serviceAccountName:\s*([A-Za-z0-9][A-Za-z0-9._-]*)\s*$`)

	reSecurityContext = regexp.MustCompile(`(?m)^\s*securityContext:`)
	reServiceType     = regexp.MustCompile(`(?m)^\s*type:\s*(\S+)`)
	rePortNumber      = regexp.MustCompile(`(?m)^\s*(?:- )?port:\s*(\d+)`)
	reTargetPort      = regexp.MustCompile(`(?m)^\s*(?:- )?targetPort:\s*(\d+)`)
	rePortName        = regexp.MustCompile(`(?m)^\s*(?:- )?name:\s*(\S+)`)
	reProtocol        = regexp.MustCompile(`(?m)^\s*(?:- )?protocol:\s*(\S+)`)
)

// extractHead finds apiVersion and kind from lines matching the keys
// literally; templated values are skipped.
func extractHead(lines []string) (apiVersion, kind string) {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if m := reHeadAPIVersion.FindStringSubmatch(line); m != nil {
			val := strings.Trim(strings.TrimSpace(m[1]), `"'`)
			if !strings.Contains(val, "{{") && apiVersion == "" {
				apiVersion = val
			}
		}
		if m := reHeadKind.FindStringSubmatch(line); m != nil {
			val := strings.Trim(strings.TrimSpace(m[1]), `"'`)
			if !strings.Contains(val, "{{") && kind == "" {
				kind = val
			}
		}
		if apiVersion != "" && kind != "" {
			break
		}
	}
	return
}

// heuristicName recovers a resource name, trying templated forms before the
// literal form and falling back to the app label.
func heuristicName(doc string) string {
	if m := reNameIncludeSuffix.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	if m := reNameTemplateSuffix.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	if m := reNameLiteral.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	if m := reAppLabel.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	return ""
}

// specSection returns the text between the top-level spec: line and the next
// unindented key, or the end of the document.
func specSection(lines []string) string {
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "spec:") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "-") {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n")
}

// sectionAfterKey collects the lines following the first line whose stripped
// content starts with key, keeping only lines indented deeper than the key
// line. The scan stops at the first non-blank line at or above the key's
// indent.
func sectionAfterKey(lines []string, key string) string {
	anchor := -1
	anchorIndent := 0
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, key+":") {
			anchor = i
			anchorIndent = len(line) - len(strings.TrimLeft(line, " "))
			break
		}
	}
	if anchor < 0 {
		return ""
	}

	var block []string
	for _, line := range lines[anchor+1:] {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		// list items may sit at the key's own indent
		if indent < anchorIndent || (indent == anchorIndent && !strings.HasPrefix(stripped, "- ")) {
			break
		}
		block = append(block, line)
	}
	return strings.Join(block, "\n")
}

// Extract recovers a minimal structured resource by direct pattern search
// over raw text. Returns nil when no kind can be resolved; the raw text is
// still preserved elsewhere by the classifier.
func Extract(doc string) *Resource {
	lines := strings.Split(doc, "\n")
	apiVersion, kind := extractHead(lines)
	if kind == "" {
		return nil
	}

	meta := Metadata{Name: heuristicName(doc)}
	if m := reAppLabel.FindStringSubmatch(doc); m != nil {
		meta.Labels = map[string]string{"app": m[1]}
	}

	switch kind {
	case "Deployment":
		return &Resource{
			Kind:       KindDeployment,
			APIVersion: apiVersion,
			Deployment: extractDeployment(doc, lines, meta),
		}
	case "Service":
		return &Resource{
			Kind:       KindService,
			APIVersion: apiVersion,
			Service:    extractService(doc, lines, meta),
		}
	case "ServiceAccount":
		return &Resource{
			Kind:           KindServiceAccount,
			APIVersion:     apiVersion,
			ServiceAccount: &ServiceAccount{Meta: meta},
		}
	default:
		return nil
	}
}

func extractDeployment(doc string, lines []string, meta Metadata) *Deployment {
	d := &Deployment{Meta: meta, Replicas: 1}

	spec := specSection(lines)
	if m := reReplicas.FindStringSubmatch(spec); m != nil {
		d.Replicas, _ = strconv.Atoi(m[1])
	}
	if m := reAppLabel.FindStringSubmatch(spec); m != nil {
		d.SelectorApp = m[1]
	}

	containers := sectionAfterKey(lines, "containers")
	if containers != "" {
		d.Containers = ExtractContainers(containers)
	} else {
		d.Containers = ExtractContainers("")
	}

	if m := reServiceAccountSuffix.FindStringSubmatch(doc); m != nil {
		d.ServiceAccountName = m[1]
	} else if m := reServiceAccountLiteral.FindStringSubmatch(doc); m != nil {
		d.ServiceAccountName = m[1]
	}

	d.HasSecurityContext = reSecurityContext.MatchString(doc)
	return d
}

func extractService(doc string, lines []string, meta Metadata) *Service {
	s := &Service{Meta: meta, Type: "ClusterIP"}

	spec := specSection(lines)
	if m := reServiceType.FindStringSubmatch(spec); m != nil && !strings.Contains(m[1], "{{") {
		s.Type = m[1]
	}
	if app, ok := meta.Labels["app"]; ok {
		s.Selector = map[string]string{"app": app}
	}

	ports := sectionAfterKey(lines, "ports")
	if ports == "" {
		return s
	}
	for _, item := range splitListItems(ports) {
		var p ServicePort
		if m := rePortName.FindStringSubmatch(item); m != nil && !strings.Contains(m[1], "{{") {
			p.Name = m[1]
		}
		if m := rePortNumber.FindStringSubmatch(item); m != nil {
			n, _ := strconv.Atoi(m[1])
			p.Port = int32(n)
		}
		if m := reTargetPort.FindStringSubmatch(item); m != nil {
			n, _ := strconv.Atoi(m[1])
			p.TargetPort = int32(n)
		}
		if p.TargetPort == 0 {
			p.TargetPort = p.Port
		}
		p.Protocol = "TCP"
		if m := reProtocol.FindStringSubmatch(item); m != nil && !strings.Contains(m[1], "{{") {
			p.Protocol = m[1]
		}
		if p.Port != 0 {
			s.Ports = append(s.Ports, p)
		}
	}
	return s
}

// splitListItems cuts a YAML list text into items on "- " lines at the
// outermost item indent.
func splitListItems(section string) []string {
	var items []string
	var current []string
	itemIndent := -1

	flush := func() {
		if len(current) > 0 {
			items = append(items, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range strings.Split(section, "\n") {
		stripped := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if strings.HasPrefix(stripped, "- ") {
			if itemIndent < 0 {
				itemIndent = indent
			}
			if indent == itemIndent {
				flush()
			}
		}
		current = append(current, line)
	}
	flush()
	return items
}
