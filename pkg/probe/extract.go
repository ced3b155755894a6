// Package probe recovers probe and port configurations from templated
// Deployment text. Helmify output mixes Go template expressions into the
// YAML, so extraction scans indentation blocks and only hands clean blocks
// to the YAML parser.
package probe

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chartforge/helm-refactor/pkg/parser"
)

// Config is one probe configuration as loosely-typed YAML. Manual
// extraction adds a "type" key naming the handler (httpGet, tcpSocket,
// grpc, exec) alongside the handler's own mapping.
type Config map[string]any

// Settings holds everything recovered for one container.
type Settings struct {
	LivenessProbe  Config `yaml:"livenessProbe,omitempty"`
	ReadinessProbe Config `yaml:"readinessProbe,omitempty"`
	StartupProbe   Config `yaml:"startupProbe,omitempty"`
	ContainerPort  int    `yaml:"containerPort,omitempty"`
}

// Empty reports whether nothing was recovered.
func (s Settings) Empty() bool {
	return s.LivenessProbe == nil && s.ReadinessProbe == nil &&
		s.StartupProbe == nil && s.ContainerPort == 0
}

var (
	reContainerPort = regexp.MustCompile(`containerPort:\s*(\d+)`)
	reFirstName     = regexp.MustCompile(`(?s)containers:\s*\n\s*-[^:]*name:\s*(\w+)`)
)

var handlerKeys = map[string]bool{
	"httpGet":   true,
	"tcpSocket": true,
	"grpc":      true,
	"exec":      true,
}

var timingKeys = map[string]bool{
	"initialDelaySeconds": true,
	"periodSeconds":       true,
	"timeoutSeconds":      true,
	"successThreshold":    true,
	"failureThreshold":    true,
}

// Extract recovers the probe and port settings present in text, which may
// be a whole Deployment document or a single container block.
func Extract(text string) Settings {
	s := Settings{
		LivenessProbe:  ExtractProbe(text, "livenessProbe"),
		ReadinessProbe: ExtractProbe(text, "readinessProbe"),
		StartupProbe:   ExtractProbe(text, "startupProbe"),
	}
	if m := reContainerPort.FindStringSubmatch(text); m != nil {
		s.ContainerPort, _ = strconv.Atoi(m[1])
	}
	return s
}

// ExtractAll recovers settings for every container in the document, keyed
// by container name. Documents where no container blocks can be found get
// a single "server" entry (or whatever the first name after containers:
// is) so downstream injection always has a target.
func ExtractAll(doc string) map[string]Settings {
	out := make(map[string]Settings)
	blocks := parser.ContainerBlocks(doc)
	if len(blocks) == 0 {
		out[fallbackName(doc)] = Extract(doc)
		return out
	}
	for _, block := range blocks {
		name := blockName(block)
		if name == "" {
			name = "server"
		}
		out[name] = Extract(block)
	}
	return out
}

// ExtractProbe isolates the named probe's indentation block and parses it.
// Blocks containing template expressions, and blocks the YAML parser
// rejects, go through manual key scanning instead. Returns nil when the
// probe is absent.
func ExtractProbe(text, name string) Config {
	block := probeBlock(text, name)
	if block == "" {
		return nil
	}
	if strings.Contains(block, "{{") {
		return manualProbe(block, name)
	}

	// Decode into plain map[string]any so nested mappings come out as
	// map[string]any; yaml.v3 would otherwise reuse the named Config type
	// for every nested mapping.
	var parsed map[string]map[string]any
	if err := yaml.Unmarshal([]byte(block), &parsed); err != nil {
		return manualProbe(block, name)
	}
	return Config(parsed[name])
}

// probeBlock returns the probe key line plus every following non-blank
// line indented deeper than it.
func probeBlock(text, name string) string {
	lines := strings.Split(text, "\n")
	start := -1
	startIndent := 0
	for i, line := range lines {
		stripped := strings.TrimLeft(line, " ")
		if strings.HasPrefix(stripped, name+":") {
			start = i
			startIndent = len(line) - len(stripped)
			break
		}
	}
	if start < 0 {
		return ""
	}

	block := []string{lines[start]}
	for _, line := range lines[start+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line)-len(strings.TrimLeft(line, " ")) <= startIndent {
			break
		}
		block = append(block, line)
	}
	return strings.Join(block, "\n")
}

// manualProbe scans a probe block line by line when YAML parsing is off
// the table. Handler keys set the type discriminator and collect their
// sub-fields; timing keys are coerced to int when the value is numeric.
func manualProbe(block, name string) Config {
	cfg := Config{}
	probeIndent := -1
	handler := ""

	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if strings.Contains(line, name) {
			probeIndent = indent
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case handlerKeys[key]:
			cfg["type"] = key
			cfg[key] = map[string]any{}
			handler = key
		case timingKeys[key]:
			cfg[key] = coerce(value)
		case handler != "" && indent > probeIndent:
			sub := cfg[handler].(map[string]any)
			if value == "" {
				sub[key] = nil
			} else {
				sub[key] = coerce(value)
			}
		}
	}

	if len(cfg) == 0 {
		return nil
	}
	return cfg
}

func coerce(value string) any {
	if n, err := strconv.Atoi(value); err == nil && value != "" {
		return n
	}
	return value
}

func blockName(block string) string {
	name := ""
	best := -1
	for _, line := range strings.Split(block, "\n") {
		stripped := strings.TrimLeft(line, " ")
		if !strings.HasPrefix(stripped, "- name:") {
			continue
		}
		indent := len(line) - len(stripped)
		if best < 0 || indent < best {
			best = indent
			name = strings.TrimSpace(strings.TrimPrefix(stripped, "- name:"))
		}
	}
	return name
}

func fallbackName(doc string) string {
	if m := reFirstName.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	return "server"
}
