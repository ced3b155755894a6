package features

import (
	"regexp"
	"strings"
)

// simpleAnchors are features detectable by the presence of one key anywhere
// in the document. Volumes and the two securityContext features need
// position-aware handling and are scanned separately.
var simpleAnchors = map[Feature]string{
	Replicas:               "replicas",
	Strategy:               "strategy",
	EnvVars:                "env",
	Ports:                  "ports",
	LivenessProbe:          "livenessProbe",
	ReadinessProbe:         "readinessProbe",
	StartupProbe:           "startupProbe",
	Resources:              "resources",
	VolumeMounts:           "volumeMounts",
	InitContainers:         "initContainers",
	ServiceAccount:         "serviceAccountName",
	TerminationGracePeriod: "terminationGracePeriodSeconds",
	HostNetwork:            "hostNetwork",
	DNSPolicy:              "dnsPolicy",
	Command:                "command",
	Args:                   "args",
	ImagePullPolicy:        "imagePullPolicy",
}

var anchorPatterns = func() map[Feature]*regexp.Regexp {
	m := make(map[Feature]*regexp.Regexp, len(simpleAnchors))
	for f, key := range simpleAnchors {
		m[f] = regexp.MustCompile(`(?m)^\s*(?:- )?` + key + `:`)
	}
	return m
}()

var (
	reContainersKey = regexp.MustCompile(`(?m)^\s*containers:`)
	reSecurityCtx   = regexp.MustCompile(`(?m)^\s*securityContext:`)
)

// Detect scans a single Deployment document and reports which structural
// features it uses. The document may be templated; detection works on the
// raw text, not a parsed tree.
func Detect(doc string) Set {
	s := NewSet()
	if strings.TrimSpace(doc) == "" {
		return s
	}
	for f, re := range anchorPatterns {
		if re.MatchString(doc) {
			s[f] = true
		}
	}
	detectVolumes(doc, s)
	detectSecurityContexts(doc, s)
	return s
}

// detectVolumes marks Volumes only for a pod-level volumes: key, which it
// recognizes by finding a less-indented spec: line within a short window
// above. A volumes: that is really a mount list entry or sits under a
// container never has such a parent nearby.
func detectVolumes(doc string, s Set) {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		stripped := strings.TrimLeft(line, " ")
		if !strings.HasPrefix(stripped, "volumes:") {
			continue
		}
		indent := len(line) - len(stripped)
		lo := i - 10
		if lo < 0 {
			lo = 0
		}
		for j := lo; j < i; j++ {
			prev := lines[j]
			prevStripped := strings.TrimLeft(prev, " ")
			if !strings.HasPrefix(prevStripped, "spec:") {
				continue
			}
			if len(prev)-len(prevStripped) < indent {
				s[Volumes] = true
				return
			}
		}
	}
}

// detectSecurityContexts classifies each securityContext: by raw position
// relative to the first containers: key. Before it is pod-level, at or
// after it is container-level. With no containers key at all the context
// can only be pod-level.
func detectSecurityContexts(doc string, s Set) {
	containersAt := -1
	if loc := reContainersKey.FindStringIndex(doc); loc != nil {
		containersAt = loc[0]
	}
	for _, loc := range reSecurityCtx.FindAllStringIndex(doc, -1) {
		if containersAt >= 0 && loc[0] > containersAt {
			s[ContainerSecurityContext] = true
		} else {
			s[PodSecurityContext] = true
		}
	}
}
