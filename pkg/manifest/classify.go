package manifest

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/chartforge/helm-refactor/pkg/kube"
)

// KindUnknown is returned when a document has no resolvable kind key.
const KindUnknown = "Unknown"

var (
	reKind = regexp.MustCompile(`(?m)^kind:\s*(\w+)`)

	// app label anywhere in the text. The most stable signal: helmify keeps
	// it literal even when every name is templated.
	reAppLabel = regexp.MustCompile(`app:\s*(\S+)`)

	// name: {{ include "chart.fullname" . }}-servicename
	reIncludeSuffix = regexp.MustCompile(`name:\s*\{\{\s*include\s+"[^"]+"\s+\.\s*\}\}-(\S+)`)

	// metadata:
	//   name: servicename
	reLiteralName = regexp.MustCompile(`metadata:\s*\n\s*name:\s*(\S+)`)
)

// KindOf resolves the resource kind of a raw document, or KindUnknown.
func KindOf(doc string) string {
	if m := reKind.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	return KindUnknown
}

// A nameRule is one pure resolution strategy: given the raw text, return the
// owning service name or "". Rules are applied in order, first success wins,
// which keeps the precedence auditable and testable per rule.
type nameRule struct {
	name    string
	resolve func(doc string) string
}

func appLabelName(doc string) string {
	if m := reAppLabel.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	return ""
}

func includeSuffixName(doc string) string {
	if m := reIncludeSuffix.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	return ""
}

// literalMetadataName captures a plain metadata name. A captured value that
// still contains template braces is unusable as a key, so it re-resolves via
// the app label instead.
func literalMetadataName(doc string) string {
	m := reLiteralName.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	if strings.Contains(m[1], "{{") {
		return appLabelName(doc)
	}
	return m[1]
}

var serviceNameRules = []nameRule{
	{"app-label", appLabelName},
	{"templated-fullname", includeSuffixName},
	{"literal-name", literalMetadataName},
}

// declaredNameRules skip the app label: used only to detect a second distinct
// Service document hiding behind a shared label.
var declaredNameRules = []nameRule{
	{"templated-fullname", includeSuffixName},
	{"literal-name", literalMetadataName},
}

func resolveName(doc string, rules []nameRule) (name, rule string) {
	for _, r := range rules {
		if v := r.resolve(doc); v != "" {
			return v, r.name
		}
	}
	return "", ""
}

// ServiceName resolves the owning service name for a document, or "" when no
// strategy matches.
func ServiceName(doc string) string {
	name, _ := resolveName(doc, serviceNameRules)
	return name
}

// DeclaredName resolves the service name in prefer-declared-name mode.
func DeclaredName(doc string) string {
	name, _ := resolveName(doc, declaredNameRules)
	return name
}

// Classifier assigns raw documents to service bundles. Classification of one
// document never depends on another having been classified first, except for
// the first-Service-wins-the-primary-slot rule.
type Classifier struct {
	set     *BundleSet
	log     *zap.Logger
	skipped int
}

// NewClassifier returns a classifier accumulating into a fresh bundle set.
func NewClassifier(log *zap.Logger) *Classifier {
	return &Classifier{set: NewBundleSet(), log: log}
}

// Add classifies one document. Documents whose service cannot be resolved are
// skipped with a warning; Add never fails the run.
func (c *Classifier) Add(doc string) {
	kind := KindOf(doc)
	name, rule := resolveName(doc, serviceNameRules)
	if name == "" {
		c.skipped++
		c.log.Warn("could not determine service name, skipping document",
			zap.String("kind", kind))
		return
	}

	bundle := c.set.Get(name)
	switch kind {
	case "Deployment":
		// Last one wins; two Deployments per service is not well-formed input.
		if bundle.HasDeployment() {
			c.log.Warn("duplicate Deployment for service, replacing",
				zap.String("service", name))
		}
		bundle.Deployment = doc
	case "Service":
		if !bundle.HasService() {
			bundle.Service = doc
			break
		}
		// A second Service under the same app label. If it declares its own
		// distinct name (e.g. frontend-external next to frontend), it is a
		// separate service; otherwise it lands in the catch-all slot.
		declared := DeclaredName(doc)
		if declared != "" && declared != name {
			c.log.Debug("additional Service resolved to distinct bundle",
				zap.String("service", declared), zap.String("shared_label", name))
			c.set.Get(declared).Service = doc
		} else {
			bundle.Other = append(bundle.Other, doc)
		}
	case "ServiceAccount":
		bundle.ServiceAccount = doc
	default:
		bundle.Other = append(bundle.Other, doc)
		c.log.Debug("unclassified kind kept as-is",
			zap.String("kind", kind),
			zap.String("service", name),
			zap.Bool("builtin", kube.KnownKind(kind)))
		return
	}

	c.log.Debug("classified document",
		zap.String("kind", kind),
		zap.String("service", name),
		zap.String("rule", rule))
}

// Bundles returns the accumulated bundle set.
func (c *Classifier) Bundles() *BundleSet {
	return c.set
}

// Skipped returns how many documents were dropped as service-unresolved.
func (c *Classifier) Skipped() int {
	return c.skipped
}
