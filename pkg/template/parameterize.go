package template

import "regexp"

// Parameterizer rewrites one service's own templated manifest text into a
// form renderable under the shared dict context: service-scoped values
// paths lose their service segment, helper-include calls are repointed at
// .root, and literal service names become {{ .serviceName }}. Structure and
// hardcoded values are preserved.
type Parameterizer struct {
	chart string

	reChartRef      *regexp.Regexp
	reClusterDomain *regexp.Regexp
}

func NewParameterizer(chartName string) *Parameterizer {
	return &Parameterizer{
		chart:           chartName,
		reChartRef:      regexp.MustCompile(`\.Chart\.`),
		reClusterDomain: regexp.MustCompile(`\.Values\.kubernetesClusterDomain`),
	}
}

// Deployment rewrites a Deployment document for the given service.
func (p *Parameterizer) Deployment(text, service string) string {
	text = p.rewriteCommon(text, service)
	text = p.reChartRef.ReplaceAllString(text, ".root.Chart.")
	text = p.reClusterDomain.ReplaceAllString(text, ".root.Values.kubernetesClusterDomain")
	return text
}

// Service rewrites a Service document for the given service.
func (p *Parameterizer) Service(text, service string) string {
	return p.rewriteCommon(text, service)
}

func (p *Parameterizer) rewriteCommon(text, service string) string {
	svc := regexp.QuoteMeta(service)
	cn := regexp.QuoteMeta(p.chart)

	// .Values.<service>.field -> .Values.field
	reValues := regexp.MustCompile(`\.Values\.` + svc + `\.(\w+)`)
	text = reValues.ReplaceAllString(text, ".Values.$1")

	// {{ include "chart.fullname" . }}-<service> -> rooted include + serviceName
	reFullname := regexp.MustCompile(`\{\{-?\s*include\s+"` + cn + `\.fullname"\s+\.\s*\}\}-` + svc)
	text = reFullname.ReplaceAllString(text,
		`{{ include "`+p.chart+`.fullname" .root }}-{{ .serviceName }}`)

	// {{- include "chart.labels" . ... -> context repointed at .root
	reLabels := regexp.MustCompile(`(\{\{-?\s*)include\s+"` + cn + `\.(labels|selectorLabels)"\s+\.(\s)`)
	text = reLabels.ReplaceAllString(text, `${1}include "`+p.chart+`.$2" .root$3`)

	// app: <service> -> app: {{ .serviceName }}
	reAppLabel := regexp.MustCompile(`(?m)^(\s*)app:\s*` + svc + `\s*$`)
	text = reAppLabel.ReplaceAllString(text, "${1}app: {{ .serviceName }}")

	return text
}
