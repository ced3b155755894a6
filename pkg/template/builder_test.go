package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/chartforge/helm-refactor/pkg/features"
	"github.com/chartforge/helm-refactor/pkg/manifest"
)

func testBuilder() *Builder {
	return NewBuilder(manifest.ChartInfo{Name: "helm", Version: "0.1.0", AppVersion: "0.1.0"}, zap.NewNop())
}

func TestBuildEmitsOnlyUnionFeatures(t *testing.T) {
	set := features.NewSet()
	set[features.Replicas] = true
	set[features.LivenessProbe] = true
	set[features.ServiceAccount] = true

	out := testBuilder().Build(set)

	assert.Contains(t, out, "replicas: {{ .Values.replicas }}")
	assert.Contains(t, out, "livenessProbe:")
	assert.Contains(t, out, `serviceAccountName: {{ include "helm.fullname" .root }}-{{ .serviceName }}`)

	assert.NotContains(t, out, "readinessProbe:")
	assert.NotContains(t, out, "initContainers:")
	assert.NotContains(t, out, "hostNetwork:")
	assert.NotContains(t, out, "dnsPolicy:")
}

func TestBuildAlwaysEmitsCoreStructure(t *testing.T) {
	out := testBuilder().Build(features.NewSet())

	for _, want := range []string{
		`{{- define "` + DeploymentDefine + `" -}}`,
		`{{- define "` + ServiceDefine + `" -}}`,
		"kind: Deployment",
		"kind: Service",
		`name: {{ include "helm.fullname" .root }}-{{ .serviceName }}`,
		"app: {{ .serviceName }}",
		"{{- range $containerName, $container := .Values.containers }}",
		"image: {{ $container.image.repository }}:{{ $container.image.tag | default $.root.Chart.AppVersion }}",
		`type: {{ .Values.type | default "ClusterIP" }}`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestBuildBalancedTemplateActions(t *testing.T) {
	all := features.NewSet()
	for _, f := range features.All {
		all[f] = true
	}
	out := testBuilder().Build(all)

	opens := strings.Count(out, "{{")
	closes := strings.Count(out, "}}")
	assert.Equal(t, opens, closes, "unbalanced template delimiters")

	starts := strings.Count(out, "{{- define") +
		strings.Count(out, "{{- if ") +
		strings.Count(out, "{{- with ") +
		strings.Count(out, "{{- range")
	ends := strings.Count(out, "{{- end }}")
	assert.Equal(t, starts, ends, "unbalanced define/if/with/range blocks")
}

func TestServiceFileIncludes(t *testing.T) {
	bundle := &manifest.ServiceBundle{
		Name:           "checkout",
		Deployment:     "kind: Deployment",
		Service:        "kind: Service",
		ServiceAccount: "kind: ServiceAccount\nmetadata:\n  name: checkout",
	}

	out := testBuilder().ServiceFile(bundle)

	assert.Contains(t, out, `{{- include "`+DeploymentDefine+`" (dict "root" . "serviceName" "checkout" "Values" (index .Values "checkout")) }}`)
	assert.Contains(t, out, `{{- include "`+ServiceDefine+`"`)
	assert.Contains(t, out, "kind: ServiceAccount")
	assert.Equal(t, 3, len(manifest.SplitDocuments(out)))
}

func TestServiceFileOtherDocsVerbatim(t *testing.T) {
	bundle := &manifest.ServiceBundle{
		Name:    "cart",
		Service: "kind: Service",
		Other:   []string{"kind: ConfigMap\nmetadata:\n  name: cart-config"},
	}

	out := testBuilder().ServiceFile(bundle)
	assert.Contains(t, out, "kind: ConfigMap")
	assert.NotContains(t, out, DeploymentDefine)
}

func TestInlineServiceFileWrapsInDefine(t *testing.T) {
	bundle := &manifest.ServiceBundle{
		Name:       "checkout",
		Deployment: "kind: Deployment\nmetadata:\n  name: {{ include \"helm.fullname\" . }}-checkout",
	}
	p := NewParameterizer("helm")

	out := testBuilder().InlineServiceFile(bundle, p)

	assert.Contains(t, out, `{{- define "microservice.checkout.deployment.inline" -}}`)
	assert.Contains(t, out, `{{ include "helm.fullname" .root }}-{{ .serviceName }}`)
	assert.Contains(t, out, `{{- include "microservice.checkout.deployment.inline" (dict "root" . "serviceName" "checkout"`)
}
