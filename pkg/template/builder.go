// Package template regenerates the chart's template layer: one shared
// helpers file whose conditional blocks are keyed on the union feature set,
// and one small include file per service.
package template

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chartforge/helm-refactor/pkg/features"
	helmfs "github.com/chartforge/helm-refactor/pkg/fs"
	"github.com/chartforge/helm-refactor/pkg/manifest"
)

const (
	// HelperFileName is the generated shared-template file under templates/.
	HelperFileName = "_helpers-microservice.yaml"

	// DeploymentDefine and ServiceDefine name the generated define blocks.
	DeploymentDefine = "microservice.deployment.helmify"
	ServiceDefine    = "microservice.service.helmify"
)

// Builder renders the shared helper templates for one chart. The emitted
// defines take a dict context with three keys: root (the top-level template
// context), serviceName, and Values (the service's own values subtree).
type Builder struct {
	chart manifest.ChartInfo
	log   *zap.Logger
}

func NewBuilder(chart manifest.ChartInfo, log *zap.Logger) *Builder {
	return &Builder{chart: chart, log: log}
}

// WriteHelpers renders the helpers file for the given feature union and
// writes it into templatesDir.
func (b *Builder) WriteHelpers(fsys helmfs.FileSystem, templatesDir string, set features.Set) error {
	content := b.Build(set)
	path := filepath.Join(templatesDir, HelperFileName)
	if err := fsys.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", HelperFileName, err)
	}
	b.log.Info("generated helper templates",
		zap.String("file", HelperFileName),
		zap.Int("features", set.Count()))
	return nil
}

// Build returns the full helpers file content.
func (b *Builder) Build(set features.Set) string {
	parts := []string{
		"{{/*",
		"Base templates shared by every microservice in this chart.",
		"All varying data comes from values.yaml; optional blocks are only",
		"emitted for fields at least one service uses.",
		"*/}}",
		"",
		b.deploymentTemplate(set),
		"",
		b.serviceTemplate(),
	}
	return strings.Join(parts, "\n") + "\n"
}

func (b *Builder) deploymentTemplate(set features.Set) string {
	cn := b.chart.Name
	var w lineWriter

	w.add(`{{- define "` + DeploymentDefine + `" -}}`)
	w.add("apiVersion: apps/v1")
	w.add("kind: Deployment")
	w.add("metadata:")
	w.add(`  name: {{ include "` + cn + `.fullname" .root }}-{{ .serviceName }}`)
	w.add("  labels:")
	w.add("    app: {{ .serviceName }}")
	w.add(`  {{- include "` + cn + `.labels" .root | nindent 4 }}`)
	w.add("spec:")

	if set[features.Replicas] {
		w.add("  {{- if .Values.replicas }}")
		w.add("  replicas: {{ .Values.replicas }}")
		w.add("  {{- end }}")
	}
	if set[features.Strategy] {
		w.add("  {{- with .Values.strategy }}")
		w.add("  strategy:")
		w.add("    {{- toYaml . | nindent 4 }}")
		w.add("  {{- end }}")
	}

	w.add("  selector:")
	w.add("    matchLabels:")
	w.add("      app: {{ .serviceName }}")
	w.add(`    {{- include "` + cn + `.selectorLabels" .root | nindent 6 }}`)
	w.add("  template:")
	w.add("    metadata:")
	w.add("      labels:")
	w.add("        app: {{ .serviceName }}")
	w.add(`      {{- include "` + cn + `.selectorLabels" .root | nindent 8 }}`)
	w.add("    spec:")

	if set[features.InitContainers] {
		w.add("      {{- with .Values.initContainers }}")
		w.add("      initContainers:")
		w.add("        {{- toYaml . | nindent 6 }}")
		w.add("      {{- end }}")
	}

	w.add("      containers:")
	w.add("      {{- range $containerName, $container := .Values.containers }}")
	w.add("      - name: {{ $containerName }}")
	w.add("        image: {{ $container.image.repository }}:{{ $container.image.tag | default $.root.Chart.AppVersion }}")

	if set[features.ImagePullPolicy] {
		w.add("        {{- if $container.image.pullPolicy }}")
		w.add("        imagePullPolicy: {{ $container.image.pullPolicy }}")
		w.add("        {{- end }}")
	}
	if set[features.Command] {
		w.add("        {{- with $container.command }}")
		w.add("        command:")
		w.add("          {{- toYaml . | nindent 10 }}")
		w.add("        {{- end }}")
	}
	if set[features.Args] {
		w.add("        {{- with $container.args }}")
		w.add("        args:")
		w.add("          {{- toYaml . | nindent 10 }}")
		w.add("        {{- end }}")
	}
	if set[features.EnvVars] {
		w.add("        {{- if $container.env }}")
		w.add("        env:")
		w.add("        {{- range $key, $value := $container.env }}")
		w.add(`        - name: {{ $key | upper | replace "." "_" | replace "-" "_" }}`)
		w.add("          value: {{ $value | quote }}")
		w.add("        {{- end }}")
		w.add("        {{- if $.root.Values.kubernetesClusterDomain }}")
		w.add("        - name: KUBERNETES_CLUSTER_DOMAIN")
		w.add("          value: {{ quote $.root.Values.kubernetesClusterDomain }}")
		w.add("        {{- end }}")
		w.add("        {{- end }}")
	}
	if set[features.Ports] {
		w.add("        {{- if $.Values.ports }}")
		w.add("        ports:")
		w.add("        {{- range $.Values.ports }}")
		w.add("        - containerPort: {{ .targetPort | default .port }}")
		w.add("          {{- if .name }}")
		w.add("          name: {{ .name }}")
		w.add("          {{- end }}")
		w.add("          {{- if .protocol }}")
		w.add("          protocol: {{ .protocol }}")
		w.add("          {{- end }}")
		w.add("        {{- end }}")
		w.add("        {{- end }}")
	}
	if set[features.LivenessProbe] {
		w.withBlock("        ", "$container.livenessProbe", "livenessProbe")
	}
	if set[features.ReadinessProbe] {
		w.withBlock("        ", "$container.readinessProbe", "readinessProbe")
	}
	if set[features.StartupProbe] {
		w.withBlock("        ", "$container.startupProbe", "startupProbe")
	}
	if set[features.Resources] {
		w.withBlock("        ", "$container.resources", "resources")
	}
	if set[features.VolumeMounts] {
		w.withBlock("        ", "$container.volumeMounts", "volumeMounts")
	}
	if set[features.ContainerSecurityContext] {
		w.withBlock("        ", "$container.securityContext", "securityContext")
	}

	w.add("      {{- end }}")

	if set[features.PodSecurityContext] {
		w.add("      {{- with .Values.podSecurityContext }}")
		w.add("      securityContext:")
		w.add("        {{- toYaml . | nindent 8 }}")
		w.add("      {{- end }}")
	}
	if set[features.ServiceAccount] {
		w.add("      {{- if .Values.serviceAccountName }}")
		w.add(`      serviceAccountName: {{ include "` + cn + `.fullname" .root }}-{{ .serviceName }}`)
		w.add("      {{- end }}")
	}
	if set[features.TerminationGracePeriod] {
		w.add("      {{- if .Values.terminationGracePeriodSeconds }}")
		w.add("      terminationGracePeriodSeconds: {{ .Values.terminationGracePeriodSeconds }}")
		w.add("      {{- end }}")
	}
	if set[features.HostNetwork] {
		w.add("      {{- if .Values.hostNetwork }}")
		w.add("      hostNetwork: {{ .Values.hostNetwork }}")
		w.add("      {{- end }}")
	}
	if set[features.DNSPolicy] {
		w.add("      {{- if .Values.dnsPolicy }}")
		w.add("      dnsPolicy: {{ .Values.dnsPolicy }}")
		w.add("      {{- end }}")
	}
	if set[features.Volumes] {
		w.add("      {{- with .Values.volumes }}")
		w.add("      volumes:")
		w.add("        {{- toYaml . | nindent 6 }}")
		w.add("      {{- end }}")
	}

	w.add("{{- end }}")
	return w.String()
}

func (b *Builder) serviceTemplate() string {
	cn := b.chart.Name
	var w lineWriter

	w.add(`{{- define "` + ServiceDefine + `" -}}`)
	w.add("apiVersion: v1")
	w.add("kind: Service")
	w.add("metadata:")
	w.add(`  name: {{ include "` + cn + `.fullname" .root }}-{{ .serviceName }}`)
	w.add("  labels:")
	w.add("    app: {{ .serviceName }}")
	w.add(`  {{- include "` + cn + `.labels" .root | nindent 4 }}`)
	w.add("spec:")
	w.add(`  type: {{ .Values.type | default "ClusterIP" }}`)
	w.add("  selector:")
	w.add("    app: {{ .serviceName }}")
	w.add(`  {{- include "` + cn + `.selectorLabels" .root | nindent 4 }}`)
	w.add("  {{- if .Values.ports }}")
	w.add("  ports:")
	w.add("  {{- range .Values.ports }}")
	w.add("  - name: {{ .name }}")
	w.add("    port: {{ .port }}")
	w.add("    targetPort: {{ .targetPort | default .port }}")
	w.add("    {{- if .protocol }}")
	w.add("    protocol: {{ .protocol }}")
	w.add("    {{- end }}")
	w.add(`    {{- if and (eq $.Values.type "NodePort") .nodePort }}`)
	w.add("    nodePort: {{ .nodePort }}")
	w.add("    {{- end }}")
	w.add("  {{- end }}")
	w.add("  {{- end }}")
	w.add("{{- end }}")
	return w.String()
}

// lineWriter accumulates template lines.
type lineWriter struct {
	lines []string
}

func (w *lineWriter) add(line string) {
	w.lines = append(w.lines, line)
}

// withBlock emits the standard optional-field pattern: a with guard around
// the key with its value rendered via toYaml.
func (w *lineWriter) withBlock(indent, expr, key string) {
	w.add(indent + "{{- with " + expr + " }}")
	w.add(indent + key + ":")
	w.add(indent + "  {{- toYaml . | nindent 10 }}")
	w.add(indent + "{{- end }}")
}

func (w *lineWriter) String() string {
	return strings.Join(w.lines, "\n")
}
