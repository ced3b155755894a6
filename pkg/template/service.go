package template

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	helmfs "github.com/chartforge/helm-refactor/pkg/fs"
	"github.com/chartforge/helm-refactor/pkg/manifest"
)

// ServiceFile renders the templates/<name>.yaml content for one bundle.
// Deployment and Service slots become include calls against the shared
// defines; ServiceAccount and unclassified documents are carried through
// verbatim since they already render against the top-level context.
func (b *Builder) ServiceFile(bundle *manifest.ServiceBundle) string {
	var docs []string
	if bundle.HasDeployment() {
		docs = append(docs, includeDoc(DeploymentDefine, bundle.Name))
	}
	if bundle.HasService() {
		docs = append(docs, includeDoc(ServiceDefine, bundle.Name))
	}
	if bundle.HasServiceAccount() {
		docs = append(docs, bundle.ServiceAccount)
	}
	docs = append(docs, bundle.Other...)
	return manifest.JoinDocuments(docs)
}

// InlineServiceFile renders the bundle's own Deployment and Service texts
// rewritten by the parameterizer instead of delegating to the shared
// defines. Each rewritten document is wrapped in a per-service define so
// the .root/.serviceName context can be supplied through a dict, which
// keeps the output renderable from the top-level context like every other
// template file.
func (b *Builder) InlineServiceFile(bundle *manifest.ServiceBundle, p *Parameterizer) string {
	var docs []string
	if bundle.HasDeployment() {
		docs = append(docs, inlineDoc(bundle.Name, "deployment", p.Deployment(bundle.Deployment, bundle.Name)))
	}
	if bundle.HasService() {
		docs = append(docs, inlineDoc(bundle.Name, "service", p.Service(bundle.Service, bundle.Name)))
	}
	if bundle.HasServiceAccount() {
		docs = append(docs, bundle.ServiceAccount)
	}
	docs = append(docs, bundle.Other...)
	return manifest.JoinDocuments(docs)
}

// WriteServiceFiles emits one template file per bundle. With a non-nil
// parameterizer the inline form is used instead of the shared includes.
func (b *Builder) WriteServiceFiles(fsys helmfs.FileSystem, templatesDir string, bundles []*manifest.ServiceBundle, p *Parameterizer) error {
	for _, bundle := range bundles {
		var content string
		if p != nil {
			content = b.InlineServiceFile(bundle, p)
		} else {
			content = b.ServiceFile(bundle)
		}
		name := bundle.Name + ".yaml"
		if err := fsys.WriteFile(filepath.Join(templatesDir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing service file %s: %w", name, err)
		}
		before := bundleLines(bundle)
		after := strings.Count(content, "\n")
		b.log.Info("generated service file",
			zap.String("file", name),
			zap.Int("inputLines", before),
			zap.Int("outputLines", after))
	}
	return nil
}

// bundleLines counts the source lines a bundle's documents occupied, for
// the before/after report.
func bundleLines(bundle *manifest.ServiceBundle) int {
	n := 0
	for _, doc := range append([]string{bundle.Deployment, bundle.Service, bundle.ServiceAccount}, bundle.Other...) {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		n += strings.Count(strings.TrimRight(doc, "\n"), "\n") + 1
	}
	return n
}

func includeDoc(define, service string) string {
	return fmt.Sprintf("{{- include %q (dict \"root\" . \"serviceName\" %q \"Values\" (index .Values %q)) }}",
		define, service, service)
}

func inlineDoc(service, kind, body string) string {
	define := fmt.Sprintf("microservice.%s.%s.inline", service, kind)
	var sb strings.Builder
	fmt.Fprintf(&sb, "{{- define %q -}}\n", define)
	sb.WriteString(strings.TrimRight(body, "\n"))
	sb.WriteString("\n{{- end }}\n")
	fmt.Fprintf(&sb, "{{- include %q (dict \"root\" . \"serviceName\" %q \"Values\" (index .Values %q)) }}",
		define, service, service)
	return sb.String()
}
