// Package values restructures the chart's values.yaml for the regenerated
// template layer: container-like sub-mappings move under a containers key,
// service-account usage becomes a boolean flag, and probe configuration
// recovered from the deployment texts is injected next to the matching
// container. Key order of the original document is preserved.
package values

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	helmfs "github.com/chartforge/helm-refactor/pkg/fs"
	"github.com/chartforge/helm-refactor/pkg/manifest"
	"github.com/chartforge/helm-refactor/pkg/probe"
)

// globalKeys pass through the transform untouched.
var globalKeys = map[string]bool{
	"kubernetesClusterDomain": true,
}

type Transformer struct {
	log *zap.Logger
}

func NewTransformer(log *zap.Logger) *Transformer {
	return &Transformer{log: log}
}

// TransformFile loads src, restructures it against the classified bundles,
// and writes the result to dst. Any load or transform failure falls back to
// copying the original file through unchanged; only the copy itself can
// fail the call.
func (t *Transformer) TransformFile(fsys helmfs.FileSystem, src, dst string, bundles []*manifest.ServiceBundle) error {
	data, err := fsys.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading values file: %w", err)
	}

	out, err := t.Transform(data, bundles)
	if err != nil {
		t.log.Warn("values transform failed, copying original", zap.Error(err))
		out = data
	}
	if err := fsys.WriteFile(dst, out, 0o644); err != nil {
		return fmt.Errorf("writing values file: %w", err)
	}
	return nil
}

// Transform restructures a values document. Each top-level service mapping
// containing at least one container-like sub-mapping (a mapping with an
// image key) is regrouped under containers; everything else passes through
// in place.
func (t *Transformer) Transform(data []byte, bundles []*manifest.ServiceBundle) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing values document: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("values document is not a mapping")
	}

	byName := make(map[string]*manifest.ServiceBundle, len(bundles))
	for _, b := range bundles {
		byName[b.Name] = b
	}

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		val := root.Content[i+1]
		if globalKeys[key] || val.Kind != yaml.MappingNode {
			continue
		}
		t.transformService(key, val, byName[key])
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding values document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding values document: %w", err)
	}
	return buf.Bytes(), nil
}

// transformService regroups one service mapping in place. Services with no
// container-like entry are left exactly as they were.
func (t *Transformer) transformService(service string, node *yaml.Node, bundle *manifest.ServiceBundle) {
	var containerPairs, otherPairs []*yaml.Node
	hasServiceAccount := false

	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind == yaml.MappingNode && mappingValue(v, "image") != nil {
			containerPairs = append(containerPairs, k, v)
			continue
		}
		if k.Value == "serviceAccount" {
			hasServiceAccount = true
		}
		otherPairs = append(otherPairs, k, v)
	}
	if len(containerPairs) == 0 {
		return
	}

	containers := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: containerPairs}
	content := []*yaml.Node{scalarNode("containers"), containers}
	content = append(content, otherPairs...)
	if hasServiceAccount {
		content = append(content, scalarNode("serviceAccountName"), boolNode(true))
	}
	node.Content = content

	if bundle != nil && bundle.HasDeployment() {
		t.injectProbes(service, containers, bundle.Deployment)
	}
}

// injectProbes adds recovered probe and port settings to containers that
// already exist in the values document. Settings for a container name the
// document does not know are dropped with a warning, never invented into a
// new entry.
func (t *Transformer) injectProbes(service string, containers *yaml.Node, deploymentText string) {
	for name, settings := range probe.ExtractAll(deploymentText) {
		if settings.Empty() {
			continue
		}
		target := mappingValue(containers, name)
		if target == nil {
			t.log.Warn("container for recovered probes not present in values",
				zap.String("service", service),
				zap.String("container", name))
			continue
		}
		setProbe(t.log, service, name, target, "livenessProbe", settings.LivenessProbe)
		setProbe(t.log, service, name, target, "readinessProbe", settings.ReadinessProbe)
		setProbe(t.log, service, name, target, "startupProbe", settings.StartupProbe)
		if settings.ContainerPort != 0 && mappingValue(target, "containerPort") == nil {
			target.Content = append(target.Content,
				scalarNode("containerPort"), intNode(settings.ContainerPort))
		}
	}
}

func setProbe(log *zap.Logger, service, container string, target *yaml.Node, key string, cfg probe.Config) {
	if cfg == nil {
		return
	}
	var val yaml.Node
	if err := val.Encode(map[string]any(cfg)); err != nil {
		log.Warn("could not encode recovered probe",
			zap.String("service", service),
			zap.String("container", container),
			zap.String("probe", key),
			zap.Error(err))
		return
	}
	if existing := mappingValue(target, key); existing != nil {
		*existing = val
		return
	}
	target.Content = append(target.Content, scalarNode(key), &val)
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func boolNode(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprintf("%t", v)}
}

func intNode(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", v)}
}
