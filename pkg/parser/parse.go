package parser

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/chartforge/helm-refactor/pkg/kube"
)

// IsTemplated reports whether document text contains unresolved template
// syntax that would defeat strict YAML parsing.
func IsTemplated(doc string) bool {
	return strings.Contains(doc, "{{") ||
		strings.Contains(doc, `include "`) ||
		strings.Contains(doc, ".Values.")
}

// Parse returns a best-effort structured resource for one document. Clean
// documents go through strict typed decoding; templated or malformed ones
// fall back to pattern extraction. Parse never fails the run: a document
// that defeats both paths yields nil.
func Parse(doc string, log *zap.Logger) *Resource {
	if IsTemplated(doc) {
		return Extract(doc)
	}

	r, err := parseStrict(doc)
	if err != nil {
		log.Warn("strict YAML parse failed, falling back to heuristic extraction",
			zap.Error(err))
		return Extract(doc)
	}
	return r
}

// parseStrict decodes a clean document into a typed Kubernetes object and
// projects it into the analysis shape. Kinds outside the structured path
// yield (nil, nil).
func parseStrict(doc string) (*Resource, error) {
	var head struct {
		APIVersion string `yaml:"apiVersion"`
		Kind       string `yaml:"kind"`
	}
	if err := yaml.Unmarshal([]byte(doc), &head); err != nil {
		return nil, fmt.Errorf("reading document head: %w", err)
	}

	switch head.Kind {
	case "Deployment":
		d, err := kube.DecodeDeployment(doc)
		if err != nil {
			return nil, err
		}
		return &Resource{
			Kind:       KindDeployment,
			APIVersion: head.APIVersion,
			Deployment: fromDeployment(d),
		}, nil
	case "Service":
		s, err := kube.DecodeService(doc)
		if err != nil {
			return nil, err
		}
		return &Resource{
			Kind:       KindService,
			APIVersion: head.APIVersion,
			Service:    fromService(s),
		}, nil
	case "ServiceAccount":
		sa, err := kube.DecodeServiceAccount(doc)
		if err != nil {
			return nil, err
		}
		return &Resource{
			Kind:       KindServiceAccount,
			APIVersion: head.APIVersion,
			ServiceAccount: &ServiceAccount{
				Meta: Metadata{Name: sa.Name, Labels: sa.Labels, Annotations: sa.Annotations},
			},
		}, nil
	default:
		return nil, nil
	}
}

func fromDeployment(d *appsv1.Deployment) *Deployment {
	out := &Deployment{
		Meta:     Metadata{Name: d.Name, Labels: d.Labels, Annotations: d.Annotations},
		Replicas: 1,
	}
	if d.Spec.Replicas != nil {
		out.Replicas = int(*d.Spec.Replicas)
	}
	if d.Spec.Selector != nil {
		out.SelectorApp = d.Spec.Selector.MatchLabels["app"]
	}

	podSpec := d.Spec.Template.Spec
	if podSpec.SecurityContext != nil {
		out.PodSecurityContext = kube.ToMap(podSpec.SecurityContext)
		out.HasSecurityContext = true
	}
	out.ServiceAccountName = podSpec.ServiceAccountName
	out.TerminationGracePeriod = podSpec.TerminationGracePeriodSeconds

	for _, c := range podSpec.Containers {
		out.Containers = append(out.Containers, fromContainer(c))
		if c.SecurityContext != nil {
			out.HasSecurityContext = true
		}
	}
	for _, c := range podSpec.InitContainers {
		out.InitContainers = append(out.InitContainers, fromContainer(c))
	}
	for _, v := range podSpec.Volumes {
		out.Volumes = append(out.Volumes, kube.ToMap(v))
	}
	return out
}

func fromContainer(c corev1.Container) Container {
	out := Container{
		Name:  c.Name,
		Image: c.Image,
	}
	if len(c.Ports) > 0 {
		out.ContainerPort = int(c.Ports[0].ContainerPort)
	}
	for _, e := range c.Env {
		// literal values only; valueFrom sources carry no comparable value
		out.Env = append(out.Env, EnvVar{Name: e.Name, Value: e.Value})
	}
	if len(c.Resources.Limits) > 0 || len(c.Resources.Requests) > 0 {
		out.Resources = kube.ToMap(c.Resources)
	}
	if c.SecurityContext != nil {
		out.SecurityContext = kube.ToMap(c.SecurityContext)
	}
	if c.LivenessProbe != nil {
		out.LivenessProbe = kube.ToMap(c.LivenessProbe)
	}
	if c.ReadinessProbe != nil {
		out.ReadinessProbe = kube.ToMap(c.ReadinessProbe)
	}
	for _, vm := range c.VolumeMounts {
		out.VolumeMounts = append(out.VolumeMounts, kube.ToMap(vm))
	}
	return out
}

func fromService(s *corev1.Service) *Service {
	out := &Service{
		Meta:     Metadata{Name: s.Name, Labels: s.Labels, Annotations: s.Annotations},
		Type:     string(s.Spec.Type),
		Selector: s.Spec.Selector,
	}
	if out.Type == "" {
		out.Type = "ClusterIP"
	}
	for _, p := range s.Spec.Ports {
		port := ServicePort{
			Name:       p.Name,
			Port:       p.Port,
			TargetPort: int32(p.TargetPort.IntValue()),
			Protocol:   string(p.Protocol),
		}
		if port.TargetPort == 0 {
			port.TargetPort = port.Port
		}
		if port.Protocol == "" {
			port.Protocol = "TCP"
		}
		out.Ports = append(out.Ports, port)
	}
	return out
}
