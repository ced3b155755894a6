// Package features detects which optional Deployment fields each service
// uses and unions them into the set the rebuilt template must support.
package features

// Feature is one boolean structural feature of a Deployment.
type Feature string

const (
	Replicas                 Feature = "has_replicas"
	Strategy                 Feature = "has_strategy"
	EnvVars                  Feature = "has_env_vars"
	Ports                    Feature = "has_ports"
	LivenessProbe            Feature = "has_liveness_probe"
	ReadinessProbe           Feature = "has_readiness_probe"
	StartupProbe             Feature = "has_startup_probe"
	Resources                Feature = "has_resources"
	VolumeMounts             Feature = "has_volume_mounts"
	Volumes                  Feature = "has_volumes"
	InitContainers           Feature = "has_init_containers"
	PodSecurityContext       Feature = "has_pod_security_context"
	ContainerSecurityContext Feature = "has_container_security_context"
	ServiceAccount           Feature = "has_service_account"
	TerminationGracePeriod   Feature = "has_termination_grace_period"
	HostNetwork              Feature = "has_host_network"
	DNSPolicy                Feature = "has_dns_policy"
	Command                  Feature = "has_command"
	Args                     Feature = "has_args"
	ImagePullPolicy          Feature = "has_image_pull_policy"
)

// All lists every feature in a stable order.
var All = []Feature{
	Replicas,
	Strategy,
	EnvVars,
	Ports,
	LivenessProbe,
	ReadinessProbe,
	StartupProbe,
	Resources,
	VolumeMounts,
	Volumes,
	InitContainers,
	PodSecurityContext,
	ContainerSecurityContext,
	ServiceAccount,
	TerminationGracePeriod,
	HostNetwork,
	DNSPolicy,
	Command,
	Args,
	ImagePullPolicy,
}

// Set maps every feature to its presence. A Set always carries every key.
type Set map[Feature]bool

// NewSet returns an all-false feature set.
func NewSet() Set {
	s := make(Set, len(All))
	for _, f := range All {
		s[f] = false
	}
	return s
}

// Union returns a new set with each feature enabled when either operand has
// it. Commutative and idempotent.
func (s Set) Union(other Set) Set {
	out := NewSet()
	for _, f := range All {
		out[f] = s[f] || other[f]
	}
	return out
}

// Enabled returns the enabled features in All order.
func (s Set) Enabled() []Feature {
	var out []Feature
	for _, f := range All {
		if s[f] {
			out = append(out, f)
		}
	}
	return out
}

// Count returns how many features are enabled.
func (s Set) Count() int {
	n := 0
	for _, f := range All {
		if s[f] {
			n++
		}
	}
	return n
}
