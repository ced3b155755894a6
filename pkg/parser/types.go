// Package parser recovers structured resource shapes from rendered manifest
// text, falling back to pattern-based extraction when the text contains
// unresolved template syntax.
package parser

// Kind enumerates the resource kinds the structured path understands.
type Kind int

const (
	KindUnknown Kind = iota
	KindDeployment
	KindService
	KindServiceAccount
)

func (k Kind) String() string {
	switch k {
	case KindDeployment:
		return "Deployment"
	case KindService:
		return "Service"
	case KindServiceAccount:
		return "ServiceAccount"
	default:
		return "Unknown"
	}
}

// Metadata is the subset of resource metadata the analysis path needs.
type Metadata struct {
	Name        string
	Labels      map[string]string
	Annotations map[string]string
}

// EnvVar is one literal environment variable entry.
type EnvVar struct {
	Name  string
	Value string
}

// Container is a recovered container spec. Open-ended sub-configs stay as
// generic maps so the pattern intersection can compare them without a schema.
type Container struct {
	Name            string
	Image           string
	ContainerPort   int
	Env             []EnvVar
	Resources       map[string]any
	SecurityContext map[string]any
	LivenessProbe   map[string]any
	ReadinessProbe  map[string]any
	VolumeMounts    []any
}

// Deployment is the recovered shape of a Deployment document.
type Deployment struct {
	Meta                   Metadata
	Replicas               int
	SelectorApp            string
	Containers             []Container
	InitContainers         []Container
	ServiceAccountName     string
	PodSecurityContext     map[string]any
	HasSecurityContext     bool
	Volumes                []any
	TerminationGracePeriod *int64
}

// ServicePort is one port entry of a Service.
type ServicePort struct {
	Name       string
	Port       int32
	TargetPort int32
	Protocol   string
}

// Service is the recovered shape of a Service document.
type Service struct {
	Meta     Metadata
	Type     string
	Selector map[string]string
	Ports    []ServicePort
}

// ServiceAccount is the recovered shape of a ServiceAccount document.
type ServiceAccount struct {
	Meta Metadata
}

// Resource is a closed tagged variant: exactly the payload matching Kind is
// populated, everything else is nil. Consumers switch on Kind exhaustively
// instead of inspecting types at runtime.
type Resource struct {
	Kind           Kind
	APIVersion     string
	Deployment     *Deployment
	Service        *Service
	ServiceAccount *ServiceAccount
}

// Name returns the metadata name of whichever payload is populated.
func (r *Resource) Name() string {
	switch r.Kind {
	case KindDeployment:
		return r.Deployment.Meta.Name
	case KindService:
		return r.Service.Meta.Name
	case KindServiceAccount:
		return r.ServiceAccount.Meta.Name
	default:
		return ""
	}
}
