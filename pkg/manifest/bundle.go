package manifest

import "strings"

// ServiceBundle holds the raw document texts belonging to one logical
// service. Documents are never modified after classification; the regeneration
// path works on this original text.
type ServiceBundle struct {
	Name string

	Deployment     string
	Service        string
	ServiceAccount string

	// Other holds everything not slotted above (ConfigMaps, Secrets,
	// unclassified kinds), in arrival order.
	Other []string
}

// HasDeployment reports whether the bundle carries a Deployment document.
func (b *ServiceBundle) HasDeployment() bool {
	return strings.TrimSpace(b.Deployment) != ""
}

// HasService reports whether the bundle carries a Service document.
func (b *ServiceBundle) HasService() bool {
	return strings.TrimSpace(b.Service) != ""
}

// HasServiceAccount reports whether the bundle carries a ServiceAccount document.
func (b *ServiceBundle) HasServiceAccount() bool {
	return strings.TrimSpace(b.ServiceAccount) != ""
}

// BundleSet is an ordered collection of service bundles keyed by service
// name. Bundles are created lazily the first time a document resolves to a
// name; iteration order is first-seen order.
type BundleSet struct {
	order  []string
	byName map[string]*ServiceBundle
}

// NewBundleSet returns an empty bundle set.
func NewBundleSet() *BundleSet {
	return &BundleSet{byName: make(map[string]*ServiceBundle)}
}

// Get returns the bundle for name, creating it if needed.
func (s *BundleSet) Get(name string) *ServiceBundle {
	if b, ok := s.byName[name]; ok {
		return b
	}
	b := &ServiceBundle{Name: name}
	s.byName[name] = b
	s.order = append(s.order, name)
	return b
}

// Lookup returns the bundle for name without creating it.
func (s *BundleSet) Lookup(name string) (*ServiceBundle, bool) {
	b, ok := s.byName[name]
	return b, ok
}

// Bundles returns all bundles in first-seen order.
func (s *BundleSet) Bundles() []*ServiceBundle {
	out := make([]*ServiceBundle, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Len returns the number of bundles.
func (s *BundleSet) Len() int {
	return len(s.order)
}
