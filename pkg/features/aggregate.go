package features

// ServiceFeatures pairs a service name with its detected feature set.
type ServiceFeatures struct {
	Service string
	Set     Set
}

// Contribution records which features a service was the first to enable
// during aggregation, in input order.
type Contribution struct {
	Service string
	Added   []Feature
}

// Aggregate folds per-service feature sets into the global union. The
// returned contributions attribute each feature to the first service that
// enabled it; services contributing nothing new still appear with an empty
// Added list. Inputs are not mutated.
func Aggregate(services []ServiceFeatures) (Set, []Contribution) {
	global := NewSet()
	contribs := make([]Contribution, 0, len(services))
	for _, sf := range services {
		c := Contribution{Service: sf.Service}
		for _, f := range All {
			if sf.Set[f] && !global[f] {
				global[f] = true
				c.Added = append(c.Added, f)
			}
		}
		contribs = append(contribs, c)
	}
	return global, contribs
}
