// Package patterns computes aggregate statistics over the recovered
// resources of a chart: configuration shared by every service, environment
// variables most services carry, naming conventions, and coverage ratios.
// The numbers inform the operator report; nothing downstream branches on
// them.
package patterns

import (
	"reflect"
	"sort"
	"strings"

	"github.com/chartforge/helm-refactor/pkg/parser"
)

// PortUse is one observed use of a named service port.
type PortUse struct {
	Port       int32
	TargetPort int32
}

// DeploymentStats summarizes what the chart's Deployments share.
type DeploymentStats struct {
	CommonSecurityContext map[string]any
	CommonResources       map[string]any
	CommonLiveness        map[string]any
	CommonReadiness       map[string]any
	CommonEnvNames        []string
	GracePeriods          []int64
}

// ServiceStats summarizes the chart's Services.
type ServiceStats struct {
	TypeCounts     map[string]int
	PortsByName    map[string][]PortUse
	CommonSelector map[string]string
}

// Stats is the full aggregate over one chart.
type Stats struct {
	Deployments DeploymentStats
	Services    ServiceStats

	// MatchedResources counts names that appear as both a Deployment and
	// a Service.
	MatchedResources int
	// ServiceAccountCoverage is the share of Deployment names that also
	// have a ServiceAccount. Zero when there are no Deployments.
	ServiceAccountCoverage float64
	PrefixCounts           map[string]int
	SuffixCounts           map[string]int
}

// Extract computes aggregate statistics over resources. Input order only
// affects slice ordering in the result, never the values.
func Extract(resources []*parser.Resource) Stats {
	var deployments []*parser.Deployment
	var services []*parser.Service
	var accounts []*parser.ServiceAccount
	for _, r := range resources {
		if r == nil {
			continue
		}
		switch r.Kind {
		case parser.KindDeployment:
			deployments = append(deployments, r.Deployment)
		case parser.KindService:
			services = append(services, r.Service)
		case parser.KindServiceAccount:
			accounts = append(accounts, r.ServiceAccount)
		}
	}

	s := Stats{
		Deployments: deploymentStats(deployments),
		Services:    serviceStats(services),
	}

	deploymentNames := nameSet(len(deployments))
	for _, d := range deployments {
		deploymentNames[d.Meta.Name] = true
	}
	for _, svc := range services {
		if deploymentNames[svc.Meta.Name] {
			s.MatchedResources++
		}
	}
	if len(deploymentNames) > 0 {
		covered := 0
		accountNames := nameSet(len(accounts))
		for _, sa := range accounts {
			accountNames[sa.Meta.Name] = true
		}
		for name := range deploymentNames {
			if accountNames[name] {
				covered++
			}
		}
		s.ServiceAccountCoverage = float64(covered) / float64(len(deploymentNames))
	}

	s.PrefixCounts, s.SuffixCounts = namingCounts(services)
	return s
}

func nameSet(capacity int) map[string]bool {
	return make(map[string]bool, capacity)
}

func deploymentStats(deployments []*parser.Deployment) DeploymentStats {
	var securityContexts, resources, liveness, readiness []map[string]any
	envCounts := map[string]int{}
	totalContainers := 0
	graceSeen := map[int64]bool{}
	var gracePeriods []int64

	for _, d := range deployments {
		if len(d.PodSecurityContext) > 0 {
			securityContexts = append(securityContexts, d.PodSecurityContext)
		}
		if d.TerminationGracePeriod != nil && !graceSeen[*d.TerminationGracePeriod] {
			graceSeen[*d.TerminationGracePeriod] = true
			gracePeriods = append(gracePeriods, *d.TerminationGracePeriod)
		}
		for _, c := range d.Containers {
			totalContainers++
			if len(c.Resources) > 0 {
				resources = append(resources, c.Resources)
			}
			if len(c.LivenessProbe) > 0 {
				liveness = append(liveness, c.LivenessProbe)
			}
			if len(c.ReadinessProbe) > 0 {
				readiness = append(readiness, c.ReadinessProbe)
			}
			for _, env := range c.Env {
				envCounts[env.Name]++
			}
		}
	}

	var commonEnv []string
	for name, count := range envCounts {
		if float64(count) > float64(totalContainers)/2 {
			commonEnv = append(commonEnv, name)
		}
	}
	sort.Strings(commonEnv)

	return DeploymentStats{
		CommonSecurityContext: commonEntries(securityContexts),
		CommonResources:       commonEntries(resources),
		CommonLiveness:        commonEntries(liveness),
		CommonReadiness:       commonEntries(readiness),
		CommonEnvNames:        commonEnv,
		GracePeriods:          gracePeriods,
	}
}

func serviceStats(services []*parser.Service) ServiceStats {
	stats := ServiceStats{
		TypeCounts:  map[string]int{},
		PortsByName: map[string][]PortUse{},
	}
	var selectors []map[string]string
	for _, svc := range services {
		stats.TypeCounts[svc.Type]++
		for _, p := range svc.Ports {
			stats.PortsByName[p.Name] = append(stats.PortsByName[p.Name], PortUse{
				Port:       p.Port,
				TargetPort: p.TargetPort,
			})
		}
		if len(svc.Selector) > 0 {
			selectors = append(selectors, svc.Selector)
		}
	}
	stats.CommonSelector = commonStringEntries(selectors)
	return stats
}

// commonEntries intersects maps down to the key-value pairs present with
// an equal value in every one of them. Empty input yields an empty map.
func commonEntries(maps []map[string]any) map[string]any {
	common := map[string]any{}
	if len(maps) == 0 {
		return common
	}
	for k, v := range maps[0] {
		common[k] = v
	}
	for _, m := range maps[1:] {
		for k, v := range common {
			if other, ok := m[k]; !ok || !reflect.DeepEqual(other, v) {
				delete(common, k)
			}
		}
	}
	return common
}

func commonStringEntries(maps []map[string]string) map[string]string {
	common := map[string]string{}
	if len(maps) == 0 {
		return common
	}
	for k, v := range maps[0] {
		common[k] = v
	}
	for _, m := range maps[1:] {
		for k, v := range common {
			if other, ok := m[k]; !ok || other != v {
				delete(common, k)
			}
		}
	}
	return common
}

// namingCounts tallies the first and last hyphen-separated segment of each
// Service name. Single-segment names contribute nothing.
func namingCounts(services []*parser.Service) (prefixes, suffixes map[string]int) {
	prefixes = map[string]int{}
	suffixes = map[string]int{}
	seen := map[string]bool{}
	for _, svc := range services {
		name := svc.Meta.Name
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		parts := strings.Split(name, "-")
		if len(parts) < 2 {
			continue
		}
		prefixes[parts[0]]++
		suffixes[parts[len(parts)-1]]++
	}
	return prefixes, suffixes
}
