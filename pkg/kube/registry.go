package kube

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/scheme"
)

// knownKinds holds every kind name registered in the official Kubernetes
// scheme, across all built-in API groups (core, apps, batch, networking, etc.)
var knownKinds map[string]bool

// knownTypes holds the full group/version/kind triples from the scheme
var knownTypes map[schema.GroupVersionKind]bool

func init() {
	knownKinds = make(map[string]bool)
	knownTypes = make(map[schema.GroupVersionKind]bool)

	for gvk := range scheme.Scheme.AllKnownTypes() {
		knownKinds[gvk.Kind] = true
		knownTypes[gvk] = true
	}
}

// KnownKind reports whether kind names a built-in Kubernetes type in any
// API group. Returns false for CRDs and for garbage captured by heuristics.
func KnownKind(kind string) bool {
	return knownKinds[kind]
}

// KnownType reports whether the exact apiVersion/kind pair is registered.
// The core API uses a bare version ("v1"); everything else is
// "group/version" (e.g. "apps/v1").
func KnownType(apiVersion, kind string) bool {
	return knownTypes[schema.FromAPIVersionAndKind(apiVersion, kind)]
}
