package kube

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"
)

// DecodeDeployment decodes a clean (untemplated) manifest into a typed
// Deployment. Unknown fields are tolerated; a YAML syntax error is not.
func DecodeDeployment(doc string) (*appsv1.Deployment, error) {
	var d appsv1.Deployment
	if err := yaml.Unmarshal([]byte(doc), &d); err != nil {
		return nil, fmt.Errorf("decoding Deployment: %w", err)
	}
	return &d, nil
}

// DecodeService decodes a clean manifest into a typed Service.
func DecodeService(doc string) (*corev1.Service, error) {
	var s corev1.Service
	if err := yaml.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("decoding Service: %w", err)
	}
	return &s, nil
}

// DecodeServiceAccount decodes a clean manifest into a typed ServiceAccount.
func DecodeServiceAccount(doc string) (*corev1.ServiceAccount, error) {
	var sa corev1.ServiceAccount
	if err := yaml.Unmarshal([]byte(doc), &sa); err != nil {
		return nil, fmt.Errorf("decoding ServiceAccount: %w", err)
	}
	return &sa, nil
}

// ToMap round-trips an API object fragment (security context, resource
// requirements, probe) into a generic map so pattern analysis can intersect
// configs without caring about the typed struct shape.
func ToMap(v any) map[string]any {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
