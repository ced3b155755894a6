package kube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanDeployment = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: adservice
  labels:
    app: adservice
spec:
  replicas: 2
  selector:
    matchLabels:
      app: adservice
  template:
    metadata:
      labels:
        app: adservice
    spec:
      containers:
      - name: server
        image: adservice:v1.2.3
        ports:
        - containerPort: 9555
`

func TestDecodeDeployment(t *testing.T) {
	d, err := DecodeDeployment(cleanDeployment)
	require.NoError(t, err)

	assert.Equal(t, "adservice", d.Name)
	require.NotNil(t, d.Spec.Replicas)
	assert.Equal(t, int32(2), *d.Spec.Replicas)
	require.Len(t, d.Spec.Template.Spec.Containers, 1)
	assert.Equal(t, "server", d.Spec.Template.Spec.Containers[0].Name)
	assert.Equal(t, int32(9555), d.Spec.Template.Spec.Containers[0].Ports[0].ContainerPort)
}

func TestDecodeServiceWithTargetPort(t *testing.T) {
	doc := `apiVersion: v1
kind: Service
metadata:
  name: adservice
spec:
  type: ClusterIP
  selector:
    app: adservice
  ports:
  - name: grpc
    port: 9555
    targetPort: 9555
`
	s, err := DecodeService(doc)
	require.NoError(t, err)
	assert.Equal(t, "ClusterIP", string(s.Spec.Type))
	require.Len(t, s.Spec.Ports, 1)
	assert.Equal(t, int32(9555), s.Spec.Ports[0].Port)
	assert.Equal(t, 9555, s.Spec.Ports[0].TargetPort.IntValue())
}

func TestDecodeDeploymentTemplatedFails(t *testing.T) {
	// A tab inside the flow breaks strict YAML; templated docs generally do.
	_, err := DecodeDeployment("apiVersion: apps/v1\nkind: Deployment\nspec:\n\t{{ bad }}\n")
	assert.Error(t, err)
}

func TestKnownKind(t *testing.T) {
	assert.True(t, KnownKind("Deployment"))
	assert.True(t, KnownKind("Service"))
	assert.True(t, KnownKind("ServiceAccount"))
	assert.True(t, KnownKind("ConfigMap"))
	assert.False(t, KnownKind("FooBar"))
	assert.False(t, KnownKind(""))
}

func TestKnownType(t *testing.T) {
	assert.True(t, KnownType("apps/v1", "Deployment"))
	assert.True(t, KnownType("v1", "Service"))
	assert.False(t, KnownType("v1", "Deployment"))
}

func TestToMap(t *testing.T) {
	m := ToMap(map[string]any{"runAsNonRoot": true, "runAsUser": 1000})
	require.NotNil(t, m)
	assert.Equal(t, true, m["runAsNonRoot"])
}
