package values

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	helmfs "github.com/chartforge/helm-refactor/pkg/fs"
	"github.com/chartforge/helm-refactor/pkg/manifest"
)

const adserviceDeployment = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: {{ include "helm.fullname" . }}-adservice
spec:
  template:
    spec:
      containers:
      - name: server
        image: {{ .Values.adservice.server.image.repository }}
        ports:
        - containerPort: 9555
        livenessProbe:
          grpc:
            port: 9555
          initialDelaySeconds: 20
          periodSeconds: 15
`

func transform(t *testing.T, in string, bundles []*manifest.ServiceBundle) map[string]any {
	t.Helper()
	out, err := NewTransformer(zap.NewNop()).Transform([]byte(in), bundles)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out, &got))
	return got
}

func TestTransformGroupsContainersAndInjectsProbes(t *testing.T) {
	in := `kubernetesClusterDomain: cluster.local
adservice:
  server:
    image:
      repository: adservice
      tag: latest
    env:
      port: "9555"
  ports:
  - name: grpc
    port: 9555
  serviceAccount:
    create: true
`
	bundles := []*manifest.ServiceBundle{{Name: "adservice", Deployment: adserviceDeployment}}
	got := transform(t, in, bundles)

	assert.Equal(t, "cluster.local", got["kubernetesClusterDomain"])

	adservice, ok := got["adservice"].(map[string]any)
	require.True(t, ok)

	containers, ok := adservice["containers"].(map[string]any)
	require.True(t, ok, "expected containers grouping")
	server, ok := containers["server"].(map[string]any)
	require.True(t, ok)

	live, ok := server["livenessProbe"].(map[string]any)
	require.True(t, ok, "expected injected livenessProbe")
	assert.Equal(t, 20, live["initialDelaySeconds"])
	assert.Equal(t, 9555, server["containerPort"])

	// untouched siblings
	assert.Len(t, adservice["ports"], 1)
	assert.Equal(t, true, adservice["serviceAccountName"])
	assert.Contains(t, adservice, "serviceAccount")
}

func TestTransformServiceWithoutContainersUntouched(t *testing.T) {
	in := `frontend:
  replicas: 2
  type: LoadBalancer
`
	got := transform(t, in, nil)
	frontend := got["frontend"].(map[string]any)
	assert.Equal(t, 2, frontend["replicas"])
	assert.NotContains(t, frontend, "containers")
}

func TestTransformDiscardsProbesForUnknownContainer(t *testing.T) {
	deployment := `kind: Deployment
spec:
  template:
    spec:
      containers:
      - name: worker
        image: worker
        readinessProbe:
          tcpSocket:
            port: 8080
`
	in := `cart:
  server:
    image:
      repository: cart
`
	bundles := []*manifest.ServiceBundle{{Name: "cart", Deployment: deployment}}
	got := transform(t, in, bundles)

	server := got["cart"].(map[string]any)["containers"].(map[string]any)["server"].(map[string]any)
	assert.NotContains(t, server, "readinessProbe")
	_, hasWorker := got["cart"].(map[string]any)["containers"].(map[string]any)["worker"]
	assert.False(t, hasWorker, "probe settings must never invent a container")
}

func TestTransformScalarTopLevelValuePassthrough(t *testing.T) {
	got := transform(t, "replicaDefault: 3\ncart:\n  server:\n    image:\n      repository: cart\n", nil)
	assert.Equal(t, 3, got["replicaDefault"])
}

func TestTransformKeyOrderPreserved(t *testing.T) {
	in := `zeta:
  server:
    image:
      repository: zeta
alpha:
  server:
    image:
      repository: alpha
`
	out, err := NewTransformer(zap.NewNop()).Transform([]byte(in), nil)
	require.NoError(t, err)
	assert.Less(t, indexOf(t, out, "zeta:"), indexOf(t, out, "alpha:"))
}

func TestTransformRejectsNonMapping(t *testing.T) {
	_, err := NewTransformer(zap.NewNop()).Transform([]byte("- a\n- b\n"), nil)
	assert.Error(t, err)
}

func TestTransformFileCopiesThroughOnBadYAML(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "values.yaml")
	dst := filepath.Join(dir, "out.yaml")
	bad := []byte("cart: [unclosed\n")
	require.NoError(t, os.WriteFile(src, bad, 0o644))

	err := NewTransformer(zap.NewNop()).TransformFile(helmfs.OSFileSystem{}, src, dst, nil)
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, bad, got)
}

func indexOf(t *testing.T, data []byte, sub string) int {
	t.Helper()
	idx := -1
	for i := 0; i+len(sub) <= len(data); i++ {
		if string(data[i:i+len(sub)]) == sub {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0, "missing %q in output", sub)
	return idx
}
