// Package testutil builds helmify-style chart fixtures for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// ChartFixture describes an input chart directory to lay down in a
// temporary directory.
type ChartFixture struct {
	ChartYAML  string
	ValuesYAML string
	HelpersTpl string
	// Files maps file name to multi-document manifest content.
	Files map[string]string
}

// Write creates the fixture under a fresh temp directory and returns its
// path.
func (f ChartFixture) Write(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) {
		t.Helper()
		if content == "" {
			return
		}
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating fixture dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing fixture file %s: %v", name, err)
		}
	}

	write("Chart.yaml", f.ChartYAML)
	write("values.yaml", f.ValuesYAML)
	write("_helpers.tpl", f.HelpersTpl)
	for name, content := range f.Files {
		write(name, content)
	}
	return dir
}

// DefaultChartYAML is a minimal chart descriptor.
const DefaultChartYAML = "apiVersion: v2\nname: helm\nversion: 0.1.0\nappVersion: 0.1.0\n"

// ServiceManifests renders a Deployment+Service+ServiceAccount trio for one
// service in the helmify style, joined in a single multi-document file.
func ServiceManifests(service string, port int) string {
	return fmt.Sprintf(`apiVersion: apps/v1
kind: Deployment
metadata:
  name: {{ include "helm.fullname" . }}-%[1]s
  labels:
  {{- include "helm.labels" . | nindent 4 }}
spec:
  replicas: {{ .Values.%[1]s.replicas }}
  selector:
    matchLabels:
      app: %[1]s
  template:
    metadata:
      labels:
        app: %[1]s
    spec:
      serviceAccountName: {{ include "helm.fullname" . }}-%[1]s
      securityContext:
        runAsNonRoot: true
      containers:
      - name: server
        image: {{ .Values.%[1]s.server.image.repository }}:{{ .Values.%[1]s.server.image.tag | default .Chart.AppVersion }}
        ports:
        - containerPort: %[2]d
        env:
        - name: PORT
          value: "%[2]d"
        readinessProbe:
          grpc:
            port: %[2]d
        resources:
          requests:
            cpu: 100m
---
apiVersion: v1
kind: Service
metadata:
  name: {{ include "helm.fullname" . }}-%[1]s
  labels:
    app: %[1]s
spec:
  type: ClusterIP
  selector:
    app: %[1]s
  ports:
  - name: grpc
    port: %[2]d
    targetPort: %[2]d
---
apiVersion: v1
kind: ServiceAccount
metadata:
  name: {{ include "helm.fullname" . }}-%[1]s
  labels:
    app: %[1]s
`, service, port)
}
