package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParameterizeDeployment(t *testing.T) {
	in := `apiVersion: apps/v1
kind: Deployment
metadata:
  name: {{ include "helm.fullname" . }}-checkout
  labels:
    app: checkout
  {{- include "helm.labels" . | nindent 4 }}
spec:
  replicas: {{ .Values.checkout.replicas }}
  template:
    spec:
      containers:
      - name: server
        image: {{ .Values.checkout.server.image.repository }}:{{ .Values.checkout.server.image.tag | default .Chart.AppVersion }}
        env:
        - name: KUBERNETES_CLUSTER_DOMAIN
          value: {{ quote .Values.kubernetesClusterDomain }}
`
	out := NewParameterizer("helm").Deployment(in, "checkout")

	assert.Contains(t, out, `name: {{ include "helm.fullname" .root }}-{{ .serviceName }}`)
	assert.Contains(t, out, "app: {{ .serviceName }}")
	assert.Contains(t, out, `{{- include "helm.labels" .root | nindent 4 }}`)
	assert.Contains(t, out, "replicas: {{ .Values.replicas }}")
	assert.Contains(t, out, ".Values.server.image.repository")
	assert.Contains(t, out, ".root.Chart.AppVersion")
	assert.Contains(t, out, ".root.Values.kubernetesClusterDomain")

	assert.NotContains(t, out, ".Values.checkout.")
	assert.NotContains(t, out, "app: checkout")
}

func TestParameterizeServiceKeepsChartRefs(t *testing.T) {
	in := `kind: Service
metadata:
  name: {{ include "helm.fullname" . }}-cart
spec:
  selector:
    app: cart
  ports:
  - port: {{ .Values.cart.ports.0.port }}
`
	out := NewParameterizer("helm").Service(in, "cart")

	assert.Contains(t, out, `{{ include "helm.fullname" .root }}-{{ .serviceName }}`)
	assert.Contains(t, out, "app: {{ .serviceName }}")
	assert.Contains(t, out, ".Values.ports")
	// Service rewriting leaves .Chart references alone
	assert.NotContains(t, out, ".root.Chart.")
}

func TestParameterizeOtherServiceUntouched(t *testing.T) {
	in := "metadata:\n  labels:\n    app: frontend\n"
	out := NewParameterizer("helm").Deployment(in, "checkout")
	assert.Equal(t, in, out)
}

func TestParameterizeServiceNameWithHyphen(t *testing.T) {
	in := "metadata:\n  name: {{ include \"helm.fullname\" . }}-frontend-external\nspec:\n  selector:\n    app: frontend-external\n"
	out := NewParameterizer("helm").Service(in, "frontend-external")
	assert.Contains(t, out, "{{ .serviceName }}")
	assert.NotContains(t, out, "app: frontend-external")
}
