package features

import (
	"strings"
	"testing"
)

const deploymentFull = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: {{ include "helm.fullname" . }}-checkout
spec:
  replicas: {{ .Values.checkout.replicas }}
  selector:
    matchLabels:
      app: checkout
  template:
    metadata:
      labels:
        app: checkout
    spec:
      serviceAccountName: checkout
      securityContext:
        runAsNonRoot: true
      terminationGracePeriodSeconds: 5
      volumes:
      - name: tmp
        emptyDir: {}
      initContainers:
      - name: wait
        image: busybox
        command: ["sh", "-c", "sleep 1"]
      containers:
      - name: server
        image: {{ .Values.checkout.image.repository }}
        securityContext:
          readOnlyRootFilesystem: true
        ports:
        - containerPort: 5050
        env:
        - name: PORT
          value: "5050"
        readinessProbe:
          grpc:
            port: 5050
        livenessProbe:
          grpc:
            port: 5050
        resources:
          requests:
            cpu: 100m
        volumeMounts:
        - mountPath: /tmp
          name: tmp
`

func TestDetectFullDeployment(t *testing.T) {
	got := Detect(deploymentFull)

	want := []Feature{
		Replicas, EnvVars, Ports, LivenessProbe, ReadinessProbe,
		Resources, VolumeMounts, Volumes, InitContainers,
		PodSecurityContext, ContainerSecurityContext, ServiceAccount,
		TerminationGracePeriod, Command,
	}
	for _, f := range want {
		if !got[f] {
			t.Errorf("Detect() missing %s", f)
		}
	}
	for _, f := range []Feature{Strategy, StartupProbe, HostNetwork, DNSPolicy, Args, ImagePullPolicy} {
		if got[f] {
			t.Errorf("Detect() unexpectedly set %s", f)
		}
	}
}

func TestDetectVolumesRequiresPodSpec(t *testing.T) {
	// config/volumes is an annotation key, not a pod spec volumes: key.
	doc := `apiVersion: apps/v1
kind: Deployment
metadata:
  name: api
  annotations:
    config/volumes: "none"
spec:
  template:
    spec:
      containers:
      - name: server
        image: nginx
        volumeMounts:
        - mountPath: /data
          name: data
`
	got := Detect(doc)
	if got[Volumes] {
		t.Error("Detect() set has_volumes without a pod-level volumes key")
	}
	if !got[VolumeMounts] {
		t.Error("Detect() missing has_volume_mounts")
	}
}

func TestDetectSecurityContextPositions(t *testing.T) {
	tests := []struct {
		name          string
		doc           string
		wantPod       bool
		wantContainer bool
	}{
		{
			name: "pod level only",
			doc: `spec:
  template:
    spec:
      securityContext:
        fsGroup: 1000
      containers:
      - name: server
        image: nginx
`,
			wantPod: true,
		},
		{
			name: "container level only",
			doc: `spec:
  template:
    spec:
      containers:
      - name: server
        image: nginx
        securityContext:
          runAsUser: 1000
`,
			wantContainer: true,
		},
		{
			name: "no containers key",
			doc: `spec:
  template:
    spec:
      securityContext:
        fsGroup: 1000
`,
			wantPod: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.doc)
			if got[PodSecurityContext] != tt.wantPod {
				t.Errorf("pod security context = %v, want %v", got[PodSecurityContext], tt.wantPod)
			}
			if got[ContainerSecurityContext] != tt.wantContainer {
				t.Errorf("container security context = %v, want %v", got[ContainerSecurityContext], tt.wantContainer)
			}
		})
	}
}

func TestDetectEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "   \n\t\n"} {
		got := Detect(doc)
		if n := got.Count(); n != 0 {
			t.Errorf("Detect(%q).Count() = %d, want 0", doc, n)
		}
	}
}

func TestDetectListItemAnchors(t *testing.T) {
	doc := strings.Join([]string{
		"spec:",
		"  template:",
		"    spec:",
		"      containers:",
		"      - env:",
		"        - name: FOO",
		"          value: bar",
		"        image: nginx",
		"        name: server",
	}, "\n")
	got := Detect(doc)
	if !got[EnvVars] {
		t.Error("Detect() missing has_env_vars for list-item env key")
	}
}
