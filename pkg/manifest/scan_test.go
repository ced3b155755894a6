package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	helmfs "github.com/chartforge/helm-refactor/pkg/fs"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestScanDirectoryClassifiesFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"Chart.yaml": "name: shop\nversion: 1.2.3\nappVersion: 4.5.6\n",
		"checkout.yaml": `kind: Deployment
metadata:
  name: checkout
spec:
  selector:
    matchLabels:
      app: checkout
---
kind: Service
metadata:
  name: checkout
spec:
  selector:
    app: checkout
`,
		"values.yaml": "checkout: {}\n",
		// files in subdirectories are not scanned
		"templates/ignored.yaml": "kind: Deployment\nmetadata:\n  name: ignored\n",
	})

	set, chart, err := ScanDirectory(helmfs.OSFileSystem{}, dir, zap.NewNop())
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if chart.Name != "shop" || chart.Version != "1.2.3" {
		t.Errorf("chart info = %+v", chart)
	}
	if set.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", set.Len())
	}
	b, ok := set.Lookup("checkout")
	if !ok {
		t.Fatal("missing checkout bundle")
	}
	if !b.HasDeployment() || !b.HasService() {
		t.Errorf("bundle slots: deployment=%v service=%v", b.HasDeployment(), b.HasService())
	}
}

func TestScanDirectoryNoServices(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"Chart.yaml":  "name: shop\n",
		"values.yaml": "checkout: {}\n",
	})

	_, _, err := ScanDirectory(helmfs.OSFileSystem{}, dir, zap.NewNop())
	if !errors.Is(err, ErrNoServices) {
		t.Fatalf("error = %v, want ErrNoServices", err)
	}
}

func TestScanDirectoryMissingChartUsesDefaults(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"svc.yaml": "kind: Service\nmetadata:\n  name: cart\nspec:\n  selector:\n    app: cart\n",
	})

	_, chart, err := ScanDirectory(helmfs.OSFileSystem{}, dir, zap.NewNop())
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if chart != DefaultChartInfo() {
		t.Errorf("chart = %+v, want defaults", chart)
	}
}
