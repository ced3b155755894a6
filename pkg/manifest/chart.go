package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	helmfs "github.com/chartforge/helm-refactor/pkg/fs"
)

// ChartInfo is chart-level metadata read from Chart.yaml, with the same
// defaults helmify itself emits.
type ChartInfo struct {
	Name       string `yaml:"name"`
	Version    string `yaml:"version"`
	AppVersion string `yaml:"appVersion"`
}

// DefaultChartInfo returns the fallback metadata used when Chart.yaml is
// missing or unparseable.
func DefaultChartInfo() ChartInfo {
	return ChartInfo{Name: "helm", Version: "0.1.0", AppVersion: "0.1.0"}
}

// LoadChartInfo parses Chart.yaml at path. Missing keys keep their defaults;
// a read or parse failure returns the defaults plus the error so the caller
// can warn and continue.
func LoadChartInfo(fsys helmfs.FileSystem, path string) (ChartInfo, error) {
	info := DefaultChartInfo()

	data, err := fsys.ReadFile(path)
	if err != nil {
		return info, fmt.Errorf("reading Chart.yaml: %w", err)
	}

	var parsed ChartInfo
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return info, fmt.Errorf("parsing Chart.yaml: %w", err)
	}

	if parsed.Name != "" {
		info.Name = parsed.Name
	}
	if parsed.Version != "" {
		info.Version = parsed.Version
	}
	if parsed.AppVersion != "" {
		info.AppVersion = parsed.AppVersion
	}
	return info, nil
}
