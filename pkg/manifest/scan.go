package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	helmfs "github.com/chartforge/helm-refactor/pkg/fs"
)

// ErrNoServices is returned when a whole input directory yields zero
// classified services. This is the only fatal classification outcome.
var ErrNoServices = errors.New("no services found in input directory")

// metadata files that are not resource manifests
var excludedFiles = map[string]bool{
	"Chart.yaml":   true,
	"values.yaml":  true,
	"_helpers.tpl": true,
}

// ScanDirectory reads every resource file in dir (non-recursive), splits each
// into documents and classifies them into service bundles. Chart metadata is
// read from Chart.yaml, falling back to defaults when absent.
func ScanDirectory(fsys helmfs.FileSystem, dir string, log *zap.Logger) (*BundleSet, ChartInfo, error) {
	info, err := LoadChartInfo(fsys, filepath.Join(dir, "Chart.yaml"))
	if err != nil {
		log.Warn("could not parse Chart.yaml, using defaults", zap.Error(err))
	}

	files, err := listResourceFiles(fsys, dir)
	if err != nil {
		return nil, info, fmt.Errorf("scanning %s: %w", dir, err)
	}

	classifier := NewClassifier(log)
	for _, path := range files {
		data, err := fsys.ReadFile(path)
		if err != nil {
			log.Warn("skipping unreadable file", zap.String("file", path), zap.Error(err))
			continue
		}
		log.Debug("reading resource file", zap.String("file", filepath.Base(path)))
		for _, doc := range SplitDocuments(string(data)) {
			classifier.Add(doc)
		}
	}

	bundles := classifier.Bundles()
	if bundles.Len() == 0 {
		return nil, info, ErrNoServices
	}
	return bundles, info, nil
}

// listResourceFiles returns the sorted .yaml/.yml files directly inside dir,
// excluding chart metadata files.
func listResourceFiles(fsys helmfs.FileSystem, dir string) ([]string, error) {
	var files []string
	err := fsys.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if excludedFiles[name] {
			return nil
		}
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
