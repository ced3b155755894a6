package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chartforge/helm-refactor/pkg/features"
	helmfs "github.com/chartforge/helm-refactor/pkg/fs"
	"github.com/chartforge/helm-refactor/pkg/manifest"
	"github.com/chartforge/helm-refactor/pkg/parser"
	"github.com/chartforge/helm-refactor/pkg/patterns"
	"github.com/chartforge/helm-refactor/pkg/template"
	"github.com/chartforge/helm-refactor/pkg/values"
)

// Pipeline drives one refactoring run end to end.
type Pipeline struct {
	fsys helmfs.FileSystem
	log  *zap.Logger
	opts Options
}

func NewPipeline(fsys helmfs.FileSystem, log *zap.Logger, opts Options) *Pipeline {
	return &Pipeline{fsys: fsys, log: log, opts: opts}
}

// Run executes the full refactoring flow. Per-document problems are logged
// and skipped; only an input yielding zero services aborts the run.
func (p *Pipeline) Run(ctx context.Context) error {
	set, chart, err := manifest.ScanDirectory(p.fsys, p.opts.InputDir, p.log)
	if err != nil {
		return err
	}
	bundles := set.Bundles()
	p.log.Info("classified services",
		zap.Int("services", len(bundles)),
		zap.String("chart", chart.Name),
		zap.String("version", chart.Version))
	for _, b := range bundles {
		p.log.Debug("service bundle",
			zap.String("service", b.Name),
			zap.Bool("deployment", b.HasDeployment()),
			zap.Bool("service", b.HasService()),
			zap.Bool("serviceAccount", b.HasServiceAccount()),
			zap.Int("other", len(b.Other)))
	}

	union, contribs := p.detectFeatures(bundles)
	p.reportPatterns(bundles)

	if p.opts.DryRun {
		p.log.Info("dry run, nothing written",
			zap.Int("services", len(bundles)),
			zap.Int("features", union.Count()))
		for _, c := range contribs {
			if len(c.Added) > 0 {
				p.log.Info("would support", zap.String("service", c.Service), zap.Any("features", c.Added))
			}
		}
		return nil
	}

	templatesDir := filepath.Join(p.opts.OutputDir, "templates")
	if err := p.fsys.MkdirAll(templatesDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	builder := template.NewBuilder(chart, p.log)
	if err := builder.WriteHelpers(p.fsys, templatesDir, union); err != nil {
		return err
	}

	var param *template.Parameterizer
	if p.opts.Inline {
		param = template.NewParameterizer(chart.Name)
	}
	if err := builder.WriteServiceFiles(p.fsys, templatesDir, bundles, param); err != nil {
		return err
	}

	if err := p.writeValues(bundles); err != nil {
		return err
	}
	p.copySupportingFiles()

	if p.opts.Validate {
		p.validate(ctx)
	}

	p.log.Info("refactoring complete",
		zap.String("output", p.opts.OutputDir),
		zap.Int("services", len(bundles)),
		zap.Int("features", union.Count()))
	return nil
}

// detectFeatures scans every bundle's deployment text and unions the
// results into the feature set the generated template must support.
func (p *Pipeline) detectFeatures(bundles []*manifest.ServiceBundle) (features.Set, []features.Contribution) {
	perService := make([]features.ServiceFeatures, 0, len(bundles))
	for _, b := range bundles {
		set := features.NewSet()
		if b.HasDeployment() {
			set = features.Detect(b.Deployment)
		}
		perService = append(perService, features.ServiceFeatures{Service: b.Name, Set: set})
	}

	union, contribs := features.Aggregate(perService)
	for _, c := range contribs {
		for _, f := range c.Added {
			p.log.Debug("feature contributed",
				zap.String("service", c.Service),
				zap.String("feature", string(f)))
		}
	}
	p.log.Info("template will support features", zap.Int("count", union.Count()))
	return union, contribs
}

// reportPatterns parses whatever can be parsed and logs aggregate
// statistics. Analysis only; generation never depends on it.
func (p *Pipeline) reportPatterns(bundles []*manifest.ServiceBundle) {
	var resources []*parser.Resource
	for _, b := range bundles {
		for _, doc := range [][]string{{b.Deployment}, {b.Service}, {b.ServiceAccount}, b.Other} {
			for _, text := range doc {
				if text == "" {
					continue
				}
				if r := parser.Parse(text, p.log); r != nil {
					resources = append(resources, r)
				}
			}
		}
	}

	stats := patterns.Extract(resources)
	p.log.Info("aggregate patterns",
		zap.Int("matchedResources", stats.MatchedResources),
		zap.Float64("serviceAccountCoverage", stats.ServiceAccountCoverage),
		zap.Any("serviceTypes", stats.Services.TypeCounts),
		zap.Strings("commonEnv", stats.Deployments.CommonEnvNames))
	if len(stats.Deployments.CommonSecurityContext) > 0 {
		p.log.Debug("shared pod security context", zap.Any("fields", stats.Deployments.CommonSecurityContext))
	}
}

// writeValues transforms or copies the input values.yaml into the output
// chart. A missing values.yaml is only a warning.
func (p *Pipeline) writeValues(bundles []*manifest.ServiceBundle) error {
	src := filepath.Join(p.opts.InputDir, "values.yaml")
	dst := filepath.Join(p.opts.OutputDir, "values.yaml")
	if _, err := p.fsys.Stat(src); err != nil {
		p.log.Warn("values.yaml not found in input", zap.String("path", src))
		return nil
	}
	if p.opts.NoTransformValues {
		if err := helmfs.CopyFile(p.fsys, src, dst); err != nil {
			return err
		}
		p.log.Info("copied values.yaml without transformation")
		return nil
	}
	return values.NewTransformer(p.log).TransformFile(p.fsys, src, dst, bundles)
}

// copySupportingFiles carries the chart descriptor and helper templates
// through unchanged. Missing sources are skipped.
func (p *Pipeline) copySupportingFiles() {
	copies := []struct{ src, dst string }{
		{"Chart.yaml", "Chart.yaml"},
		{"_helpers.tpl", filepath.Join("templates", "_helpers.tpl")},
		{filepath.Join("templates", "_helpers.tpl"), filepath.Join("templates", "_helpers.tpl")},
	}
	for _, c := range copies {
		src := filepath.Join(p.opts.InputDir, c.src)
		if _, err := p.fsys.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(p.opts.OutputDir, c.dst)
		if err := helmfs.CopyFile(p.fsys, src, dst); err != nil {
			p.log.Warn("could not copy supporting file", zap.String("file", c.src), zap.Error(err))
			continue
		}
		p.log.Debug("copied supporting file", zap.String("file", c.src))
	}
}
