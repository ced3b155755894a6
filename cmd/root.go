package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chartforge/helm-refactor/internal/logging"
	helmfs "github.com/chartforge/helm-refactor/pkg/fs"
)

var opts Options

var rootCmd = &cobra.Command{
	Use:   "helm-refactor <input-dir> <output-dir>",
	Short: "Refactor helmify output into a parameterized chart",
	Long: `helm-refactor regroups the per-service manifests of a helmify-generated
chart, detects which optional fields each service uses, and regenerates the
template layer as one shared helper template plus a small include file per
service. values.yaml is restructured to match, with probe configuration
recovered from the deployment texts injected next to each container.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts.InputDir = args[0]
		opts.OutputDir = args[1]

		info, err := os.Stat(opts.InputDir)
		if err != nil {
			return fmt.Errorf("input directory %s: %w", opts.InputDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", opts.InputDir)
		}

		log, err := logging.New(opts.Verbose)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer log.Sync()

		p := NewPipeline(helmfs.OSFileSystem{}, log, opts)
		return p.Run(cmd.Context())
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would be generated without writing files")
	rootCmd.Flags().BoolVar(&opts.Validate, "validate", false, "run 'helm template' over the generated chart")
	rootCmd.Flags().BoolVar(&opts.NoTransformValues, "no-transform-values", false, "copy values.yaml through unchanged")
	rootCmd.Flags().BoolVar(&opts.Inline, "inline", false, "emit rewritten per-service manifests instead of shared includes")
}
