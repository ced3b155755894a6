package main

// Options holds the configuration for one refactoring run.
type Options struct {
	InputDir  string
	OutputDir string

	// DryRun reports what would be generated without writing anything.
	DryRun bool
	// Validate runs helm template over the generated chart afterwards.
	Validate bool
	// NoTransformValues copies values.yaml through instead of
	// restructuring it.
	NoTransformValues bool
	// Inline emits each service's own rewritten manifests instead of
	// includes against the shared defines.
	Inline bool
	// Verbose enables debug logging.
	Verbose bool
}
