package metapush

import "context"

// Pusher is the main interface for pushing content into metadata documents.
// Implementations handle the full workflow: template loading, dialect
// detection, content reading, merging, and gated output writing.
type Pusher interface {
	// Push executes a push run using the provided configuration.
	// It returns an error if the run fails at any stage; no output is
	// written on failure.
	Push(ctx context.Context, config PushConfig) error
}

// GapReporter is the interface for analyzing a data directory for missing
// metadata coverage.
type GapReporter interface {
	// Report inspects the configured data directory and returns a rendered
	// gap report.
	Report(ctx context.Context, config GapConfig) (string, error)
}
