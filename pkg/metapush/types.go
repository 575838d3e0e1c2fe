package metapush

// PushConfig holds everything needed for one push run: where the template
// lives, which content sources feed it, and how the output is written.
// One invocation processes one document end-to-end; nothing here is shared
// between runs.
type PushConfig struct {
	// TemplatePath is the metadata template to update.
	TemplatePath string

	// ContentPaths are the content sources (CSV, YAML) pushed into the
	// template, processed in order.
	ContentPaths []string

	// OutputPath is where the updated document is written. Empty means
	// overwrite the template in place (still gated by Overwrite).
	OutputPath string

	// Overwrite permits replacing an existing output file.
	Overwrite bool

	// Force skips the interactive approval prompt for overwrites.
	Force bool

	// Entities restricts processing to the named entities. Empty means all.
	Entities []string

	// Defaults are field values filled into attributes where absent.
	// They never overwrite values present in a source.
	Defaults map[string]string

	// MergeUnnamed controls the absent-identity merge policy: when true
	// (the reference behavior) two records with no identifying key match
	// each other; when false each unnamed record keeps a distinct
	// generated identity and is never coalesced.
	MergeUnnamed bool
}

// GapConfig holds the inputs for a gap analysis run over a data directory.
type GapConfig struct {
	// DataDir is the directory walked for tabular data files.
	DataDir string
}
