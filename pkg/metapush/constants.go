package metapush

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Push/report completed successfully
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration or parameters
	ExitApprovalDenied    = 12 // User denied overwrite approval
	ExitOutputExists      = 13 // Output file exists and --overwrite not given
	ExitNoHandler         = 14 // No adapter recognizes an input file
	ExitAmbiguousTemplate = 15 // Template structure is ambiguous
)

const (
	// DefaultForceApprovalCountdown is the countdown duration before forced
	// approval proceeds with overwriting an existing output file.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultOutputIndent is the indentation unit used when serializing
	// metadata documents.
	DefaultOutputIndent = "  "

	// MaxErrorPreviewLength is the maximum number of characters shown in
	// error messages when previewing offending document content.
	MaxErrorPreviewLength = 200
)
