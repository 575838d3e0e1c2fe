package metapush

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := pusher.Push(ctx, config)
//	if errors.Is(err, metapush.ErrOutputExists) {
//	    // Tell the user to pass --overwrite
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOutputExists indicates the output file already exists and no
	// overwrite directive was given. Reported before any mutation occurs.
	ErrOutputExists = errors.New("output file exists")

	// ErrApprovalDenied indicates the user denied approval for overwriting.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrNoHandler indicates no adapter recognizes a given input file.
	ErrNoHandler = errors.New("no handler for input")

	// ErrAmbiguousStructure indicates more than one candidate node was found
	// where exactly one was expected while resolving a template path.
	// A malformed template is not recoverable; this aborts the run.
	ErrAmbiguousStructure = errors.New("ambiguous template structure")

	// ErrTemplateNotFound indicates the metadata template could not be read.
	ErrTemplateNotFound = errors.New("template not found")
)

// TemplateError is a structured error with file context and an actionable
// hint. Used for problems in template or content documents where a bare
// sentinel would leave the user guessing.
type TemplateError struct {
	FilePath string // Path to the file with the error
	Line     int    // Line number (0 if unknown)
	Path     string // Document path (e.g. "eainfo/detailed/attr") if applicable
	Message  string // Primary error message
	Hint     string // Actionable suggestion for fixing
	Err      error  // Wrapped sentinel, if any
}

// Error implements the error interface with rich formatting. Messages that
// embed offending document content are truncated to MaxErrorPreviewLength.
func (e *TemplateError) Error() string {
	location := e.FilePath
	if e.Line > 0 {
		location = fmt.Sprintf("%s (line %d)", e.FilePath, e.Line)
	}

	message := e.Message
	if len(message) > MaxErrorPreviewLength {
		message = message[:MaxErrorPreviewLength] + "..."
	}

	msg := fmt.Sprintf("template error in %s: %s", location, message)
	if e.Path != "" {
		msg = fmt.Sprintf("template error in %s [at: %s]: %s", location, e.Path, message)
	}

	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}

	return msg
}

// Unwrap exposes the wrapped sentinel for errors.Is checks.
func (e *TemplateError) Unwrap() error {
	return e.Err
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrOutputExists):
		return ExitOutputExists
	case errors.Is(err, ErrNoHandler):
		return ExitNoHandler
	case errors.Is(err, ErrAmbiguousStructure):
		return ExitAmbiguousTemplate
	case errors.Is(err, ErrTemplateNotFound):
		return ExitConfigError
	}

	// cobra reports flag and argument misuse as plain errors; classify
	// them by message so scripts get the conventional usage exit code.
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "accepts ") {
		return ExitUsageError
	}

	return ExitGeneralError
}
