package metapush

import "context"

// Approver handles user interaction for approval workflows, particularly
// for destructive operations like overwriting an existing output file.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to confirm the output path
type Approver interface {
	// RequestApproval prompts for confirmation before overwriting a file.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - outputPath: Path of the file to be overwritten
	//
	// Returns:
	//   - bool: true if approved, false if denied
	//   - error: Any error that occurred during the approval process
	RequestApproval(ctx context.Context, outputPath string) (bool, error)
}
