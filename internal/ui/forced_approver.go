package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tnbrown/metapush/pkg/metapush"
)

// ForcedApprover implements the Approver interface for forced
// (non-interactive) approval. It displays a countdown and automatically
// approves after it elapses, used when the --force flag is provided.
type ForcedApprover struct {
	out       io.Writer
	countdown time.Duration
}

// NewForcedApprover creates a ForcedApprover with the default countdown.
func NewForcedApprover() metapush.Approver {
	return &ForcedApprover{
		out:       os.Stderr,
		countdown: metapush.DefaultForceApprovalCountdown,
	}
}

// RequestApproval warns about the impending overwrite and approves once the
// countdown elapses. Ctrl+C (context cancellation) aborts.
func (a *ForcedApprover) RequestApproval(ctx context.Context, outputPath string) (bool, error) {
	fmt.Fprintf(a.out, "\nOutput file '%s' exists and will be OVERWRITTEN.\n", outputPath)

	for i := int(a.countdown.Seconds()); i > 0; i-- {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.out, "\rOverwriting in: %d seconds... (Press Ctrl+C to cancel)", i)
			time.Sleep(1 * time.Second)
		}
	}

	fmt.Fprintf(a.out, "\rProceeding with overwrite.                                \n")
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ metapush.Approver = (*ForcedApprover)(nil)
