// Package ui provides console implementations of the metapush.Approver
// interface for gating overwrites of existing output files.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tnbrown/metapush/pkg/metapush"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user with a yes/no question
// before an existing output file is overwritten.
type InteractiveApprover struct {
	in  io.Reader
	out io.Writer
}

// NewInteractiveApprover creates an InteractiveApprover on stdin/stderr.
func NewInteractiveApprover() metapush.Approver {
	return &InteractiveApprover{in: os.Stdin, out: os.Stderr}
}

// RequestApproval prompts the user to confirm overwriting outputPath.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, outputPath string) (bool, error) {
	fmt.Fprintf(a.out, "\nOutput file '%s' already exists and will be replaced.\n", outputPath)
	fmt.Fprint(a.out, "Overwrite? [y/N]: ")

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.in)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		switch strings.ToLower(input) {
		case "y", "yes":
			fmt.Fprintln(a.out, "Proceeding with overwrite.")
			return true, nil
		}
		fmt.Fprintln(a.out, "Operation cancelled; output file left unchanged.")
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ metapush.Approver = (*InteractiveApprover)(nil)
