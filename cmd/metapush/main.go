package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/tnbrown/metapush/internal/cli"
	"github.com/tnbrown/metapush/pkg/metapush"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(metapush.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(metapush.ExitCodeForError(err))
	}
}
