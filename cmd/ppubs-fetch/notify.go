package main

import (
	"fmt"
	"io"

	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// consoleNotifier prints status lines and progress percentages.
type consoleNotifier struct {
	w io.Writer
}

func (c consoleNotifier) Progress(fraction float64) {
	if fraction == types.ProgressIndeterminate {
		return
	}
	fmt.Fprintf(c.w, "  [%3.0f%%]\n", fraction*100)
}

func (c consoleNotifier) Status(message string) {
	fmt.Fprintln(c.w, message)
}
