package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"sanchaar/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			reportError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// reportError prints err with its taxonomy kind and, for collaborator
// failures, the service that failed.
func reportError(w io.Writer, err error) {
	details := services.Describe(err)
	fmt.Fprintf(w, "Error: %s\n", details.Message)
	if details.Kind != services.KindUnknown {
		fmt.Fprintf(w, "  kind:    %s\n", details.Kind)
	}
	if details.Service != "" {
		fmt.Fprintf(w, "  service: %s\n", details.Service)
	}
	fmt.Fprintf(w, "  retry:   %s\n", yesNo(services.Retryable(err)))
}
