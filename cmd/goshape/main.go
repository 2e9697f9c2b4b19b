// Command goshape validates YAML and JSON documents against the built-in
// goshape schemas.
//
// Usage:
//
//	# Validate a file and print the converted output
//	goshape validate entries.yaml --schema entries
//
//	# Print the JSON Schema of a built-in schema
//	goshape schema commands
//
//	# Revalidate on every save
//	goshape watch entries.yaml --schema entries
//
//	# Browse a command tree with ? and ??
//	goshape shell commands.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
