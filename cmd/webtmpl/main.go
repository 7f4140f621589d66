package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return ExitCodeSuccess
	}

	var exit *exitError
	if errors.As(err, &exit) {
		fmt.Fprintf(stderr, FmtErrorWithCause, exit.msg, exit.err)
		return exit.code
	}

	// Flag and argument errors come straight from cobra.
	fmt.Fprintln(stderr, err)
	return ExitCodeUsageError
}

// exitError carries the exit code of a failed command.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func fail(code int, msg string, err error) error {
	return &exitError{code: code, msg: msg, err: err}
}
