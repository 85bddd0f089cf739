package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hadron-dev/hadron/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "hadron:", err)
		os.Exit(1)
	}
}

// run builds the command tree and executes it; the exit code is decided by main.
func run(outW io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(version)
	root.SetOut(outW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
