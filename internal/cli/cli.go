// Package cli implements the excitond command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// errUsage marks a missing subcommand; MainWithArgs turns it into exit code 2.
var errUsage = errors.New("usage")

// Options carries values shared by all subcommands.
type Options struct {
	LogLevel string
	Stdout   io.Writer
	Stderr   io.Writer
}

// MainWithArgs runs the command tree and returns the process exit code:
// 0 on success, 2 when no command was given, 1 on any other error.
func MainWithArgs(args []string, stdout, stderr io.Writer) int {
	opts := &Options{LogLevel: envOr("EXCITOND_LOG_LEVEL", "info"), Stdout: stdout, Stderr: stderr}
	root := buildRootCmdWith(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			_ = root.Usage()
			return 2
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/excitond.
func Main() int { return MainWithArgs(os.Args[1:], os.Stdout, os.Stderr) }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
