package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Command names.
const (
	cmdExport     = "export"
	cmdDoctor     = "doctor"
	cmdVersion    = "version"
	cmdHelp       = "help"
	cmdCompletion = "completion"
)

// ErrUnknownCommand is returned for a first argument that is neither a
// command nor an input.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	os.Exit(runMain(os.Args[1:], DefaultEnv(), newExporterPool))
}

// runMain dispatches to a command and returns the process exit code.
// Without a command name, arguments are treated as export arguments.
func runMain(args []string, env *Environment, newPool poolFactory) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case cmdHelp, "-h", "--help":
		return runHelp(args[1:], env)
	case cmdVersion, "--version":
		fmt.Fprintf(env.Stdout, "menupdf %s\n", Version)
		return ExitSuccess
	case cmdDoctor:
		return runDoctorCmd(args[1:], env)
	case cmdCompletion:
		return runCompletion(args[1:], env)
	case cmdExport:
		args = args[1:]
	default:
		if !looksLikeExportArg(args[0]) {
			fmt.Fprintf(env.Stderr, "%v: %q\n\n", ErrUnknownCommand, args[0])
			printUsage(env.Stderr)
			return ExitUsage
		}
	}

	flags, positional, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runExport(ctx, flags, positional, env, newPool); err != nil {
		var batchErr *batchError
		if errors.As(err, &batchErr) {
			// Each failure was already reported with its hint.
			fmt.Fprintln(env.Stderr, err)
		} else {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// looksLikeExportArg reports whether arg starts an export without the
// command name: a flag, stdin, an input file name, or an existing path.
func looksLikeExportArg(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		return true
	}
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".json", ".txt":
		return true
	}
	_, err := os.Stat(arg)
	return err == nil
}
