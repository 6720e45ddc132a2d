// Command site2pdf converts a directory of built HTML pages into PDFs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches subcommands and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) > 1 {
		switch args[1] {
		case "doctor":
			return runDoctorCmd(args[2:], env)
		case "help":
			return runHelp(args[2:], env)
		case "completion":
			if err := runCompletion(args[2:], env); err != nil {
				fmt.Fprintf(env.Stderr, "error: %v\n", err)
				return ExitUsage
			}
			return ExitSuccess
		case "version":
			fmt.Fprintf(env.Stdout, "site2pdf %s\n", Version)
			return ExitSuccess
		}
	}

	flags, err := parseRunFlags(args[1:], env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n\n", err)
		printUsage(env.Stderr)
		return ExitUsage
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "site2pdf %s\n", Version)
		return ExitSuccess
	}

	logger := newLogger(env.Stderr, flags.level())

	// maxprocs.Set only fails on an invalid GOMAXPROCS, where runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(logger.Debugf))

	if err := loadEnvFile(flags.envFile, flags.envFileSet); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}

	ctx, stop := notifyContext(context.Background(), logger)
	defer stop()

	if err := run(ctx, flags, env, logger); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}
