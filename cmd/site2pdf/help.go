package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: site2pdf [input] [flags]")
	fmt.Fprintln(w, "       site2pdf <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert every HTML page of a built site into a print-ready PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  doctor     Check browser and environment setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --input <dir>           Site root (or input.dir in config)")
	fmt.Fprintln(w, "  -f, --file <path>           Convert a single HTML file")
	fmt.Fprintln(w, "  -o, --output <dir>          Output directory (default: pdf)")
	fmt.Fprintln(w, "      --publish-dir <dir>     Copy PDFs into this existing directory")
	fmt.Fprintln(w, "      --report <path>         Write a JSON report")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path (default: site2pdf)")
	fmt.Fprintln(w, "  -w, --workers <n>           Documents converted in parallel (default: 1)")
	fmt.Fprintln(w, "      --timeout <d>           Capture timeout per document, e.g. 90s")
	fmt.Fprintln(w, "      --no-qr                 Disable QR codes")
	fmt.Fprintln(w, "      --env-file <path>       Environment file (default: .env, optional)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Policy:")
	fmt.Fprintln(w, "      --batch-failure <p>     report (default) or exit when documents fail")
	fmt.Fprintln(w, "      --single-failure <p>    exit (default) or report for --file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show debug logs and per-document details")
	fmt.Fprintln(w, "      --version               Show version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN             Chrome binary to use")
	fmt.Fprintln(w, "  ROD_SANDBOX=1               Enable the Chrome sandbox")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: site2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Chrome can be found and the environment can run conversions.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: site2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: site2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
