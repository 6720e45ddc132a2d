package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"
)

// Failure policies for --batch-failure and --single-failure.
const (
	policyReport = "report" // Record failures, exit 0
	policyExit   = "exit"   // Exit with ExitConversion when any document failed
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// runFlags holds every flag of the conversion command.
type runFlags struct {
	common        commonFlags
	input         string
	output        string
	file          string
	workers       int
	publishDir    string
	report        string
	timeout       time.Duration
	noQR          bool
	envFile       string
	envFileSet    bool
	batchFailure  string
	singleFailure string
	version       bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and per-document details")
}

// newRunFlagSet registers every conversion flag on a fresh FlagSet bound to f.
// Completion scripts are generated from the same set.
func newRunFlagSet(f *runFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("site2pdf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVarP(&f.input, "input", "i", "", "input directory (site root)")
	fs.StringVarP(&f.output, "output", "o", "", "output directory for PDFs")
	fs.StringVarP(&f.file, "file", "f", "", "convert a single HTML file")
	fs.IntVarP(&f.workers, "workers", "w", 1, "documents converted in parallel")
	fs.StringVar(&f.publishDir, "publish-dir", "", "copy successful PDFs into this existing directory")
	fs.StringVar(&f.report, "report", "", "write a JSON report to this path")
	fs.DurationVar(&f.timeout, "timeout", 0, "capture timeout per document (e.g. 90s)")
	fs.BoolVar(&f.noQR, "no-qr", false, "disable QR codes")
	fs.StringVar(&f.envFile, "env-file", ".env", "environment file to load")
	fs.StringVar(&f.batchFailure, "batch-failure", policyReport, "batch exit policy: report, exit")
	fs.StringVar(&f.singleFailure, "single-failure", policyExit, "single-file exit policy: exit, report")
	fs.BoolVar(&f.version, "version", false, "show version")
	addCommonFlags(fs, &f.common)
	return fs
}

// parseRunFlags parses the conversion flags. Positional arguments are not
// accepted except a single input directory, which --input overrides.
func parseRunFlags(args []string, stderr io.Writer) (*runFlags, error) {
	f := &runFlags{}
	fs := newRunFlagSet(f)

	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	switch rest := fs.Args(); {
	case len(rest) > 1:
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, rest[1:])
	case len(rest) == 1 && f.input == "":
		f.input = rest[0]
	case len(rest) == 1:
		return nil, fmt.Errorf("%w: input given both as argument and --input", ErrUsage)
	}

	f.envFileSet = fs.Changed("env-file")
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *runFlags) validate() error {
	if f.workers < 0 {
		return fmt.Errorf("%w: --workers must not be negative", ErrUsage)
	}
	if f.timeout < 0 {
		return fmt.Errorf("%w: --timeout must not be negative", ErrUsage)
	}
	if f.common.quiet && f.common.verbose {
		return fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	for name, v := range map[string]string{"--batch-failure": f.batchFailure, "--single-failure": f.singleFailure} {
		if v != policyReport && v != policyExit {
			return fmt.Errorf("%w: %s must be %q or %q, got %q", ErrUsage, name, policyReport, policyExit, v)
		}
	}
	return nil
}

// level maps --quiet and --verbose to a log level.
func (f *runFlags) level() log.Level {
	switch {
	case f.common.verbose:
		return log.DebugLevel
	case f.common.quiet:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// failurePolicy returns the policy that applies to this run.
func (f *runFlags) failurePolicy() string {
	if f.file != "" {
		return f.singleFailure
	}
	return f.batchFailure
}
