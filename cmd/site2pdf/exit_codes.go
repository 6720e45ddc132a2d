package main

import (
	"errors"
	"os"

	site2pdf "github.com/alnah/go-site2pdf"
	"github.com/alnah/go-site2pdf/internal/config"
	"github.com/alnah/go-site2pdf/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrNoInput          = errors.New("no input specified")
	ErrEnvFile          = errors.New("failed to load environment file")
	ErrWriteReport      = errors.New("failed to write report")
	ErrConversionFailed = errors.New("some documents failed to convert")
)

// Exit codes for the site2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, custom codes < 126,
// and 130 when a second interrupt aborts the batch.
const (
	ExitSuccess    = 0 // Batch completed
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags or config
	ExitIO         = 3 // Input missing, output unusable
	ExitBrowser    = 4 // Browser could not start
	ExitConversion = 5 // Documents failed under the exit policy

	ExitInterrupted = 130 // Second interrupt, 128+SIGINT by shell convention
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrConversionFailed) {
		return ExitConversion
	}

	// Browser errors (exit 4)
	if errors.Is(err, site2pdf.ErrBrowserLaunch) ||
		errors.Is(err, site2pdf.ErrBrowserConnect) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, site2pdf.ErrInputRoot) ||
		errors.Is(err, site2pdf.ErrOutputDir) ||
		errors.Is(err, site2pdf.ErrOutputLocked) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrEnvFile) ||
		errors.Is(err, ErrWriteReport) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrUnsupportedExt) ||
		errors.Is(err, site2pdf.ErrMissingDefaults) ||
		errors.Is(err, site2pdf.ErrInvalidPageRules) ||
		errors.Is(err, site2pdf.ErrInvalidQRConfig) ||
		errors.Is(err, site2pdf.ErrInvalidWaitRules) ||
		errors.Is(err, site2pdf.ErrInvalidPattern) ||
		errors.Is(err, site2pdf.ErrStyleInject) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, site2pdf.ErrBrowserLaunch), errors.Is(err, site2pdf.ErrBrowserConnect):
		return hints.ForBrowserLaunch()
	case errors.Is(err, site2pdf.ErrOutputLocked):
		return hints.ForOutputLocked()
	case errors.Is(err, site2pdf.ErrOutputDir):
		return hints.ForOutputDirectory()
	case errors.Is(err, site2pdf.ErrInvalidPattern):
		return hints.ForInvalidPattern()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.DefaultName))
	}
	return ""
}
