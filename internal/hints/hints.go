// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-site2pdf/internal/fileutil"
)

// IsInContainer detects Docker-like environments through /.dockerenv.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

func inCI() bool {
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}

// ForBrowserLaunch returns hints for browser launch and connection errors.
func ForBrowserLaunch() string {
	var hints []string

	if os.Getenv("ROD_SANDBOX") == "1" && (inCI() || IsInContainer()) {
		hints = append(hints, "unset ROD_SANDBOX in Docker/CI, the sandbox needs extra privileges there")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	hints = append(hints, "run 'site2pdf doctor' to check the browser setup")

	return formatHints(hints)
}

// ForCaptureTimeout suggests raising the capture deadline.
func ForCaptureTimeout() string {
	return format("raise defaults.timeout in the config or use --timeout")
}

// ForConfigNotFound suggests --config or the first user config location searched.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/site2pdf.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-site2pdf") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForOutputLocked explains a held output lock.
func ForOutputLocked() string {
	return format("another batch is writing to this directory; wait for it or choose another --output")
}

// ForInvalidPattern shows the expected exclude syntax.
func ForInvalidPattern() string {
	return format(`excludeFiles use doublestar globs, e.g. "**/drafts/**" or "404.html"`)
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
