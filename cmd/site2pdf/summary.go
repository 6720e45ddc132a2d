package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	site2pdf "github.com/alnah/go-site2pdf"
	"github.com/alnah/go-site2pdf/internal/hints"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleTitle   = lipgloss.NewStyle().Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconArrow   = "→"
)

// printSummary writes per-document lines and totals. Failures always go to
// stderr; other lines are suppressed by quiet.
func printSummary(stdout, stderr io.Writer, r *site2pdf.Report, quiet, verbose bool) {
	timedOut := false
	for _, res := range r.Results {
		if !res.Succeeded() {
			fmt.Fprintf(stderr, "%s %s: %v\n", styleError.Render(iconError), res.Document.RelPath, res.Err)
			timedOut = timedOut || errors.Is(res.Err, site2pdf.ErrCaptureTime)
			continue
		}
		if quiet {
			continue
		}
		icon := styleSuccess.Render(iconSuccess)
		if res.Degraded {
			icon = styleWarning.Render(iconWarning)
		}
		line := fmt.Sprintf("%s %s %s %s", icon, res.Document.RelPath, iconArrow, res.OutputPath)
		if verbose {
			line += " " + styleDim.Render(detail(res))
		}
		fmt.Fprintln(stdout, line)
	}
	if timedOut {
		fmt.Fprintln(stderr, hints.ForCaptureTimeout())
	}

	if quiet {
		return
	}

	s := r.Stats
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "%s %s, %s, %s in %s\n",
		styleTitle.Render("Batch"),
		styleSuccess.Render(fmt.Sprintf("%d converted", s.Successful)),
		styleWarning.Render(fmt.Sprintf("%d degraded", s.Degraded)),
		styleError.Render(fmt.Sprintf("%d failed", s.Failed)),
		s.Duration.Round(time.Millisecond))

	if p := r.Publish; p != nil {
		switch {
		case p.Skipped:
			fmt.Fprintf(stdout, "%s publish skipped: %s does not exist\n", styleWarning.Render(iconWarning), p.Dir)
		default:
			fmt.Fprintf(stdout, "Published %d to %s", len(p.Copied), p.Dir)
			if n := len(p.Failures); n > 0 {
				fmt.Fprint(stdout, styleError.Render(fmt.Sprintf(" (%d failed)", n)))
			}
			fmt.Fprintln(stdout)
		}
	}
}

// detail formats pages, size and duration: "(3 pages, 120 kB, 1.2s)".
func detail(res site2pdf.ConversionResult) string {
	pages := "? pages"
	if res.Pages > 0 {
		pages = fmt.Sprintf("%d %s", res.Pages, plural(res.Pages, "page", "pages"))
	}
	return fmt.Sprintf("(%s, %s, %s)", pages, humanize.Bytes(uint64(res.Bytes)), res.Duration.Round(time.Millisecond))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
