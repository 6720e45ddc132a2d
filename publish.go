package site2pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-site2pdf/internal/fileutil"
)

// PublishFailure records one artifact that could not be copied.
type PublishFailure struct {
	Path string
	Err  error
}

// PublishReport summarizes a publish pass.
type PublishReport struct {
	Dir      string
	Skipped  bool     // Target directory missing; nothing was copied
	Copied   []string // Destination paths
	Failures []PublishFailure
}

// Publisher mirrors successful artifacts into a secondary directory.
type Publisher struct {
	logger *log.Logger
}

// NewPublisher returns a Publisher. logger may be nil.
func NewPublisher(logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Publisher{logger: logger}
}

// Publish copies every artifact (paths under outputRoot) into dir, keeping
// its path relative to outputRoot. A missing dir skips publishing with a
// warning. A failed copy is recorded and the remaining copies continue.
func (p *Publisher) Publish(outputRoot, dir string, artifacts []string) PublishReport {
	report := PublishReport{Dir: dir}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		p.logger.Warn("publish directory not found, skipping", "dir", dir)
		report.Skipped = true
		return report
	}

	for _, src := range artifacts {
		dst, err := publishPath(outputRoot, dir, src)
		if err == nil {
			err = fileutil.CopyFile(src, dst)
		}
		if err != nil {
			p.logger.Warn("publish copy failed", "path", src, "err", err)
			report.Failures = append(report.Failures, PublishFailure{
				Path: src,
				Err:  fmt.Errorf("%w: %v", ErrPublishCopy, err),
			})
			continue
		}
		report.Copied = append(report.Copied, dst)
	}

	p.logger.Info("published artifacts", "dir", dir, "copied", len(report.Copied), "failed", len(report.Failures))
	return report
}

func publishPath(outputRoot, dir, src string) (string, error) {
	rel, err := filepath.Rel(outputRoot, src)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", src, outputRoot)
	}
	return filepath.Join(dir, rel), nil
}
