package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	site2pdf "github.com/alnah/go-site2pdf"
	"github.com/alnah/go-site2pdf/internal/config"
)

// run loads the configuration, starts the browser and converts either the
// whole input tree or the single --file document.
func run(ctx context.Context, f *runFlags, env *Environment, logger *log.Logger) error {
	cfg, err := loadConfig(f.common.config, logger)
	if err != nil {
		return err
	}
	applyFlags(f, cfg)

	input := firstNonEmpty(f.input, cfg.Input.Dir)
	if input == "" && f.file == "" {
		return fmt.Errorf("%w: use --input, --file or input.dir in the config", ErrNoInput)
	}

	engine, err := env.Launch(ctx, site2pdf.EngineOptionsFromEnv())
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("browser shutdown failed", "err", err)
		}
	}()

	batch, err := site2pdf.NewBatch(engine, cfg, site2pdf.Options{
		Workers: f.workers,
		Logger:  logger,
		Now:     env.Now,
	})
	if err != nil {
		return err
	}

	var report *site2pdf.Report
	if f.file != "" {
		doc, err := site2pdf.DiscoverFile(input, f.file, batch.Resolver())
		if err != nil {
			return err
		}
		report, err = batch.RunDocuments(ctx, []site2pdf.Document{doc})
		if err != nil {
			return err
		}
	} else {
		report, err = batch.Run(ctx, input)
		if err != nil {
			return err
		}
	}

	if f.report != "" {
		if err := report.SaveJSON(f.report); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteReport, err)
		}
		logger.Debug("report written", "path", f.report)
	}

	printSummary(env.Stdout, env.Stderr, report, f.common.quiet, f.common.verbose)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	if report.Stats.Failed > 0 && f.failurePolicy() == policyExit {
		return fmt.Errorf("%w: %d of %d documents", ErrConversionFailed, report.Stats.Failed, report.Stats.Total)
	}
	return nil
}

// loadConfig reads the named config, or the default one when present.
// Without --config and without a default file, built-in defaults apply.
func loadConfig(name string, logger *log.Logger) (*site2pdf.Config, error) {
	if name != "" {
		cfg, err := config.Load(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(config.DefaultName)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, config.ErrConfigNotFound):
		logger.Debug("no config file found, using defaults")
		return site2pdf.DefaultConfig(), nil
	default:
		return nil, fmt.Errorf("loading config: %w", err)
	}
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(f *runFlags, cfg *site2pdf.Config) {
	if f.output != "" {
		cfg.Output.Dir = f.output
	}
	if f.publishDir != "" {
		cfg.Output.PublishDir = f.publishDir
	}
	if f.timeout > 0 {
		cfg.Defaults.Timeout = &site2pdf.Duration{Duration: f.timeout}
		for name, rules := range cfg.Documents {
			rules.Timeout = nil
			cfg.Documents[name] = rules
		}
	}
	// Override keys also declare document types, so they stay.
	if f.noQR {
		cfg.QRCode.Enabled = false
		for name, o := range cfg.QRCode.Documents {
			o.Enabled = site2pdf.Bool(false)
			cfg.QRCode.Documents[name] = o
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
