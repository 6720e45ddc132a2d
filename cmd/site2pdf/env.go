package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	site2pdf "github.com/alnah/go-site2pdf"
)

// EngineFactory starts the rendering engine for a batch.
type EngineFactory func(ctx context.Context, opts site2pdf.EngineOptions) (site2pdf.Engine, error)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Launch EngineFactory
}

// DefaultEnv returns the production environment backed by headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Launch: launchChrome,
	}
}

func launchChrome(ctx context.Context, opts site2pdf.EngineOptions) (site2pdf.Engine, error) {
	return site2pdf.LaunchEngine(ctx, opts)
}

// loadEnvFile exports variables from path without overriding the ones
// already set. A missing file is only an error when explicitly requested.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrEnvFile, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %v", ErrEnvFile, err)
	}
	return nil
}
