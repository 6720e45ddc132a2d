package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	site2pdf "github.com/alnah/go-site2pdf"
)

var errFake = errors.New("fake failure")

// fakeEngine settles every page immediately and prints a stub PDF.
// Pages whose URL contains failOn fail to load.
type fakeEngine struct {
	mu     sync.Mutex
	failOn string
	opened int
	closed bool
}

func (e *fakeEngine) NewSession(context.Context) (site2pdf.Session, error) {
	e.mu.Lock()
	e.opened++
	e.mu.Unlock()
	return &fakeSession{failOn: e.failOn}, nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

type fakeSession struct {
	failOn string
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	if s.failOn != "" && strings.Contains(url, s.failOn) {
		return site2pdf.ErrNavigate
	}
	return nil
}

func (s *fakeSession) Eval(context.Context, string, ...any) (gson.JSON, error) {
	return gson.New(nil), nil
}

func (s *fakeSession) AddStyle(context.Context, string) error { return nil }

func (s *fakeSession) PrintPDF(context.Context, *proto.PagePrintToPDF) ([]byte, error) {
	return []byte("%PDF-1.7 fake"), nil
}

func (s *fakeSession) Close() error { return nil }

// testEnv returns an Environment whose engine is engine, capturing output.
func testEnv(engine site2pdf.Engine, stdout, stderr *strings.Builder) *Environment {
	env := DefaultEnv()
	env.Stdout = stdout
	env.Stderr = stderr
	env.Launch = func(context.Context, site2pdf.EngineOptions) (site2pdf.Engine, error) {
		return engine, nil
	}
	return env
}

// writeFiles creates files (slash paths relative to a temp dir) and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const testConfigYAML = `defaults:
  format: A4
waitConditions:
  timeout: 200ms
  pollInterval: 5
`

// writeConfig writes testConfigYAML plus extra into a temp file.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "site2pdf.yaml")
	if err := os.WriteFile(p, []byte(testConfigYAML+extra), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
