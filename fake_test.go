package site2pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// Test doubles for Engine and Session. Evaluations are answered by matching
// the script constant passed to Eval.

var errFake = errors.New("fake failure")

const settledSnapshot = `{"svgs":2,"emptySvgs":0,"placeholders":0,"cells":0,"emptyCells":0,"images":1,"pendingImages":0}`

type fakeSession struct {
	engine *fakeEngine

	mu        sync.Mutex
	url       string
	styles    []string
	scripts   []string
	args      [][]any
	lastPrint *proto.PagePrintToPDF
	closed    bool

	navigateErr error
	snapshot    func() (string, error)
	tableRows   string
	evalErr     map[string]error
	printFn     func(ctx context.Context) ([]byte, error)
	addStyleErr error
	panicOn     string
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	if s.engine != nil && s.engine.configure != nil {
		s.engine.configure(url, s)
	}
	if s.panicOn == "navigate" {
		panic("navigate exploded")
	}
	return s.navigateErr
}

func (s *fakeSession) Eval(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	s.mu.Lock()
	s.scripts = append(s.scripts, js)
	s.args = append(s.args, args)
	s.mu.Unlock()

	if err := s.evalErr[js]; err != nil {
		return gson.JSON{}, err
	}
	if err := ctx.Err(); err != nil {
		return gson.JSON{}, err
	}

	switch js {
	case snapshotJS:
		if s.snapshot == nil {
			return gson.NewFrom(settledSnapshot), nil
		}
		raw, err := s.snapshot()
		if err != nil {
			return gson.JSON{}, err
		}
		return gson.NewFrom(raw), nil
	case tableRowsJS:
		if s.tableRows == "" {
			return gson.NewFrom("[]"), nil
		}
		return gson.NewFrom(s.tableRows), nil
	case markTablesJS:
		return gson.NewFrom("1"), nil
	case injectQRJS:
		return gson.NewFrom("true"), nil
	default:
		return gson.NewFrom("null"), nil
	}
}

func (s *fakeSession) AddStyle(ctx context.Context, css string) error {
	if s.addStyleErr != nil {
		return s.addStyleErr
	}
	s.mu.Lock()
	s.styles = append(s.styles, css)
	s.mu.Unlock()
	return nil
}

func (s *fakeSession) PrintPDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error) {
	s.mu.Lock()
	s.lastPrint = req
	s.mu.Unlock()
	if s.panicOn == "print" {
		panic("print exploded")
	}
	if s.printFn != nil {
		return s.printFn(ctx)
	}
	return []byte("%PDF-1.7 fake"), nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.engine != nil {
		s.engine.release()
	}
	return nil
}

// evaluated reports whether js was evaluated at least once.
func (s *fakeSession) evaluated(js string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, got := range s.scripts {
		if got == js {
			return true
		}
	}
	return false
}

// fakeEngine hands out fakeSessions and tracks how many are open at once.
type fakeEngine struct {
	mu          sync.Mutex
	sessions    []*fakeSession
	open        int
	maxOpen     int
	newErr      error
	configure   func(url string, s *fakeSession)
	engineClose int
}

func (e *fakeEngine) NewSession(ctx context.Context) (Session, error) {
	if e.newErr != nil {
		return nil, e.newErr
	}
	s := &fakeSession{engine: e}
	e.mu.Lock()
	e.sessions = append(e.sessions, s)
	e.open++
	if e.open > e.maxOpen {
		e.maxOpen = e.open
	}
	e.mu.Unlock()
	return s, nil
}

func (e *fakeEngine) release() {
	e.mu.Lock()
	e.open--
	e.mu.Unlock()
}

func (e *fakeEngine) Close() error {
	e.engineClose++
	return nil
}

func (e *fakeEngine) allClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.sessions {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			return false
		}
	}
	return true
}

// writeSite creates HTML files (relative slash paths) under a temp root.
func writeSite(t *testing.T, files ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		content := "<html><body><h1>" + f + "</h1></body></html>"
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// testConfig returns a config with fast readiness settings for fakes.
func testConfig(t *testing.T) *Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.WaitConditions.Timeout = Duration{200 * time.Millisecond}
	cfg.WaitConditions.ImageTimeout = Duration{100 * time.Millisecond}
	cfg.WaitConditions.PollInterval = Duration{5 * time.Millisecond}
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	return cfg
}

func urlContains(url, part string) bool {
	return strings.Contains(url, part)
}
