package site2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/alnah/go-site2pdf/internal/process"
)

// Compile-time interface checks
var (
	_ Engine  = (*RodEngine)(nil)
	_ Session = (*rodSession)(nil)
)

// EngineOptions configures the headless browser.
type EngineOptions struct {
	// BrowserBin is a custom Chrome binary. Empty uses ROD_BROWSER_BIN, then
	// rod's lookup (which downloads Chromium on first run if none is found).
	BrowserBin string
	// Sandbox enables the Chrome sandbox. Off by default: containers and CI
	// runners rarely grant the privileges it needs.
	Sandbox bool
}

// EngineOptionsFromEnv reads ROD_BROWSER_BIN and ROD_SANDBOX.
func EngineOptionsFromEnv() EngineOptions {
	return EngineOptions{
		BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		Sandbox:    os.Getenv("ROD_SANDBOX") == "1",
	}
}

// RodEngine drives one headless Chrome instance through go-rod.
type RodEngine struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// LaunchEngine starts Chrome and connects to it.
// The browser lives until Close, independently of ctx.
func LaunchEngine(ctx context.Context, opts EngineOptions) (*RodEngine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().Headless(true)
	if opts.BrowserBin != "" {
		l = l.Bin(opts.BrowserBin)
	}
	if !opts.Sandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return &RodEngine{browser: browser, launcher: l}, nil
}

// NewSession opens a blank page. Pages never share state with each other.
func (e *RodEngine) NewSession(ctx context.Context) (Session, error) {
	e.mu.Lock()
	browser := e.browser
	e.mu.Unlock()
	if browser == nil {
		return nil, ErrBrowserConnect
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, err
	}
	return &rodSession{page: page}, nil
}

// Close shuts the browser down and kills any process it left behind.
// Safe to call more than once.
func (e *RodEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser == nil {
		return nil
	}

	err := e.browser.Close()
	e.browser = nil
	if e.launcher != nil {
		if pid := e.launcher.PID(); pid > 0 {
			_ = process.Terminate(pid)
		}
		e.launcher.Kill()
		e.launcher.Cleanup()
		e.launcher = nil
	}
	return err
}

// rodSession implements Session on a rod page.
type rodSession struct {
	page *rod.Page
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("%w: %v", ErrNavigate, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrNavigate, err)
	}
	return nil
}

func (s *rodSession) Eval(ctx context.Context, js string, args ...any) (gson.JSON, error) {
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

func (s *rodSession) AddStyle(ctx context.Context, css string) error {
	return s.page.Context(ctx).AddStyleTag("", css)
}

func (s *rodSession) PrintPDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error) {
	reader, err := s.page.Context(ctx).PDF(req)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return data, nil
}

func (s *rodSession) Close() error {
	return s.page.Close()
}
