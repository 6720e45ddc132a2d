package site2pdf

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// Engine creates isolated rendering sessions. One Engine serves a whole batch.
type Engine interface {
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// Session is one browser page, exclusively owned by a single conversion.
// Every blocking method honors ctx.
type Session interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// Eval runs a JavaScript function expression with args and returns its result.
	Eval(ctx context.Context, js string, args ...any) (gson.JSON, error)
	// AddStyle appends a <style> element with css to the document.
	AddStyle(ctx context.Context, css string) error
	// PrintPDF captures the page with Chrome's print pipeline.
	PrintPDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error)
	Close() error
}

// withSession opens a session, runs fn and closes the session on every exit
// path, including panics raised by fn.
func withSession(ctx context.Context, engine Engine, logger *log.Logger, fn func(Session) error) error {
	sess, err := engine.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionOpen, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("session close failed", "err", cerr)
		}
	}()
	return fn(sess)
}

// fileURL converts a local path to a file:// URL Chrome can navigate to.
func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letters
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
