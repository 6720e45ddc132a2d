package site2pdf

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ysmood/gson"
)

// Readiness is the state of the render gate for one page.
type Readiness int

const (
	Waiting  Readiness = iota // Polling in progress
	Ready                     // Content settled before the deadline
	Degraded                  // A deadline expired; capture proceeds anyway
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case Degraded:
		return "degraded"
	default:
		return "waiting"
	}
}

// ContentSnapshot counts the page elements the gate watches.
type ContentSnapshot struct {
	SVGs          int `json:"svgs"`
	EmptySVGs     int `json:"emptySvgs"`
	Placeholders  int `json:"placeholders"`
	Cells         int `json:"cells"`
	EmptyCells    int `json:"emptyCells"`
	Images        int `json:"images"`
	PendingImages int `json:"pendingImages"`
}

// Settled reports whether dynamic content has finished rendering.
// Pages with SVGs wait for every SVG to have children; pages without SVGs but
// with notebook cells wait for every cell to be filled; other pages are
// settled immediately. Visible loading placeholders always block.
func (s ContentSnapshot) Settled() bool {
	switch {
	case s.SVGs > 0:
		return s.EmptySVGs == 0 && s.Placeholders == 0
	case s.Cells > 0:
		return s.EmptyCells == 0 && s.Placeholders == 0
	default:
		return true
	}
}

// ImagesLoaded reports whether every <img> has finished loading or failed.
func (s ContentSnapshot) ImagesLoaded() bool {
	return s.PendingImages == 0
}

const snapshotJS = `(placeholderSel, cellSel) => {
	const count = (sel) => sel ? document.querySelectorAll(sel).length : 0;
	const svgs = Array.from(document.querySelectorAll('svg'));
	const cells = cellSel ? Array.from(document.querySelectorAll(cellSel)) : [];
	const images = Array.from(document.images);
	return {
		svgs: svgs.length,
		emptySvgs: svgs.filter((s) => s.childElementCount === 0).length,
		placeholders: count(placeholderSel),
		cells: cells.length,
		emptyCells: cells.filter((c) => c.childElementCount === 0 && c.textContent.trim() === '').length,
		images: images.length,
		pendingImages: images.filter((i) => !i.complete).length,
	};
}`

// ReadinessGate waits for a page to reach a stable state before capture.
// Deadline expiry degrades the result instead of failing it.
type ReadinessGate struct {
	rules  WaitRules
	logger *log.Logger
}

// NewReadinessGate returns a gate using rules, with zero durations replaced
// by their defaults. logger may be nil.
func NewReadinessGate(rules WaitRules, logger *log.Logger) *ReadinessGate {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ReadinessGate{rules: rules.withDefaults(), logger: logger}
}

// Await polls sess until content settles or the configured deadlines pass.
// It returns Ready or Degraded; the only error is ctx's own.
func (g *ReadinessGate) Await(ctx context.Context, sess Session) (Readiness, error) {
	state := Ready

	if g.rules.WaitForSVGs {
		ok, err := g.poll(ctx, sess, g.rules.Timeout.Duration, ContentSnapshot.Settled)
		if err != nil {
			return Waiting, err
		}
		if !ok {
			g.logger.Warn("content did not settle, capturing anyway", "timeout", g.rules.Timeout.Duration)
			state = Degraded
		}
	}

	if g.rules.WaitForImages {
		ok, err := g.poll(ctx, sess, g.rules.ImageTimeout.Duration, ContentSnapshot.ImagesLoaded)
		if err != nil {
			return Waiting, err
		}
		if !ok {
			g.logger.Warn("images still loading, capturing anyway", "timeout", g.rules.ImageTimeout.Duration)
			state = Degraded
		}
	}

	if d := g.rules.AdditionalWaitTime.Duration; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Waiting, ctx.Err()
		case <-timer.C:
		}
	}
	return state, nil
}

// poll evaluates the snapshot until done holds or timeout elapses.
// Evaluation errors count as "not ready yet".
func (g *ReadinessGate) poll(ctx context.Context, sess Session, timeout time.Duration, done func(ContentSnapshot) bool) (bool, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(g.rules.PollInterval.Duration)
	defer ticker.Stop()

	for {
		snap, err := g.snapshot(waitCtx, sess)
		if err == nil && done(snap) {
			return true, nil
		}
		if err != nil {
			g.logger.Debug("snapshot failed", "err", err)
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return false, err
			}
			return false, nil
		case <-ticker.C:
		}
	}
}

func (g *ReadinessGate) snapshot(ctx context.Context, sess Session) (ContentSnapshot, error) {
	res, err := sess.Eval(ctx, snapshotJS, g.rules.PlaceholderSelector, g.rules.CellSelector)
	if err != nil {
		return ContentSnapshot{}, err
	}
	var snap ContentSnapshot
	if err := decodeJSON(res, &snap); err != nil {
		return ContentSnapshot{}, err
	}
	return snap, nil
}

// decodeJSON converts a JavaScript result into v.
func decodeJSON(res gson.JSON, v any) error {
	raw, err := res.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
