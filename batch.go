package site2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-site2pdf/internal/fileutil"
)

// lockName is created in the output root while a batch runs.
const lockName = ".site2pdf.lock"

// ConversionResult is the outcome of one document. Err is nil on success.
type ConversionResult struct {
	Document   Document
	OutputPath string
	Bytes      int64
	Pages      int
	Duration   time.Duration
	Degraded   bool // Captured after a readiness deadline expired
	Annotated  bool // QR code injected
	Tables     int
	Compact    int
	Err        error
}

// Succeeded reports whether the document produced an artifact.
func (r ConversionResult) Succeeded() bool {
	return r.Err == nil
}

// BatchStats aggregates a batch. Written only by the aggregator goroutine.
type BatchStats struct {
	Total      int
	Successful int
	Failed     int
	Degraded   int
	StartTime  time.Time
	Duration   time.Duration
}

// Report is the complete outcome of a batch.
type Report struct {
	ID      string
	Stats   BatchStats
	Results []ConversionResult // Sorted by Document.RelPath
	Publish *PublishReport     // nil when publishing did not run
}

// Failures returns the failed results.
func (r *Report) Failures() []ConversionResult {
	var out []ConversionResult
	for _, res := range r.Results {
		if !res.Succeeded() {
			out = append(out, res)
		}
	}
	return out
}

// Options configures a Batch.
type Options struct {
	// Workers bounds in-flight conversions. 0 or 1 runs sequentially.
	Workers int
	// OutputRoot receives mirrored PDFs. Defaults to Config.Output.Dir.
	OutputRoot string
	// PublishDir receives copies of successful PDFs. Defaults to
	// Config.Output.PublishDir; empty disables publishing.
	PublishDir string
	// Logger receives progress and warnings. Defaults to a discarding logger.
	Logger *log.Logger
	// QREncoder overrides QR code generation.
	QREncoder QREncoder
	// Now is the clock used for the print date and timings.
	Now func() time.Time
}

// Batch converts documents with one Engine and shared, immutable settings.
type Batch struct {
	engine     Engine
	resolver   *Resolver
	excludes   []string
	gate       *ReadinessGate
	styles     *StyleInjector
	qr         *QRAnnotator
	capture    *CaptureEngine
	publisher  *Publisher
	workers    int
	outputRoot string
	publishDir string
	logger     *log.Logger
	now        func() time.Time
}

// NewBatch validates cfg and prepares every pipeline stage. Configuration
// and stylesheet errors are returned here, before any document is touched.
func NewBatch(engine Engine, cfg *Config, opts Options) (*Batch, error) {
	resolver, err := NewResolver(cfg)
	if err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.ExcludeFiles); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	styles, err := NewStyleInjector(cfg.Styles, cfg.DateFormat, resolver.Types(), now(), logger)
	if err != nil {
		return nil, err
	}

	b := &Batch{
		engine:     engine,
		resolver:   resolver,
		excludes:   cfg.ExcludeFiles,
		gate:       NewReadinessGate(resolver.WaitRules(), logger),
		styles:     styles,
		qr:         NewQRAnnotator(opts.QREncoder, logger),
		capture:    NewCaptureEngine(styles.DateStamp(), logger),
		publisher:  NewPublisher(logger),
		workers:    opts.Workers,
		outputRoot: firstNonEmpty(opts.OutputRoot, cfg.Output.Dir, "pdf"),
		publishDir: firstNonEmpty(opts.PublishDir, cfg.Output.PublishDir),
		logger:     logger,
		now:        now,
	}
	return b, nil
}

// Resolver exposes the batch's configuration resolver.
func (b *Batch) Resolver() *Resolver {
	return b.resolver
}

// OutputRoot returns the directory receiving PDFs.
func (b *Batch) OutputRoot() string {
	return b.outputRoot
}

// Run discovers documents under inputRoot and converts them.
func (b *Batch) Run(ctx context.Context, inputRoot string) (*Report, error) {
	docs, err := Discover(inputRoot, b.excludes, b.resolver)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		b.logger.Warn("no HTML documents found", "root", inputRoot)
	}
	return b.RunDocuments(ctx, docs)
}

// RunDocuments converts docs and returns one result per document.
// The returned error is reserved for batch-level failures (output root
// unusable or locked); document failures are recorded in the report.
func (b *Batch) RunDocuments(ctx context.Context, docs []Document) (*Report, error) {
	if err := os.MkdirAll(b.outputRoot, fileutil.DirPerm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	unlock, err := lockOutput(b.outputRoot)
	if err != nil {
		return nil, err
	}
	defer unlock()

	report := &Report{
		ID:    uuid.NewString(),
		Stats: BatchStats{Total: len(docs), StartTime: b.now()},
	}
	b.logger.Info("starting batch", "id", report.ID, "documents", len(docs), "workers", max(b.workers, 1))

	results := make(chan ConversionResult)
	go b.dispatch(ctx, docs, results)

	// Single writer for stats.
	for res := range results {
		report.Results = append(report.Results, res)
		report.Stats.record(res)
		b.progress(len(report.Results), len(docs), res)
	}
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Document.RelPath < report.Results[j].Document.RelPath
	})
	report.Stats.Duration = b.now().Sub(report.Stats.StartTime)

	if report.Stats.Successful > 0 && b.publishDir != "" {
		var artifacts []string
		for _, res := range report.Results {
			if res.Succeeded() {
				artifacts = append(artifacts, res.OutputPath)
			}
		}
		pub := b.publisher.Publish(b.outputRoot, b.publishDir, artifacts)
		report.Publish = &pub
	}
	return report, nil
}

func (s *BatchStats) record(res ConversionResult) {
	if res.Succeeded() {
		s.Successful++
		if res.Degraded {
			s.Degraded++
		}
		return
	}
	s.Failed++
}

// dispatch runs conversions and sends every result on out, then closes it.
func (b *Batch) dispatch(ctx context.Context, docs []Document, out chan<- ConversionResult) {
	defer close(out)

	if b.workers <= 1 {
		for _, doc := range docs {
			out <- b.convertOrCancel(ctx, doc)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(b.workers)
	for _, doc := range docs {
		g.Go(func() error {
			out <- b.convertOrCancel(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()
}

func (b *Batch) convertOrCancel(ctx context.Context, doc Document) ConversionResult {
	if err := ctx.Err(); err != nil {
		return ConversionResult{Document: doc, Err: err}
	}
	return b.Convert(ctx, doc)
}

// Convert runs the full pipeline for one document. It never panics and
// always returns a result; the session is closed on every path.
func (b *Batch) Convert(ctx context.Context, doc Document) (result ConversionResult) {
	start := b.now()
	result.Document = doc

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("conversion panicked", "doc", doc.RelPath, "panic", r)
			result = ConversionResult{Document: doc, Err: fmt.Errorf("%w: %v", ErrInternal, r)}
		}
		result.Duration = b.now().Sub(start)
	}()

	rules := b.resolver.PageRules(doc.Type)
	qr := b.resolver.QR(doc.Type)
	outPath := OutputPath(b.outputRoot, doc)

	err := withSession(ctx, b.engine, b.logger, func(sess Session) error {
		navCtx, cancel := context.WithTimeout(ctx, rules.CaptureTimeout())
		defer cancel()
		if err := sess.Navigate(navCtx, fileURL(doc.SourcePath)); err != nil {
			return err
		}

		state, err := b.gate.Await(ctx, sess)
		if err != nil {
			return err
		}
		result.Degraded = state == Degraded

		styled, err := b.styles.Inject(ctx, sess, doc.Type)
		if err != nil {
			return err
		}
		result.Tables, result.Compact = styled.Tables, styled.CompactTables

		result.Annotated = b.qr.Annotate(ctx, sess, doc, qr)

		art, err := b.capture.Capture(ctx, sess, rules, outPath)
		if err != nil {
			return err
		}
		result.OutputPath = art.Path
		result.Bytes = art.Bytes
		result.Pages = art.Pages
		return nil
	})
	if err != nil {
		result = ConversionResult{Document: doc, Err: err}
	}
	return result
}

func (b *Batch) progress(done, total int, res ConversionResult) {
	prefix := fmt.Sprintf("[%d/%d]", done, total)
	switch {
	case !res.Succeeded():
		b.logger.Error(prefix+" failed", "doc", res.Document.RelPath, "err", res.Err)
	case res.Degraded:
		b.logger.Warn(prefix+" degraded", "doc", res.Document.RelPath, "pages", res.Pages, "took", res.Duration.Round(time.Millisecond))
	default:
		b.logger.Info(prefix+" converted", "doc", res.Document.RelPath, "pages", res.Pages, "took", res.Duration.Round(time.Millisecond))
	}
}

// lockOutput takes an exclusive, non-blocking lock on the output root.
func lockOutput(root string) (func(), error) {
	path := filepath.Join(root, lockName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, root)
	}
	return func() {
		_ = lock.Unlock()
		_ = os.Remove(path)
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
