package site2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/go-site2pdf/internal/assets"
	"github.com/alnah/go-site2pdf/internal/dateutil"
)

// Compact tables have at most this many data rows and are kept on one page.
const (
	CompactTableClass   = "compact-table"
	CompactTableMaxRows = 6
)

// IsCompactTable reports whether a table with dataRows rows is compact.
func IsCompactTable(dataRows int) bool {
	return dataRows <= CompactTableMaxRows
}

// Rows that hold at least one <td>, outside <thead> and <tfoot>, are data rows.
const tableRowsJS = `() => Array.from(document.querySelectorAll('table')).map((t) =>
	Array.from(t.rows).filter((r) => {
		const section = r.parentElement.tagName;
		return section !== 'THEAD' && section !== 'TFOOT' && r.querySelector('td') !== null;
	}).length
)`

const markTablesJS = `(indices, cls) => {
	const tables = document.querySelectorAll('table');
	let marked = 0;
	for (const i of indices) {
		if (tables[i]) {
			tables[i].classList.add(cls);
			marked++;
		}
	}
	return marked;
}`

const setDateJS = `(stamp) => {
	document.documentElement.style.setProperty('--print-date', JSON.stringify(stamp));
}`

// StyleReport describes what the injector changed on a page.
type StyleReport struct {
	Tables        int
	CompactTables int
}

// StyleInjector applies print styling to a loaded page. Stylesheets are read
// once at construction; Inject performs no file I/O.
type StyleInjector struct {
	printCSS  string
	typeCSS   map[DocumentType]string
	dateStamp string
	logger    *log.Logger
}

// NewStyleInjector loads print.css (from cfg.Dir or the embedded default) and
// the per-type stylesheets of types, and formats the print date for now.
func NewStyleInjector(cfg StyleConfig, dateFormat string, types []DocumentType, now time.Time, logger *log.Logger) (*StyleInjector, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	loader, err := assets.NewResolver(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStyleInject, err)
	}
	printCSS, err := loader.LoadStyle(assets.PrintStyle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStyleInject, err)
	}

	stamp, err := dateutil.Stamp(dateFormat, now)
	if err != nil {
		return nil, err
	}

	typeCSS := make(map[DocumentType]string, len(types))
	for _, t := range types {
		var parts []string
		css, err := loader.LoadStyle(t.String())
		switch {
		case err == nil:
			parts = append(parts, css)
		case errors.Is(err, assets.ErrStyleNotFound), errors.Is(err, assets.ErrInvalidAssetName):
		default:
			return nil, fmt.Errorf("%w: %s: %v", ErrStyleInject, t, err)
		}
		if inline := cfg.Documents[t.String()]; inline != "" {
			parts = append(parts, inline)
		}
		if len(parts) > 0 {
			typeCSS[t] = strings.Join(parts, "\n")
		}
	}

	if cfg.Dir != "" {
		warnUnusedStyles(cfg.Dir, types, logger)
	}

	return &StyleInjector{
		printCSS:  printCSS,
		typeCSS:   typeCSS,
		dateStamp: stamp,
		logger:    logger,
	}, nil
}

// warnUnusedStyles reports <name>.css files in dir that no document type
// loads. Such a file is only picked up once name is declared as a type.
func warnUnusedStyles(dir string, types []DocumentType, logger *log.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	known := map[string]bool{assets.PrintStyle: true}
	for _, t := range types {
		known[t.String()] = true
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".css" {
			continue
		}
		if stem := strings.TrimSuffix(name, ".css"); !known[stem] {
			logger.Warn("stylesheet matches no document type, declare it under documents or styles.documents",
				"file", filepath.Join(dir, name))
		}
	}
}

// DateStamp returns the formatted print date.
func (s *StyleInjector) DateStamp() string {
	return s.dateStamp
}

// Inject adds the print stylesheet, the print date, the document type's
// stylesheet and the compact-table class to sess.
func (s *StyleInjector) Inject(ctx context.Context, sess Session, t DocumentType) (StyleReport, error) {
	if err := sess.AddStyle(ctx, s.printCSS); err != nil {
		return StyleReport{}, fmt.Errorf("%w: %v", ErrStyleInject, err)
	}
	if _, err := sess.Eval(ctx, setDateJS, s.dateStamp); err != nil {
		return StyleReport{}, fmt.Errorf("%w: setting print date: %v", ErrStyleInject, err)
	}
	if css, ok := s.typeCSS[t]; ok {
		if err := sess.AddStyle(ctx, css); err != nil {
			return StyleReport{}, fmt.Errorf("%w: %s stylesheet: %v", ErrStyleInject, t, err)
		}
	}

	res, err := sess.Eval(ctx, tableRowsJS)
	if err != nil {
		return StyleReport{}, fmt.Errorf("%w: counting table rows: %v", ErrStyleInject, err)
	}
	var rows []int
	if err := decodeJSON(res, &rows); err != nil {
		return StyleReport{}, fmt.Errorf("%w: decoding table rows: %v", ErrStyleInject, err)
	}

	compact := compactIndices(rows)
	report := StyleReport{Tables: len(rows), CompactTables: len(compact)}
	if len(compact) == 0 {
		return report, nil
	}
	if _, err := sess.Eval(ctx, markTablesJS, compact, CompactTableClass); err != nil {
		return StyleReport{}, fmt.Errorf("%w: marking compact tables: %v", ErrStyleInject, err)
	}
	s.logger.Debug("marked compact tables", "tables", report.Tables, "compact", report.CompactTables)
	return report, nil
}

func compactIndices(rows []int) []int {
	out := []int{}
	for i, n := range rows {
		if IsCompactTable(n) {
			out = append(out, i)
		}
	}
	return out
}
