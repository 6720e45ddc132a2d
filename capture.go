package site2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-site2pdf/internal/fileutil"
)

// paperSize holds portrait dimensions in inches.
type paperSize struct {
	width, height float64
}

var paperSizes = map[string]paperSize{
	"letter":  {8.5, 11},
	"legal":   {8.5, 14},
	"tabloid": {11, 17},
	"ledger":  {17, 11},
	"a0":      {33.1, 46.8},
	"a1":      {23.4, 33.1},
	"a2":      {16.54, 23.4},
	"a3":      {11.7, 16.54},
	"a4":      {8.27, 11.7},
	"a5":      {5.83, 8.27},
	"a6":      {4.13, 5.83},
}

// Minimum bottom margin when Chrome draws the footer.
const footerMinMargin = 0.6

const defaultFontFamily = "-apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif"

func lookupPaper(format string) (paperSize, bool) {
	size, ok := paperSizes[strings.ToLower(strings.TrimSpace(format))]
	return size, ok
}

// Units per inch for CSS lengths. Bare numbers are pixels.
var unitsPerInch = map[string]float64{
	"in": 1,
	"cm": 2.54,
	"mm": 25.4,
	"px": 96,
	"pt": 72,
	"":   96,
}

// parseLength converts a CSS length to inches.
func parseLength(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	i := len(s)
	for i > 0 && (s[i-1] < '0' || s[i-1] > '9') && s[i-1] != '.' {
		i--
	}
	num, unit := s[:i], strings.TrimSpace(s[i:])

	perInch, ok := unitsPerInch[unit]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q in %q", unit, s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative length %q", s)
	}
	return v / perInch, nil
}

// BuildPrintRequest converts resolved rules into Chrome's printToPDF request.
// dateStamp is shown in the footer when displayHeaderFooter is set.
func BuildPrintRequest(rules PageRules, dateStamp string) (*proto.PagePrintToPDF, error) {
	format := rules.Format
	if format == "" {
		format = DefaultFormat
	}
	size, ok := lookupPaper(format)
	if !ok {
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedPage, format)
	}
	width, height := size.width, size.height
	if strings.EqualFold(rules.Orientation, OrientationLandscape) {
		width, height = height, width
	}

	margin := func(v string) (float64, error) {
		if v == "" {
			v = DefaultMargin
		}
		in, err := parseLength(v)
		if err != nil {
			return 0, fmt.Errorf("%w: margin: %v", ErrUnsupportedPage, err)
		}
		return in, nil
	}
	top, err := margin(rules.Margin.Top)
	if err != nil {
		return nil, err
	}
	right, err := margin(rules.Margin.Right)
	if err != nil {
		return nil, err
	}
	bottom, err := margin(rules.Margin.Bottom)
	if err != nil {
		return nil, err
	}
	left, err := margin(rules.Margin.Left)
	if err != nil {
		return nil, err
	}

	req := &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(width),
		PaperHeight:       floatPtr(height),
		MarginTop:         floatPtr(top),
		MarginRight:       floatPtr(right),
		MarginBottom:      floatPtr(bottom),
		MarginLeft:        floatPtr(left),
		PrintBackground:   rules.PrintBackground == nil || *rules.PrintBackground,
		PreferCSSPageSize: rules.PreferCSSPageSize != nil && *rules.PreferCSSPageSize,
	}
	if rules.Scale != 0 {
		req.Scale = floatPtr(rules.Scale)
	}

	if rules.DisplayHeaderFooter != nil && *rules.DisplayHeaderFooter {
		req.DisplayHeaderFooter = true
		req.HeaderTemplate = "<span></span>" // Empty header
		req.FooterTemplate = buildFooterTemplate(dateStamp, rules.FooterText)
		if bottom < footerMinMargin {
			req.MarginBottom = floatPtr(footerMinMargin)
		}
	}
	return req, nil
}

// buildFooterTemplate renders Chrome's footer: page x/y, then the date and
// footer text when set.
func buildFooterTemplate(dateStamp, text string) string {
	parts := []string{`<span class="pageNumber"></span>/<span class="totalPages"></span>`}
	if dateStamp != "" {
		parts = append(parts, html.EscapeString(dateStamp))
	}
	if text != "" {
		parts = append(parts, html.EscapeString(text))
	}
	return fmt.Sprintf(`<div style="font-size: 10px; font-family: %s; color: #aaa; width: 100%%; text-align: right; padding: 0 0.5in;">%s</div>`,
		defaultFontFamily, strings.Join(parts, " - "))
}

func floatPtr(v float64) *float64 {
	return &v
}

// Artifact describes a written PDF.
type Artifact struct {
	Path  string
	Bytes int64
	Pages int // 0 when the page count could not be read
}

// CaptureEngine prints a ready page to PDF and writes it to disk.
type CaptureEngine struct {
	dateStamp string
	logger    *log.Logger
}

// NewCaptureEngine returns an engine stamping dateStamp into footers.
func NewCaptureEngine(dateStamp string, logger *log.Logger) *CaptureEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CaptureEngine{dateStamp: dateStamp, logger: logger}
}

// Capture prints sess with rules under the rules' hard timeout and writes the
// result atomically to outPath. Any failure here fails the document.
func (c *CaptureEngine) Capture(ctx context.Context, sess Session, rules PageRules, outPath string) (Artifact, error) {
	req, err := BuildPrintRequest(rules, c.dateStamp)
	if err != nil {
		return Artifact{}, err
	}

	timeout := rules.CaptureTimeout()
	captureCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := sess.PrintPDF(captureCtx, req)
	if err != nil {
		if errors.Is(captureCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return Artifact{}, fmt.Errorf("%w: after %s", ErrCaptureTime, timeout)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Artifact{}, ctxErr
		}
		return Artifact{}, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	if len(data) == 0 {
		return Artifact{}, fmt.Errorf("%w: empty PDF", ErrCapture)
	}

	if err := fileutil.WriteFileAtomic(outPath, data); err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrWritePDF, err)
	}

	art := Artifact{Path: outPath, Bytes: int64(len(data))}
	if pages, err := CountPages(data); err != nil {
		c.logger.Warn("could not count pages", "path", outPath, "err", err)
	} else {
		art.Pages = pages
	}
	return art, nil
}

var pdfcpuOnce sync.Once

// CountPages returns the number of pages in a PDF.
func CountPages(data []byte) (int, error) {
	pdfcpuOnce.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}
