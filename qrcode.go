package site2pdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/skip2/go-qrcode"
)

// QREncoder renders content as a square PNG of size pixels.
type QREncoder func(content string, size int) ([]byte, error)

// EncodeQR is the default QREncoder (medium error recovery).
func EncodeQR(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}

const injectQRJS = `async (src, href, label, corner, size, margin) => {
	const box = document.createElement('div');
	box.className = 'print-qr';
	box.style.cssText = 'position:absolute;z-index:2147483647;text-align:center;font-size:8px;line-height:1.2;background:#fff;';
	const [vertical, horizontal] = corner.split('-');
	box.style[vertical] = margin + 'px';
	box.style[horizontal] = margin + 'px';
	box.style.width = size + 'px';

	const img = document.createElement('img');
	img.src = src;
	img.width = size;
	img.height = size;
	img.alt = href;
	box.appendChild(img);

	const caption = document.createElement('div');
	if (label) {
		caption.appendChild(document.createTextNode(label + ' '));
	}
	const link = document.createElement('a');
	link.href = href;
	link.textContent = href;
	link.style.wordBreak = 'break-all';
	caption.appendChild(link);
	box.appendChild(caption);

	document.body.appendChild(box);
	try {
		await img.decode();
	} catch (e) {}
	return true;
}`

// QRAnnotator adds a link-back QR code to the first page.
// Failures never fail a conversion; they are logged and reported as false.
type QRAnnotator struct {
	encode QREncoder
	logger *log.Logger
}

// NewQRAnnotator returns an annotator using encode, or EncodeQR when nil.
func NewQRAnnotator(encode QREncoder, logger *log.Logger) *QRAnnotator {
	if encode == nil {
		encode = EncodeQR
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &QRAnnotator{encode: encode, logger: logger}
}

// Annotate injects the QR code for doc when cfg enables it.
// It reports whether the page was annotated.
func (a *QRAnnotator) Annotate(ctx context.Context, sess Session, doc Document, cfg QRConfig) bool {
	if !cfg.Enabled {
		return false
	}
	if err := a.annotate(ctx, sess, doc, cfg); err != nil {
		a.logger.Warn("QR code skipped", "doc", doc.RelPath, "err", err)
		return false
	}
	return true
}

func (a *QRAnnotator) annotate(ctx context.Context, sess Session, doc Document, cfg QRConfig) error {
	target, err := TargetURL(doc, cfg)
	if err != nil {
		return err
	}

	size := cfg.Position.Size
	if size <= 0 {
		size = DefaultQRSize
	}
	corner := cfg.Position.Corner
	if corner == "" {
		corner = DefaultQRCorner
	}

	// Rendered at twice the display size for print resolution.
	png, err := a.encode(target, size*2)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQRGeneration, err)
	}
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	if _, err := sess.Eval(ctx, injectQRJS, src, target, cfg.Label, corner, size, cfg.Position.Margin); err != nil {
		return fmt.Errorf("injecting QR code: %w", err)
	}
	return nil
}

// TargetURL returns the live URL a document's QR code points to: the page's
// canonical link when preferred and present, otherwise the base URL joined
// with the pretty path of doc.
func TargetURL(doc Document, cfg QRConfig) (string, error) {
	if cfg.PreferCanonical {
		if canonical, err := CanonicalURL(doc.SourcePath); err == nil && canonical != "" {
			return canonical, nil
		}
	}
	if cfg.BaseURL == "" {
		return "", fmt.Errorf("%w: no baseUrl configured", ErrQRGeneration)
	}
	return joinURL(cfg.BaseURL, PrettyPath(doc.RelPath))
}

// PrettyPath maps a relative HTML path to its served path:
// "a/b/index.html" becomes "a/b/", "index.html" becomes "".
func PrettyPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if path.Base(rel) == "index.html" || path.Base(rel) == "index.htm" {
		dir := path.Dir(rel)
		if dir == "." {
			return ""
		}
		return dir + "/"
	}
	return rel
}

// CanonicalURL reads the href of the first <link rel="canonical"> in file.
func CanonicalURL(file string) (string, error) {
	f, err := os.Open(file) // #nosec G304 -- discovered input document
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", err
	}
	href, _ := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	return strings.TrimSpace(href), nil
}

func joinURL(base, pretty string) (string, error) {
	escaped := escapePath(pretty)
	if strings.Contains(base, "{path}") {
		return strings.ReplaceAll(base, "{path}", escaped), nil
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: invalid baseUrl: %v", ErrQRGeneration, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: baseUrl %q must be absolute", ErrQRGeneration, base)
	}
	return strings.TrimRight(base, "/") + "/" + escaped, nil
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
