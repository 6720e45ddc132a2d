package site2pdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default values applied when neither the defaults block nor a document
// override sets a field.
const (
	DefaultFormat       = "A4"
	DefaultMargin       = "0.5in"
	DefaultCaptureLimit = 60 * time.Second
	DefaultWaitTimeout  = 30 * time.Second
	DefaultImageTimeout = 10 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultQRSize       = 96
	DefaultQRMargin     = 16
	DefaultQRCorner     = CornerBottomRight
	DefaultPlaceholders = ".loading, .spinner, [data-loading]"
	DefaultCells        = ".cell, .observablehq"
)

// Orientation values.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// QR code corners.
const (
	CornerTopLeft     = "top-left"
	CornerTopRight    = "top-right"
	CornerBottomLeft  = "bottom-left"
	CornerBottomRight = "bottom-right"
)

// Config is the fully loaded configuration for one batch.
// It is treated as immutable once a Batch has been created from it.
type Config struct {
	Defaults       PageRules            `yaml:"defaults" toml:"defaults"`
	Documents      map[string]PageRules `yaml:"documents" toml:"documents"`
	QRCode         QRConfig             `yaml:"qrCode" toml:"qrCode"`
	WaitConditions WaitRules            `yaml:"waitConditions" toml:"waitConditions"`
	ExcludeFiles   []string             `yaml:"excludeFiles" toml:"excludeFiles"`
	Styles         StyleConfig          `yaml:"styles" toml:"styles"`
	DateFormat     string               `yaml:"dateFormat" toml:"dateFormat"` // "auto", "auto:long", "auto:DD/MM/YYYY" or a literal date
	Input          InputConfig          `yaml:"input" toml:"input"`
	Output         OutputConfig         `yaml:"output" toml:"output"`
}

// InputConfig defines input source options.
type InputConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// OutputConfig defines output destinations.
type OutputConfig struct {
	Dir        string `yaml:"dir" toml:"dir"`
	PublishDir string `yaml:"publishDir" toml:"publishDir"` // Empty = no publishing
}

// PageRules holds physical page settings for a document category.
// Empty strings and nil pointers mean "not set" so that document overrides
// only replace the fields they declare.
type PageRules struct {
	Format              string    `yaml:"format,omitempty" toml:"format"`           // "A4", "Letter", "A3", ...
	Orientation         string    `yaml:"orientation,omitempty" toml:"orientation"` // "portrait", "landscape"
	Margin              Margins   `yaml:"margin,omitempty" toml:"margin"`
	DisplayHeaderFooter *bool     `yaml:"displayHeaderFooter,omitempty" toml:"displayHeaderFooter"`
	PrintBackground     *bool     `yaml:"printBackground,omitempty" toml:"printBackground"`
	PreferCSSPageSize   *bool     `yaml:"preferCSSPageSize,omitempty" toml:"preferCSSPageSize"`
	Scale               float64   `yaml:"scale,omitempty" toml:"scale"`
	Timeout             *Duration `yaml:"timeout,omitempty" toml:"timeout"`
	FooterText          string    `yaml:"footerText,omitempty" toml:"footerText"`
}

// Margins holds CSS lengths ("10mm", "0.5in", "48px", bare numbers are px).
type Margins struct {
	Top    string `yaml:"top,omitempty" toml:"top"`
	Right  string `yaml:"right,omitempty" toml:"right"`
	Bottom string `yaml:"bottom,omitempty" toml:"bottom"`
	Left   string `yaml:"left,omitempty" toml:"left"`
}

// QRConfig configures the link-back QR code.
type QRConfig struct {
	Enabled         bool                  `yaml:"enabled" toml:"enabled"`
	BaseURL         string                `yaml:"baseUrl" toml:"baseUrl"` // May contain a {path} placeholder
	PreferCanonical bool                  `yaml:"preferCanonical" toml:"preferCanonical"`
	Label           string                `yaml:"label" toml:"label"` // Text shown before the link
	Position        QRPosition            `yaml:"position" toml:"position"`
	Documents       map[string]QROverride `yaml:"documents" toml:"documents"`
}

// QRPosition places the QR code on the first page. Zero values inherit.
type QRPosition struct {
	Corner string `yaml:"corner,omitempty" toml:"corner"`
	Size   int    `yaml:"size,omitempty" toml:"size"`     // pixels
	Margin int    `yaml:"margin,omitempty" toml:"margin"` // pixels from the corner
}

// QROverride replaces selected QR fields for one document type.
type QROverride struct {
	Enabled         *bool      `yaml:"enabled,omitempty" toml:"enabled"`
	BaseURL         string     `yaml:"baseUrl,omitempty" toml:"baseUrl"`
	PreferCanonical *bool      `yaml:"preferCanonical,omitempty" toml:"preferCanonical"`
	Label           string     `yaml:"label,omitempty" toml:"label"`
	Position        QRPosition `yaml:"position,omitempty" toml:"position"`
}

// WaitRules configures the readiness gate.
type WaitRules struct {
	WaitForSVGs         bool     `yaml:"waitForSVGs" toml:"waitForSVGs"`
	WaitForImages       bool     `yaml:"waitForImages" toml:"waitForImages"`
	AdditionalWaitTime  Duration `yaml:"additionalWaitTime" toml:"additionalWaitTime"`
	Timeout             Duration `yaml:"timeout" toml:"timeout"`
	ImageTimeout        Duration `yaml:"imageTimeout" toml:"imageTimeout"`
	PollInterval        Duration `yaml:"pollInterval" toml:"pollInterval"`
	PlaceholderSelector string   `yaml:"placeholderSelector" toml:"placeholderSelector"`
	CellSelector        string   `yaml:"cellSelector" toml:"cellSelector"`
}

// StyleConfig locates print stylesheets.
type StyleConfig struct {
	Dir       string            `yaml:"dir" toml:"dir"`             // Holds print.css and <type>.css; empty = embedded
	Documents map[string]string `yaml:"documents" toml:"documents"` // Inline CSS per document type
}

// DefaultConfig returns a configuration with A4 defaults, SVG waiting on,
// and QR codes off.
func DefaultConfig() *Config {
	return &Config{
		Defaults: PageRules{Format: DefaultFormat},
		WaitConditions: WaitRules{
			WaitForSVGs:         true,
			Timeout:             Duration{DefaultWaitTimeout},
			ImageTimeout:        Duration{DefaultImageTimeout},
			PollInterval:        Duration{DefaultPollInterval},
			PlaceholderSelector: DefaultPlaceholders,
			CellSelector:        DefaultCells,
		},
		QRCode: QRConfig{
			Position: QRPosition{Corner: DefaultQRCorner, Size: DefaultQRSize, Margin: DefaultQRMargin},
		},
		DateFormat: "auto",
	}
}

// Validate checks every page rule, QR block, style key and wait rule.
// A missing defaults.format is reported as ErrMissingDefaults.
func (c *Config) Validate() error {
	if c == nil || strings.TrimSpace(c.Defaults.Format) == "" {
		return fmt.Errorf("%w: defaults.format", ErrMissingDefaults)
	}
	if err := c.Defaults.Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for name, rules := range c.Documents {
		if err := validateTypeName(name); err != nil {
			return fmt.Errorf("documents: %w", err)
		}
		if err := rules.Validate(); err != nil {
			return fmt.Errorf("documents.%s: %w", name, err)
		}
	}
	if err := c.QRCode.Position.validate(); err != nil {
		return fmt.Errorf("qrCode.position: %w", err)
	}
	for name, o := range c.QRCode.Documents {
		if err := validateTypeName(name); err != nil {
			return fmt.Errorf("qrCode.documents: %w", err)
		}
		if err := o.Position.validate(); err != nil {
			return fmt.Errorf("qrCode.documents.%s.position: %w", name, err)
		}
	}
	for name := range c.Styles.Documents {
		if err := validateTypeName(name); err != nil {
			return fmt.Errorf("styles.documents: %w", err)
		}
	}
	return c.WaitConditions.Validate()
}

// Validate checks that every set field holds a supported value.
func (p PageRules) Validate() error {
	if p.Format != "" {
		if _, ok := lookupPaper(p.Format); !ok {
			return fmt.Errorf("%w: unknown format %q", ErrInvalidPageRules, p.Format)
		}
	}
	switch strings.ToLower(p.Orientation) {
	case "", OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: orientation %q (must be portrait or landscape)", ErrInvalidPageRules, p.Orientation)
	}
	for side, v := range map[string]string{"top": p.Margin.Top, "right": p.Margin.Right, "bottom": p.Margin.Bottom, "left": p.Margin.Left} {
		if v == "" {
			continue
		}
		if _, err := parseLength(v); err != nil {
			return fmt.Errorf("%w: margin.%s: %v", ErrInvalidPageRules, side, err)
		}
	}
	if p.Scale != 0 && (p.Scale < 0.1 || p.Scale > 2) {
		return fmt.Errorf("%w: scale %.2f (must be between 0.1 and 2)", ErrInvalidPageRules, p.Scale)
	}
	if p.Timeout != nil && p.Timeout.Duration <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidPageRules)
	}
	return nil
}

func (q QRPosition) validate() error {
	switch q.Corner {
	case "", CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight:
	default:
		return fmt.Errorf("%w: corner %q", ErrInvalidQRConfig, q.Corner)
	}
	if q.Size < 0 || q.Margin < 0 {
		return fmt.Errorf("%w: size and margin must not be negative", ErrInvalidQRConfig)
	}
	return nil
}

// Validate rejects negative durations.
func (w WaitRules) Validate() error {
	for name, d := range map[string]Duration{
		"timeout":            w.Timeout,
		"imageTimeout":       w.ImageTimeout,
		"pollInterval":       w.PollInterval,
		"additionalWaitTime": w.AdditionalWaitTime,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidWaitRules, name)
		}
	}
	return nil
}

// withDefaults fills zero durations.
func (w WaitRules) withDefaults() WaitRules {
	if w.Timeout.Duration == 0 {
		w.Timeout.Duration = DefaultWaitTimeout
	}
	if w.ImageTimeout.Duration == 0 {
		w.ImageTimeout.Duration = DefaultImageTimeout
	}
	if w.PollInterval.Duration == 0 {
		w.PollInterval.Duration = DefaultPollInterval
	}
	return w
}

// merge returns p with every field set in o replacing p's value.
func (p PageRules) merge(o PageRules) PageRules {
	if o.Format != "" {
		p.Format = o.Format
	}
	if o.Orientation != "" {
		p.Orientation = o.Orientation
	}
	p.Margin = p.Margin.merge(o.Margin)
	if o.DisplayHeaderFooter != nil {
		p.DisplayHeaderFooter = o.DisplayHeaderFooter
	}
	if o.PrintBackground != nil {
		p.PrintBackground = o.PrintBackground
	}
	if o.PreferCSSPageSize != nil {
		p.PreferCSSPageSize = o.PreferCSSPageSize
	}
	if o.Scale != 0 {
		p.Scale = o.Scale
	}
	if o.Timeout != nil {
		p.Timeout = o.Timeout
	}
	if o.FooterText != "" {
		p.FooterText = o.FooterText
	}
	return p
}

func (m Margins) merge(o Margins) Margins {
	if o.Top != "" {
		m.Top = o.Top
	}
	if o.Right != "" {
		m.Right = o.Right
	}
	if o.Bottom != "" {
		m.Bottom = o.Bottom
	}
	if o.Left != "" {
		m.Left = o.Left
	}
	return m
}

func (q QRPosition) merge(o QRPosition) QRPosition {
	if o.Corner != "" {
		q.Corner = o.Corner
	}
	if o.Size != 0 {
		q.Size = o.Size
	}
	if o.Margin != 0 {
		q.Margin = o.Margin
	}
	return q
}

// CaptureTimeout returns the hard deadline for capturing one document.
func (p PageRules) CaptureTimeout() time.Duration {
	if p.Timeout == nil || p.Timeout.Duration <= 0 {
		return DefaultCaptureLimit
	}
	return p.Timeout.Duration
}

// Bool returns a pointer to v, for building PageRules in code.
func Bool(v bool) *bool {
	return &v
}

// Duration is a time.Duration that decodes from "30s"-style strings or from
// integer milliseconds.
type Duration struct {
	time.Duration
}

// UnmarshalText parses "1m30s" or "90000" (milliseconds).
func (d *Duration) UnmarshalText(b []byte) error {
	return d.parse(string(b))
}

// UnmarshalYAML receives the raw node bytes, which may be a quoted string or
// a bare integer.
func (d *Duration) UnmarshalYAML(b []byte) error {
	return d.parse(strings.Trim(strings.TrimSpace(string(b)), `"'`))
}

// UnmarshalTOML accepts TOML strings, integers (milliseconds) and floats.
func (d *Duration) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		return d.parse(val)
	case int64:
		d.Duration = time.Duration(val) * time.Millisecond
		return nil
	case float64:
		d.Duration = time.Duration(val * float64(time.Millisecond))
		return nil
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
}

// MarshalText renders the duration in Go notation.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Duration = 0
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		d.Duration = time.Duration(ms) * time.Millisecond
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	d.Duration = v
	return nil
}
