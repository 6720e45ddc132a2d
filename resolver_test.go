package site2pdf

import (
	"errors"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestNewResolver - Validation
// ---------------------------------------------------------------------------

func TestNewResolver_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "missing defaults format",
			mutate:  func(c *Config) { c.Defaults = PageRules{} },
			wantErr: ErrMissingDefaults,
		},
		{
			name:    "unknown paper format",
			mutate:  func(c *Config) { c.Documents = map[string]PageRules{"report": {Format: "B7"}} },
			wantErr: ErrInvalidPageRules,
		},
		{
			name:    "bad orientation",
			mutate:  func(c *Config) { c.Defaults.Orientation = "sideways" },
			wantErr: ErrInvalidPageRules,
		},
		{
			name:    "bad margin unit",
			mutate:  func(c *Config) { c.Defaults.Margin.Top = "3em" },
			wantErr: ErrInvalidPageRules,
		},
		{
			name:    "scale out of range",
			mutate:  func(c *Config) { c.Defaults.Scale = 3 },
			wantErr: ErrInvalidPageRules,
		},
		{
			name:    "reserved type name",
			mutate:  func(c *Config) { c.Documents = map[string]PageRules{"default": {}} },
			wantErr: ErrInvalidPageRules,
		},
		{
			name:    "style key with a path",
			mutate:  func(c *Config) { c.Styles.Documents = map[string]string{"a/b": "p {}"} },
			wantErr: ErrInvalidPageRules,
		},
		{
			name:    "bad QR corner",
			mutate:  func(c *Config) { c.QRCode.Position.Corner = "middle" },
			wantErr: ErrInvalidQRConfig,
		},
		{
			name:    "negative wait timeout",
			mutate:  func(c *Config) { c.WaitConditions.Timeout = Duration{-time.Second} },
			wantErr: ErrInvalidWaitRules,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			if _, err := NewResolver(cfg); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewResolver() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolver_PageRules - Override wins per field
// ---------------------------------------------------------------------------

func TestResolver_PageRules_OverrideWins(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Defaults = PageRules{
		Format:          "A4",
		Orientation:     OrientationPortrait,
		Margin:          Margins{Top: "10mm", Bottom: "10mm"},
		PrintBackground: Bool(true),
	}
	cfg.Documents = map[string]PageRules{
		"dashboard": {Format: "A3", Orientation: OrientationLandscape, Margin: Margins{Top: "5mm"}},
	}

	r, err := NewResolver(cfg)
	if err != nil {
		t.Fatal(err)
	}

	got := r.PageRules(r.Type("dashboard"))
	if got.Format != "A3" || got.Orientation != OrientationLandscape {
		t.Errorf("dashboard = %s %s, want A3 landscape", got.Format, got.Orientation)
	}
	if got.Margin.Top != "5mm" {
		t.Errorf("margin.top = %q, want override 5mm", got.Margin.Top)
	}
	if got.Margin.Bottom != "10mm" {
		t.Errorf("margin.bottom = %q, want inherited 10mm", got.Margin.Bottom)
	}
	if got.PrintBackground == nil || !*got.PrintBackground {
		t.Error("printBackground should be inherited from defaults")
	}

	def := r.PageRules(DefaultType)
	if def.Format != "A4" || def.Orientation != OrientationPortrait {
		t.Errorf("default = %s %s, want A4 portrait", def.Format, def.Orientation)
	}
}

func TestResolver_PageRules_UnknownTypeUsesDefaults(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Type("nope"); !got.IsDefault() {
		t.Errorf("Type(nope) = %v, want default", got)
	}
	if got := r.PageRules(r.Type("nope")).Format; got != DefaultFormat {
		t.Errorf("format = %q, want %q", got, DefaultFormat)
	}
}

func TestResolver_QR(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.QRCode = QRConfig{
		Enabled: true,
		BaseURL: "https://docs.example.com",
		Label:   "Online:",
		Documents: map[string]QROverride{
			"slides":    {Enabled: Bool(false)},
			"dashboard": {Position: QRPosition{Corner: CornerTopLeft}},
		},
	}

	r, err := NewResolver(cfg)
	if err != nil {
		t.Fatal(err)
	}

	def := r.QR(DefaultType)
	if !def.Enabled || def.Position.Size != DefaultQRSize || def.Position.Corner != DefaultQRCorner {
		t.Errorf("default QR = %+v", def)
	}
	if def.Documents != nil {
		t.Error("resolved QR config should not carry per-type overrides")
	}

	if r.QR(r.Type("slides")).Enabled {
		t.Error("slides QR should be disabled by override")
	}

	dash := r.QR(r.Type("dashboard"))
	if dash.Position.Corner != CornerTopLeft {
		t.Errorf("dashboard corner = %q, want top-left", dash.Position.Corner)
	}
	if dash.Position.Size != DefaultQRSize || dash.Position.Margin != DefaultQRMargin {
		t.Errorf("dashboard size/margin = %d/%d, want inherited", dash.Position.Size, dash.Position.Margin)
	}
	if dash.BaseURL != "https://docs.example.com" || dash.Label != "Online:" {
		t.Errorf("dashboard should inherit baseUrl and label, got %+v", dash)
	}
}

func TestResolver_WaitRulesDefaults(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.WaitConditions = WaitRules{WaitForSVGs: true}

	r, err := NewResolver(cfg)
	if err != nil {
		t.Fatal(err)
	}
	w := r.WaitRules()
	if w.Timeout.Duration != DefaultWaitTimeout || w.ImageTimeout.Duration != DefaultImageTimeout || w.PollInterval.Duration != DefaultPollInterval {
		t.Errorf("wait rules = %+v, want defaults filled", w)
	}
}

// ---------------------------------------------------------------------------
// TestResolver_Classify - Type derivation from paths
// ---------------------------------------------------------------------------

func TestResolver_Classify(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Documents = map[string]PageRules{
		"dashboard": {Format: "A3"},
		"reports":   {Format: "Letter"},
	}
	cfg.QRCode.Documents = map[string]QROverride{"slides": {}}

	r, err := NewResolver(cfg)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		rel  string
		want string
	}{
		{"dashboard/sales.html", "dashboard"},
		{"reports/2024/q1.html", "reports"},
		{"archive/reports/old.html", "reports"},
		{"dashboard.html", "dashboard"},
		{"slides/index.html", "slides"},
		{"team/slides/index.html", "slides"},
		{"about/index.html", "default"},
		{"index.html", "default"},
		{"misc/notes.htm", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()

			if got := r.Classify(tt.rel).String(); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.rel, got, tt.want)
			}
		})
	}
}

func TestResolver_Types(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Documents = map[string]PageRules{"b": {}, "a": {}}
	cfg.QRCode.Documents = map[string]QROverride{"c": {}, "a": {}}

	r, err := NewResolver(cfg)
	if err != nil {
		t.Fatal(err)
	}
	types := r.Types()
	if len(types) != 3 {
		t.Fatalf("Types() = %v, want 3 entries", types)
	}
	for i, want := range []string{"a", "b", "c"} {
		if types[i].String() != want {
			t.Errorf("Types()[%d] = %q, want %q", i, types[i], want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestDuration - Decoding
// ---------------------------------------------------------------------------

func TestDuration_Parse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"2500", 2500 * time.Millisecond, false},
		{`"750ms"`, 750 * time.Millisecond, false},
		{"", 0, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			var d Duration
			err := d.UnmarshalYAML([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Errorf("UnmarshalYAML(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalYAML(%q) error = %v", tt.in, err)
			}
			if d.Duration != tt.want {
				t.Errorf("UnmarshalYAML(%q) = %v, want %v", tt.in, d.Duration, tt.want)
			}
		})
	}
}

func TestDuration_UnmarshalTOML(t *testing.T) {
	t.Parallel()

	var d Duration
	if err := d.UnmarshalTOML(int64(1500)); err != nil || d.Duration != 1500*time.Millisecond {
		t.Errorf("int64: %v, %v", d.Duration, err)
	}
	if err := d.UnmarshalTOML("2s"); err != nil || d.Duration != 2*time.Second {
		t.Errorf("string: %v, %v", d.Duration, err)
	}
	if err := d.UnmarshalTOML(true); err == nil {
		t.Error("bool should be rejected")
	}
}

func TestResolver_Classify_StyleOnlyType(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Styles.Documents = map[string]string{"dashboard": ".kpi { color: red; }"}

	r, err := NewResolver(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Classify("dashboard/x.html").String(); got != "dashboard" {
		t.Errorf("Classify(dashboard/x.html) = %q, want dashboard", got)
	}
	if got := r.PageRules(r.Type("dashboard")); got.Format != DefaultFormat {
		t.Errorf("style-only type should inherit defaults, got %+v", got)
	}
}
