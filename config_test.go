package site2pdf

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.QRCode.Enabled {
		t.Error("QR codes should be off by default")
	}
	if !cfg.WaitConditions.WaitForSVGs || cfg.WaitConditions.WaitForImages {
		t.Errorf("wait defaults = %+v", cfg.WaitConditions)
	}
}

func TestConfig_Validate_Nil(t *testing.T) {
	t.Parallel()

	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrMissingDefaults) {
		t.Errorf("nil Validate() = %v, want ErrMissingDefaults", err)
	}
}

func TestPageRules_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rules   PageRules
		wantErr bool
	}{
		{"empty override", PageRules{}, false},
		{"mixed case format", PageRules{Format: "letter", Orientation: "Landscape"}, false},
		{"all margins", PageRules{Margin: Margins{"1cm", "10mm", "0.5in", "36pt"}}, false},
		{"scale bounds", PageRules{Scale: 2}, false},
		{"scale too small", PageRules{Scale: 0.05}, true},
		{"zero timeout", PageRules{Timeout: &Duration{}}, true},
		{"positive timeout", PageRules{Timeout: &Duration{5 * time.Second}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.rules.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidPageRules) {
				t.Errorf("Validate() = %v, want ErrInvalidPageRules", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestPageRules_Merge(t *testing.T) {
	t.Parallel()

	base := PageRules{
		Format:              "A4",
		Margin:              Margins{Top: "1in", Right: "1in", Bottom: "1in", Left: "1in"},
		DisplayHeaderFooter: Bool(true),
		Scale:               1,
		FooterText:          "ACME",
	}
	override := PageRules{
		Margin:              Margins{Left: "2in"},
		DisplayHeaderFooter: Bool(false),
		Timeout:             &Duration{90 * time.Second},
	}

	got := base.merge(override)
	if got.Format != "A4" || got.Scale != 1 || got.FooterText != "ACME" {
		t.Errorf("unset fields were not inherited: %+v", got)
	}
	if got.Margin != (Margins{Top: "1in", Right: "1in", Bottom: "1in", Left: "2in"}) {
		t.Errorf("margins = %+v", got.Margin)
	}
	if *got.DisplayHeaderFooter {
		t.Error("explicit false should override true")
	}
	if got.CaptureTimeout() != 90*time.Second {
		t.Errorf("CaptureTimeout() = %v", got.CaptureTimeout())
	}
	if base.CaptureTimeout() != DefaultCaptureLimit {
		t.Errorf("default CaptureTimeout() = %v", base.CaptureTimeout())
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	t.Parallel()

	var d Duration
	if err := d.UnmarshalText([]byte("45s")); err != nil || d.Duration != 45*time.Second {
		t.Errorf("UnmarshalText(45s) = %v, %v", d.Duration, err)
	}
	out, err := d.MarshalText()
	if err != nil || string(out) != "45s" {
		t.Errorf("MarshalText() = %q, %v", out, err)
	}
}
