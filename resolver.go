package site2pdf

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// DocumentType is the closed set of document categories declared in the
// configuration, plus DefaultType. Values are only produced by a Resolver,
// so every type it hands out has resolved page rules.
type DocumentType struct {
	name string
}

// DefaultType applies to documents matching no configured category.
var DefaultType = DocumentType{}

// String returns the configured key, or "default".
func (t DocumentType) String() string {
	if t.name == "" {
		return "default"
	}
	return t.name
}

// IsDefault reports whether t is the default variant.
func (t DocumentType) IsDefault() bool {
	return t.name == ""
}

// Classifier maps a slash-separated relative path to a DocumentType.
type Classifier interface {
	Classify(relPath string) DocumentType
}

// Resolver merges defaults with per-type overrides. All lookups are pure and
// safe for concurrent use; results are computed once in NewResolver.
type Resolver struct {
	types map[string]DocumentType
	pages map[DocumentType]PageRules
	qr    map[DocumentType]QRConfig
	wait  WaitRules
}

var _ Classifier = (*Resolver)(nil)

// NewResolver validates cfg and precomputes the effective rules of every
// document type. It fails with ErrMissingDefaults when defaults.format is absent.
func NewResolver(cfg *Config) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		types: make(map[string]DocumentType),
		pages: make(map[DocumentType]PageRules),
		qr:    make(map[DocumentType]QRConfig),
		wait:  cfg.WaitConditions.withDefaults(),
	}

	for name := range cfg.Documents {
		r.types[name] = DocumentType{name: name}
	}
	for name := range cfg.QRCode.Documents {
		r.types[name] = DocumentType{name: name}
	}
	for name := range cfg.Styles.Documents {
		r.types[name] = DocumentType{name: name}
	}

	base := cfg.QRCode
	base.Documents = nil
	base.Position = QRPosition{Corner: DefaultQRCorner, Size: DefaultQRSize, Margin: DefaultQRMargin}.merge(base.Position)

	r.pages[DefaultType] = cfg.Defaults
	r.qr[DefaultType] = base
	for name, t := range r.types {
		r.pages[t] = cfg.Defaults.merge(cfg.Documents[name])
		r.qr[t] = base.merge(cfg.QRCode.Documents[name])
	}
	return r, nil
}

// merge applies a per-type QR override.
func (q QRConfig) merge(o QROverride) QRConfig {
	if o.Enabled != nil {
		q.Enabled = *o.Enabled
	}
	if o.BaseURL != "" {
		q.BaseURL = o.BaseURL
	}
	if o.PreferCanonical != nil {
		q.PreferCanonical = *o.PreferCanonical
	}
	if o.Label != "" {
		q.Label = o.Label
	}
	q.Position = q.Position.merge(o.Position)
	return q
}

// Type returns the DocumentType registered under name, or DefaultType.
func (r *Resolver) Type(name string) DocumentType {
	if t, ok := r.types[name]; ok {
		return t
	}
	return DefaultType
}

// Types returns every configured type, sorted by name, DefaultType excluded.
func (r *Resolver) Types() []DocumentType {
	out := make([]DocumentType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// PageRules returns the effective page rules for t.
func (r *Resolver) PageRules(t DocumentType) PageRules {
	if rules, ok := r.pages[t]; ok {
		return rules
	}
	return r.pages[DefaultType]
}

// QR returns the effective QR settings for t.
func (r *Resolver) QR(t DocumentType) QRConfig {
	if cfg, ok := r.qr[t]; ok {
		return cfg
	}
	return r.qr[DefaultType]
}

// WaitRules returns the readiness settings with defaults applied.
func (r *Resolver) WaitRules() WaitRules {
	return r.wait
}

// Classify derives a type from relPath: the first directory segment equal
// to a configured key wins, then the file stem (the parent directory for
// index files), else DefaultType.
func (r *Resolver) Classify(relPath string) DocumentType {
	relPath = path.Clean(strings.TrimPrefix(relPath, "/"))
	dir, file := path.Split(relPath)

	var segments []string
	if dir = strings.Trim(dir, "/"); dir != "" {
		segments = strings.Split(dir, "/")
	}
	for _, seg := range segments {
		if t, ok := r.types[seg]; ok {
			return t
		}
	}

	stem := strings.TrimSuffix(file, path.Ext(file))
	if stem == "index" && len(segments) > 0 {
		stem = segments[len(segments)-1]
	}
	return r.Type(stem)
}

func validateTypeName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty document type name", ErrInvalidPageRules)
	case name == "default":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidPageRules, name)
	case strings.ContainsAny(name, `/\`) || strings.Contains(name, ".."):
		return fmt.Errorf("%w: document type %q must not contain path separators", ErrInvalidPageRules, name)
	}
	return nil
}
