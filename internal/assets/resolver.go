package assets

import "errors"

// Resolver tries a custom directory first and falls back to the embedded
// styles when a name is not found there.
type Resolver struct {
	custom   Loader // nil without a custom directory
	embedded Loader
}

// NewResolver returns a Resolver for dir. An empty dir uses embedded styles only.
func NewResolver(dir string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if dir != "" {
		fs, err := NewFilesystemLoader(dir)
		if err != nil {
			return nil, err
		}
		r.custom = fs
	}
	return r, nil
}

// LoadStyle loads name from the custom directory, then from embedded styles.
// Validation and I/O errors from the custom directory are not masked.
func (r *Resolver) LoadStyle(name string) (string, error) {
	if r.custom != nil {
		css, err := r.custom.LoadStyle(name)
		if err == nil || !errors.Is(err, ErrStyleNotFound) {
			return css, err
		}
	}
	return r.embedded.LoadStyle(name)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

var _ Loader = (*Resolver)(nil)
