package site2pdf

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Document is one HTML file to convert. Immutable once discovered.
type Document struct {
	SourcePath string       // Absolute path of the HTML file
	RelPath    string       // Slash-separated path relative to the input root
	Type       DocumentType // Category used to resolve page and QR rules
}

// Discover walks root recursively and returns every .html/.htm file not
// matched by an exclude pattern, sorted by RelPath. Patterns use doublestar
// syntax; a pattern without "/" also matches against the file name alone.
// classifier may be nil, in which case every document gets DefaultType.
func Discover(root string, excludes []string, classifier Classifier) ([]Document, error) {
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	if err := validatePatterns(excludes); err != nil {
		return nil, err
	}

	var docs []Document
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", p, err)
		}
		if d.IsDir() || !isHTML(p) {
			return nil
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if excluded(rel, excludes) {
			return nil
		}
		docs = append(docs, newDocument(p, rel, classifier))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].RelPath < docs[j].RelPath })
	return docs, nil
}

// DiscoverFile builds the Document for a single file. When root is empty the
// file's own directory is used as the root.
func DiscoverFile(root, file string, classifier Classifier) (Document, error) {
	absFile, err := filepath.Abs(file)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInputRoot, err)
	}
	info, err := os.Stat(absFile)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInputRoot, err)
	}
	if info.IsDir() || !isHTML(absFile) {
		return Document{}, fmt.Errorf("%w: %s is not an HTML file", ErrInputRoot, file)
	}

	absRoot := filepath.Dir(absFile)
	if root != "" {
		if absRoot, err = checkRoot(root); err != nil {
			return Document{}, err
		}
	}
	rel, err := filepath.Rel(absRoot, absFile)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Document{}, fmt.Errorf("%w: %s is outside %s", ErrInputRoot, file, root)
	}
	return newDocument(absFile, filepath.ToSlash(rel), classifier), nil
}

// OutputPath mirrors doc under outputRoot with a .pdf extension.
func OutputPath(outputRoot string, doc Document) string {
	rel := strings.TrimSuffix(doc.RelPath, path.Ext(doc.RelPath)) + ".pdf"
	return filepath.Join(outputRoot, filepath.FromSlash(rel))
}

func newDocument(abs, rel string, classifier Classifier) Document {
	doc := Document{SourcePath: abs, RelPath: rel}
	if classifier != nil {
		doc.Type = classifier.Classify(rel)
	}
	return doc
}

func checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInputRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInputRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInputRoot, root)
	}
	return abs, nil
}

func isHTML(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".html", ".htm":
		return true
	}
	return false
}

func validatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}
	return nil
}

func excluded(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}
