// Package dateutil formats the print date stamped on captured documents.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates a malformed date format.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxFormatLength bounds user-supplied formats.
const MaxFormatLength = 50

// DefaultFormat is used by "auto" and by an empty value.
const DefaultFormat = "YYYY-MM-DD"

// Presets are named shortcuts accepted after "auto:".
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// tokens are tried longest first.
var tokens = [...]struct{ token, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Layout converts a token format (YYYY, YY, MMMM, MMM, MM, M, DD, D) into a
// Go time layout. Text in brackets is copied literally: "[Printed] DD/MM".
func Layout(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(format) > MaxFormatLength:
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			b.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		n := matchToken(rest, &b)
		if n == 0 {
			b.WriteByte(rest[0])
			n = 1
		}
		rest = rest[n:]
	}
	return b.String(), nil
}

func matchToken(s string, b *strings.Builder) int {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.token) {
			b.WriteString(t.layout)
			return len(t.token)
		}
	}
	return 0
}

// Stamp renders the date for value at t:
//   - "" or "auto" uses DefaultFormat
//   - "auto:long" uses a preset
//   - "auto:DD/MM/YYYY" uses a custom token format
//   - anything else is a literal stamp, returned unchanged
func Stamp(value string, t time.Time) (string, error) {
	lower := strings.ToLower(value)
	switch {
	case value == "" || lower == "auto":
		return format(DefaultFormat, t)
	case !strings.HasPrefix(lower, "auto"):
		return value, nil
	case !strings.HasPrefix(lower, "auto:"):
		return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	}

	pattern := value[len("auto:"):]
	if pattern == "" {
		return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
	}
	if preset, ok := Presets[strings.ToLower(pattern)]; ok {
		pattern = preset
	}
	return format(pattern, t)
}

func format(pattern string, t time.Time) (string, error) {
	layout, err := Layout(pattern)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}
