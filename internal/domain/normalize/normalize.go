// Package normalize canonicalizes raw participant fields into
// comparable forms. Normalization is pure and deterministic: the step
// ordering (trim, case-fold, diacritic-strip) is fixed so results are
// cacheable.
package normalize

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldKind selects the normalization strategy for a field.
type FieldKind int

// Field kinds.
const (
	FieldName FieldKind = iota
	FieldDateOfBirth
	FieldIdentityCard
)

// CanonicalDateLayout is the output layout for normalized dates.
const CanonicalDateLayout = "2006-01-02"

// Accepted date-of-birth input layouts, in order of preference.
var dateLayouts = []string{
	"02/01/2006", // DD/MM/YYYY, the portal's primary format
	"2006-01-02", // ISO 8601 fallback
	time.RFC3339,
}

// stripDiacritics removes combining marks after NFD decomposition,
// so "é" compares equal to "e".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithAccentInsensitive toggles diacritic stripping on name fields.
func WithAccentInsensitive(enabled bool) Option {
	return func(n *Normalizer) {
		n.accentInsensitive = enabled
	}
}

// Normalizer canonicalizes raw declared/official text fields.
type Normalizer struct {
	accentInsensitive bool
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		accentInsensitive: true, // portal default
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Field normalizes raw according to kind. Only date-of-birth fields can
// fail; the caller treats a failed field as unscored.
func (n *Normalizer) Field(kind FieldKind, raw string) (string, error) {
	switch kind {
	case FieldDateOfBirth:
		return n.DateOfBirth(raw)
	case FieldIdentityCard:
		return n.IdentityCard(raw), nil
	default:
		return n.Name(raw), nil
	}
}

// Name trims, collapses internal whitespace, and lowercases. Diacritics
// are stripped when accent-insensitive comparison is enabled.
func (n *Normalizer) Name(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.ToLower(s)
	if n.accentInsensitive {
		if stripped, _, err := transform.String(stripDiacritics, s); err == nil {
			s = stripped
		}
	}
	return s
}

// DateOfBirth parses a flexible date input into the canonical
// YYYY-MM-DD form. Returns ErrInvalidDateFormat when no known layout
// matches.
func (n *Normalizer) DateOfBirth(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidDateFormat
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(CanonicalDateLayout), nil
		}
	}
	return "", ErrInvalidDateFormat
}

// IdentityCard uppercases and strips whitespace and punctuation
// separators (dashes, dots, spaces).
func (n *Normalizer) IdentityCard(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if unicode.IsSpace(r) || r == '-' || r == '.' || r == '_' || r == '/' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
