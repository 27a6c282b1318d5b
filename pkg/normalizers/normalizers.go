// Package normalizers provides field normalization functions applied to
// extracted cell values before they enter a phone record.
package normalizers

import (
	"regexp"
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("scrub", ScrubPlaceholder)
	Register("nemail", NormalizeEmail)
	Register("nwebsite", NormalizeWebsite)
	Register("digits_only", DigitsOnly)
	Register("remove_whitespace", RemoveWhitespace)
	Register("collapse_whitespace", CollapseWhitespace)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// placeholders recognizes merged-cell artifacts and manual "no data" markers.
var placeholders = map[string]bool{
	"n/a": true, "n.a.": true, "na": true, "nil": true, "null": true,
	"none": true, "nan": true, "tbc": true, "tbd": true,
}

var dashesOnly = regexp.MustCompile(`^[-–—_.]+$`)

// ScrubPlaceholder maps placeholder values (blank, dashes, "N/A" variants)
// to the empty string so they are treated as absent downstream. Every
// extracted field passes through this filter before entering a record.
func ScrubPlaceholder(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	if placeholders[strings.ToLower(trimmed)] {
		return ""
	}
	if dashesOnly.MatchString(trimmed) {
		return ""
	}
	return trimmed
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// DigitsOnly removes all non-digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// NormalizeEmail normalizes an email address (lowercase, trim)
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeWebsite lowercases a URL-style value and strips a trailing slash
func NormalizeWebsite(s string) string {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimSuffix(trimmed, "/")
	return strings.ToLower(trimmed)
}

// RemoveWhitespace removes all whitespace characters
func RemoveWhitespace(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// CollapseWhitespace replaces runs of whitespace with a single space
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanCompanyField is the chain applied to company attribute values:
// placeholder scrub then whitespace collapse.
func CleanCompanyField(s string) string {
	return CollapseWhitespace(ScrubPlaceholder(s))
}
