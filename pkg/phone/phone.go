// Package phone implements cleaning and national-format validation of phone
// numbers. Cleaning and validation are independent: the pipeline stores
// numbers that fail validation rather than discarding them, so an uploader
// keeps visibility into bad data.
package phone

import (
	"strings"

	"github.com/aster-data/aster/pkg/normalizers"
)

// Format describes the national numbering shape being validated against.
type Format struct {
	// CountryCode is the dialing prefix stripped during cleaning, without
	// the leading "+".
	CountryCode string
	// LocalLength is the exact digit count of a local number.
	LocalLength int
	// LeadingDigits are the permitted first digits of a local number.
	LeadingDigits []byte
}

// DefaultFormat returns the Singapore national format: 8 digits, leading
// digit 6, 8, or 9, country code 65.
func DefaultFormat() Format {
	return Format{
		CountryCode:   "65",
		LocalLength:   8,
		LeadingDigits: []byte{'6', '8', '9'},
	}
}

// ParseFormat builds a Format from the config representation, where leading
// digits are a comma-separated list.
func ParseFormat(countryCode string, localLength int, leadingDigits string) Format {
	f := Format{
		CountryCode: countryCode,
		LocalLength: localLength,
	}
	for _, part := range strings.Split(leadingDigits, ",") {
		part = strings.TrimSpace(part)
		if len(part) == 1 && part[0] >= '0' && part[0] <= '9' {
			f.LeadingDigits = append(f.LeadingDigits, part[0])
		}
	}
	return f
}

// Clean strips every non-digit character from raw and removes the country
// code prefix when the remainder has the length of prefix plus local number.
// It returns the empty string when nothing digit-like remains.
func (f Format) Clean(raw string) string {
	digits := normalizers.DigitsOnly(raw)
	if digits == "" {
		return ""
	}

	withPrefix := len(f.CountryCode) + f.LocalLength
	if f.CountryCode != "" && len(digits) == withPrefix && strings.HasPrefix(digits, f.CountryCode) {
		digits = digits[len(f.CountryCode):]
	}

	return digits
}

// IsValid reports whether digits conforms exactly to the national pattern:
// fixed length and a permitted leading digit.
func (f Format) IsValid(digits string) bool {
	if len(digits) != f.LocalLength {
		return false
	}
	for _, c := range []byte(digits) {
		if c < '0' || c > '9' {
			return false
		}
	}
	for _, lead := range f.LeadingDigits {
		if digits[0] == lead {
			return true
		}
	}
	return false
}

// CleanAndValidate cleans raw and validates the result in one call.
func (f Format) CleanAndValidate(raw string) (digits string, valid bool) {
	digits = f.Clean(raw)
	if digits == "" {
		return "", false
	}
	return digits, f.IsValid(digits)
}
