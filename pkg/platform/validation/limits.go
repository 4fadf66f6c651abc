// Package validation holds the portal's size limits for request bodies and
// free-text fields.
package validation

import (
	"unicode/utf8"

	dErrors "schemeportal/pkg/domain-errors"
)

// MaxBodySize caps every JSON request body (64 KB).
const MaxBodySize = 64 * 1024

// Free-text limits, in characters. Citizens and staff write in Devanagari,
// Tamil and other scripts, so lengths are counted in runes, the same unit
// the validator's max tag uses.
const (
	MaxNotesLength        = 2000
	MaxEmailLength        = 255
	MaxFullNameLength     = 200
	MaxInsightTitleLength = 200
	MaxInsightBodyLength  = 10000
)

// CheckStringLength rejects value when it is longer than max characters.
func CheckStringLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return dErrors.Newf(dErrors.CodeValidation, "%s exceeds max length of %d", field, max)
	}
	return nil
}
