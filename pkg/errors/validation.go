package errors

import (
	"strings"
	"unicode"
)

// ValidDirections are the layout directions accepted by the emitter.
// An empty string means "use the orientation heuristic".
var ValidDirections = []string{"TD", "LR"}

// ValidateDirection validates a layout direction override.
// Empty is allowed and defers to the orientation heuristic.
func ValidateDirection(dir string) error {
	if dir == "" {
		return nil
	}
	for _, d := range ValidDirections {
		if dir == d {
			return nil
		}
	}
	return New(ErrCodeInvalidOption, "invalid direction %q (valid: %s, or empty for auto)",
		dir, strings.Join(ValidDirections, ", "))
}

// ValidateReservedWord validates a user-configured reserved word.
// Reserved words participate in identifier allocation, so they must be
// plausible identifiers themselves: non-empty, no whitespace, no control
// characters.
func ValidateReservedWord(word string) error {
	if word == "" {
		return New(ErrCodeInvalidOption, "reserved word cannot be empty")
	}
	for _, r := range word {
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidOption, "reserved word %q contains whitespace", word)
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidOption, "reserved word %q contains control characters", word)
		}
	}
	return nil
}

// ValidatePageIndex validates a page selection against the number of
// decodable pages in a document.
func ValidatePageIndex(index, pageCount int) error {
	if index < 0 || index >= pageCount {
		return New(ErrCodePageOutOfRange, "page index %d out of range (document has %d page(s))",
			index, pageCount)
	}
	return nil
}
