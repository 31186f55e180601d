package util

import (
	"regexp"
	"unicode"
)

// Pre-compiled regex for entity id validation
var entityIdValidCharsRegex = regexp.MustCompile(`^[A-Za-z0-9\-._~]+$`)

// maxEntityIdLength bounds ids accepted from outside (URLs, config)
const maxEntityIdLength = 128

// IsValidEntityId validates that an id can be used verbatim as a URL path
// segment: only unreserved characters A-Z a-z 0-9 - . _ ~ are allowed.
//
// Returns (true, "") if valid, or (false, "error message") if invalid.
func IsValidEntityId(id string) (bool, string) {
	if len(id) == 0 {
		return false, "Id must be at least 1 character"
	}
	if len(id) > maxEntityIdLength {
		return false, "Id is too long"
	}
	if !entityIdValidCharsRegex.MatchString(id) {
		return false, "Id contains invalid characters. Only A-Z, a-z, 0-9, and -._~ are allowed"
	}
	for _, r := range id {
		if unicode.IsControl(r) || !unicode.IsPrint(r) {
			return false, "Id contains non-printable characters"
		}
	}
	return true, ""
}
