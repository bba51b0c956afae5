package utils

import "regexp"

const MAX_IDENTIFIER_LENGTH = 64

var urlSafePattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// IsURLSafe reports whether value can be used as a path segment and as part
// of a database or redis key (office ids, schema keys).
func IsURLSafe(value string) bool {
	if value == "" || len(value) > MAX_IDENTIFIER_LENGTH {
		return false
	}
	return urlSafePattern.MatchString(value)
}
