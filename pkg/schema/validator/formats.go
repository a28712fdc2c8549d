package validator

import (
	"net/url"
	"regexp"
	"strings"
)

// FormatPredicate decides whether a string value satisfies a named string
// format.
type FormatPredicate func(value string) bool

// emailPattern matches the practical shape of an email address: a local
// part, one @, and a dotted domain.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// formats maps recognized string format names to their predicates.
// Unrecognized format names are ignored, matching the permissive stance on
// unknown schema keys.
var formats = map[string]FormatPredicate{
	"email":          isEmail,
	"url":            isURL,
	"nonEmptyString": isNonEmptyString,
}

func isEmail(value string) bool {
	return emailPattern.MatchString(value)
}

func isURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// isNonEmptyString rejects empty and whitespace-only values.
func isNonEmptyString(value string) bool {
	return strings.TrimSpace(value) != ""
}
