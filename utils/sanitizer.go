package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy strips every HTML element from user-generated content.
// Profile fields (display name, bio) are plain text only.
var StrictPolicy *bluemonday.Policy

func init() {
	StrictPolicy = bluemonday.StrictPolicy()
}

// SanitizeText removes all HTML from a free-text settings field and trims
// surrounding whitespace.
func SanitizeText(s string) string {
	return strings.TrimSpace(StrictPolicy.Sanitize(s))
}
