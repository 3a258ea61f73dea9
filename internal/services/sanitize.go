package services

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	maxDescriptionLength = 1000
	maxGroupNameLength   = 100
)

var (
	textPolicy    = bluemonday.StrictPolicy()
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)
)

// sanitizeText strips markup and surrounding whitespace from user supplied text.
// The policy escapes what it keeps; the result is unescaped so plain text is stored
// as typed and escaping is left to whoever renders it.
func sanitizeText(input string, maxLen int) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(input)))
	if len([]rune(input)) > maxLen {
		input = string([]rune(input)[:maxLen])
	}
	return input
}

// optionalText returns nil for text that is empty after sanitizing
func optionalText(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	clean := sanitizeText(*input, maxLen)
	if clean == "" {
		return nil
	}
	return &clean
}
