package model

import (
	"regexp"
	"strings"
)

// MaxSlugLength is the width of the slug columns.
const MaxSlugLength = 100

var (
	slugInvalid    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugDashes     = regexp.MustCompile(`-+`)
)

// GenerateSlug lower-cases name, drops everything that is not alphanumeric,
// whitespace or a hyphen, turns whitespace runs into single hyphens and trims
// hyphens from both ends. "Home & Garden!!" becomes "home-garden".
func GenerateSlug(name string) string {
	s := strings.ToLower(name)
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
