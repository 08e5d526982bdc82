// Package slug turns page titles into the URL path segments used by the
// target site, and corrects the ones the site spells differently.
package slug

import (
	"regexp"
	"strings"
)

var (
	quoteReplacer = strings.NewReplacer(
		"'", "", `"`, "",
		"‘", "", "’", "", "“", "", "”", "",
	)
	dashReplacer = strings.NewReplacer("–", "-", "—", "-", "_", "-")

	// Word characters include non-ASCII letters and digits.
	nonWordChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\-]+`)
	hyphenRun    = regexp.MustCompile(`-+`)
)

// Sanitize lowercases text and reduces it to word characters separated by
// single hyphens.
func Sanitize(text string) string {
	s := strings.ToLower(text)
	s = quoteReplacer.Replace(s)
	s = dashReplacer.Replace(s)
	s = nonWordChars.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
