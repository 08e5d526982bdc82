package tree

import (
	"strings"

	"github.com/dtnitsch/discoverjesus-scraper/models"
)

// Rules recorded on a Classification, naming the step that matched.
const (
	RuleSeparator = "separator"
	RuleBethany   = "bethany"
	RulePrefix    = "prefix"
	RuleKeyword   = "keyword"
)

// Separators between the category and the title, tried in order.
var separators = []string{" - ", " – ", " — "}

var categoryPrefixes = []string{"Person", "Event", "Topic", "Group", "Relationship", "Object"}

// bethanyNames disambiguates two people who share the "of Bethany" suffix.
var bethanyNames = []struct {
	match string
	slug  string
}{
	{"Martha of Bethany", "martha-of-bethany"},
	{"Mary of Bethany", "mary-of-bethany"},
}

var keywordCategories = []struct {
	category string
	words    []string
}{
	{"Person", []string{"Jesus", "Mary", "Joseph", "John", "Peter", "Paul"}},
	{"Event", []string{"Baptism", "Birth", "Death", "Resurrection"}},
	{"Topic", []string{"Establishing", "Concepts", "History", "Philosophy"}},
}

// Classification is the result of classifying one cleaned filename.
// Category is empty when Reason is set.
type Classification struct {
	Category models.Category
	Title    string
	Rule     string
	Reason   models.SkipReason
}

// OK reports whether a category was found.
func (c Classification) OK() bool {
	return c.Category != ""
}

// Classify infers category and title from a filename that already had its
// extension and numeric suffix removed. It never guesses: a name matching
// no rule comes back with a skip reason.
func Classify(filename string) Classification {
	var rawCategory, title, rule string

	for _, sep := range separators {
		if before, after, found := strings.Cut(filename, sep); found {
			rawCategory, title, rule = before, after, RuleSeparator
			break
		}
	}

	bethany := false
	for _, b := range bethanyNames {
		if strings.Contains(filename, b.match) {
			rawCategory, title, rule = "Person", b.slug, RuleBethany
			bethany = true
			break
		}
	}

	if !bethany && strings.TrimSpace(rawCategory) == "" {
		rawCategory, title, rule = matchPrefix(filename)
	}

	if strings.TrimSpace(rawCategory) == "" {
		rawCategory, title, rule = matchKeyword(filename)
	}

	if rawCategory == "" {
		return Classification{Reason: models.SkipNoCategory}
	}

	category, ok := normalizeCategory(rawCategory)
	if !ok {
		return Classification{Title: title, Rule: rule, Reason: models.SkipUnknownCategory}
	}

	return Classification{
		Category: category,
		Title:    strings.TrimSpace(title),
		Rule:     rule,
	}
}

func matchPrefix(filename string) (string, string, string) {
	for _, prefix := range categoryPrefixes {
		if !strings.HasPrefix(filename, prefix) {
			continue
		}
		title := strings.TrimLeft(filename[len(prefix):], " -–—:")
		return prefix, title, RulePrefix
	}
	return "", "", ""
}

func matchKeyword(filename string) (string, string, string) {
	for _, kc := range keywordCategories {
		for _, word := range kc.words {
			if strings.Contains(filename, word) {
				return kc.category, filename, RuleKeyword
			}
		}
	}
	return "", "", ""
}

// normalizeCategory maps free category text onto one of the six categories
// by prefix, so "Persons" and "Event (Early Life)" still match.
func normalizeCategory(raw string) (models.Category, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range models.Categories {
		if strings.HasPrefix(lower, string(c)) {
			return c, true
		}
	}
	return "", false
}
