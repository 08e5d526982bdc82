package slug

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/discoverjesus-scraper/models"
	"gopkg.in/yaml.v3"
)

// defaultCorrections maps slugs derived from the tree listing to the slugs
// the site actually uses. Keys containing a slash are category/slug paths
// and map to a full category/slug path.
var defaultCorrections = map[string]string{
	// Events
	"conference-with-john-s-apostles":     "conference-with-johns-apostles",
	"jesus-establishes-the-women-s-corps": "jesus-establishes-the-womens-corps",
	"jesus-first-passover-age":            "jesus-first-passover-age-13",
	"pilate-s-last-appeal-and-surrender":  "pilates-last-appeal-and-surrender",
	"training-the-kingdom-s-messengers":   "training-the-kingdoms-messengers",

	// Groups
	"zebedee-s-family":           "zebedees-family",
	"women-s-evangelistic-corps": "womens-evangelistic-corps",

	// Persons
	"philip":                     "philip-apostle-of-jesus",
	"apostle-of-jesus":           "philip-apostle-of-jesus",
	"of-sepphoris":               "rebecca-of-sepphoris",
	"elizabeth":                  "elizabeth-mother-of-john-the-baptist",
	"mother-of-john-the-baptist": "elizabeth-mother-of-john-the-baptist",
	"mother-of-jesus":            "mary-mother-of-jesus",
	"father-of-jesus":            "joseph-father-of-jesus",
	"wife-of-elijah-mark":        "mary-wife-of-elijah-mark",
	"wife-of-zebedee":            "salome-wife-of-zebedee",
	// Ambiguous: several siblings share these suffixes. Each defaults to
	// one person and the others need a tree entry carrying the full name.
	"brother-of-jesus": "james-brother-of-jesus",
	"sister-of-jesus":  "ruth-sister-of-jesus",
	"of-bethany":       "martha-of-bethany",

	// Topics
	"jesus-divine-human-nature":               "jesus-combined-nature-human-and-divine",
	"jesus-combined-nature":                   "jesus-combined-nature-human-and-divine",
	"jesus-return-second-coming":              "jesus-return-the-masters-second-coming",
	"jesus-personal-ministry-as-he-passed-by": "jesus-ministry-as-he-passed-by",

	// Category fixes
	"person/establishing-jesus-ancestry": "topic/establishing-jesus-ancestry",
}

// ambiguousSlugs are the corrections that pick one of several people.
var ambiguousSlugs = map[string]bool{
	"brother-of-jesus": true,
	"sister-of-jesus":  true,
	"of-bethany":       true,
}

// CorrectionMap is an immutable lookup of slug and path corrections.
type CorrectionMap struct {
	entries map[string]string
}

// DefaultCorrections returns a copy of the built-in correction table.
func DefaultCorrections() map[string]string {
	out := make(map[string]string, len(defaultCorrections))
	for k, v := range defaultCorrections {
		out[k] = v
	}
	return out
}

// NewCorrectionMap copies the given entries; later changes to the argument
// do not affect the map.
func NewCorrectionMap(entries map[string]string) *CorrectionMap {
	m := &CorrectionMap{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		m.entries[k] = v
	}
	return m
}

// LoadCorrections builds a CorrectionMap from the defaults plus the entries
// of an optional YAML file (a flat string-to-string mapping). File entries
// win over defaults.
func LoadCorrections(path string) (*CorrectionMap, error) {
	entries := DefaultCorrections()
	if path == "" {
		return NewCorrectionMap(entries), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corrections file: %w", err)
	}

	var extra map[string]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("failed to parse corrections file %s: %w", path, err)
	}
	for k, v := range extra {
		if !strings.Contains(k, "/") {
			k = Sanitize(k)
		}
		entries[k] = v
	}
	return NewCorrectionMap(entries), nil
}

// Len returns the number of entries.
func (m *CorrectionMap) Len() int {
	return len(m.entries)
}

// Lookup returns the correction stored under key.
func (m *CorrectionMap) Lookup(key string) (string, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// IsAmbiguous reports whether slug is a correction key that defaults to one
// of several same-named people.
func IsAmbiguous(slug string) bool {
	return ambiguousSlugs[slug]
}

// Resolve applies the bare-slug correction first, then the category/slug
// path correction. Unmapped inputs are returned unchanged.
func (m *CorrectionMap) Resolve(category models.Category, s string) (models.Category, string) {
	if corrected, ok := m.Lookup(s); ok {
		s = corrected
	}

	corrected, ok := m.Lookup(string(category) + "/" + s)
	if !ok {
		return category, s
	}

	cat, rest, found := strings.Cut(corrected, "/")
	if !found {
		return category, corrected
	}
	return models.Category(cat), rest
}
