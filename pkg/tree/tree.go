// Package tree turns a `tree` listing of the audio series into candidate
// page URLs on the target site.
package tree

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/slug"
)

var entryPrefixes = []string{"├── ", "└── "}

// Extensions of documents that sit next to the audio files and have no page.
var excludedExtensions = []string{".docx", ".txt"}

var trailingDigits = regexp.MustCompile(`\d+$`)

// Result holds everything derived from one tree file.
type Result struct {
	Candidates []models.CandidateURL
	Entries    []models.TreeEntry
	Total      int // prefixed lines seen
	Skipped    map[models.SkipReason]int
}

// Parser derives candidate URLs from tree lines.
type Parser struct {
	baseURL     string
	corrections *slug.CorrectionMap
	logger      *slog.Logger
}

// New creates a Parser. A nil logger discards diagnostics.
func New(baseURL string, corrections *slug.CorrectionMap, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if corrections == nil {
		corrections = slug.NewCorrectionMap(nil)
	}
	return &Parser{
		baseURL:     strings.TrimRight(baseURL, "/"),
		corrections: corrections,
		logger:      logger,
	}
}

// ParseFile parses the tree listing at path.
func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tree file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads a tree listing line by line. Output order follows input order.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	result := &Result{
		Skipped: map[models.SkipReason]int{
			models.SkipNotEntry:        0,
			models.SkipDocxTxt:         0,
			models.SkipNoCategory:      0,
			models.SkipUnknownCategory: 0,
		},
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		filename, ok := stripEntryPrefix(line)
		if !ok {
			result.Skipped[models.SkipNotEntry]++
			continue
		}
		result.Total++

		if hasExcludedExtension(filename) {
			p.logger.Debug("Skipping document file", "file", filename)
			result.Skipped[models.SkipDocxTxt]++
			continue
		}

		cleaned := CleanFilename(filename)
		c := Classify(cleaned)
		if !c.OK() {
			p.logger.Warn("No page for tree entry", "file", filename, "reason", c.Reason)
			result.Skipped[c.Reason]++
			continue
		}
		if c.Rule == RuleBethany {
			p.logger.Warn("Ambiguous Bethany name resolved by substring match", "file", filename, "slug", c.Title)
		}

		candidate := p.Candidate(c.Category, c.Title)
		if slug.IsAmbiguous(slug.Sanitize(c.Title)) {
			p.logger.Warn("Ambiguous name defaulted to one person", "file", filename, "url", candidate.URL)
		}

		result.Entries = append(result.Entries, models.TreeEntry{
			Raw:      filename,
			Category: c.Category,
			Title:    c.Title,
			Rule:     c.Rule,
		})
		result.Candidates = append(result.Candidates, candidate)
		p.logger.Debug("Generated URL", "category", candidate.Category, "title", c.Title, "slug", candidate.Slug, "url", candidate.URL)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}

	p.logger.Info("Tree file processed",
		"total_entries", result.Total,
		"urls", len(result.Candidates),
		"not_entry", result.Skipped[models.SkipNotEntry],
		"docx_txt", result.Skipped[models.SkipDocxTxt],
		"no_category", result.Skipped[models.SkipNoCategory],
		"unknown_category", result.Skipped[models.SkipUnknownCategory],
	)
	return result, nil
}

// Candidate sanitizes title, applies corrections and builds the page URL.
func (p *Parser) Candidate(category models.Category, title string) models.CandidateURL {
	cat, s := p.corrections.Resolve(category, slug.Sanitize(title))
	return models.CandidateURL{
		Category: cat,
		Slug:     s,
		Title:    title,
		URL:      fmt.Sprintf("%s/%s/%s", p.baseURL, cat, s),
	}
}

// CleanFilename removes the audio extension and any trailing number.
func CleanFilename(filename string) string {
	name := strings.ReplaceAll(filename, ".mp3", "")
	return trailingDigits.ReplaceAllString(name, "")
}

func stripEntryPrefix(line string) (string, bool) {
	for _, prefix := range entryPrefixes {
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

func hasExcludedExtension(filename string) bool {
	for _, ext := range excludedExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}
