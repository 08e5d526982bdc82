// Package extractor pulls the title and the two summary fields out of a
// DiscoverJesus page.
package extractor

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/go-shiori/go-readability"
)

// Primary selectors used by the site theme.
const (
	titleSelector        = "h1.entry-title"
	shortSummarySelector = "div.entry-subtitle"
	fullSummarySelector  = "div.summary-section"
)

// fallbackParagraphs is how many paragraphs of a content container make up
// a fallback full summary.
const fallbackParagraphs = 3

// Extractor finds page fields with primary selectors and heuristic
// fallbacks. A missing field is left empty; it is never an error.
type Extractor struct {
	// Readability enables a last-resort full summary from the
	// readability excerpt of the page.
	Readability bool
}

func New(readabilityFallback bool) *Extractor {
	return &Extractor{Readability: readabilityFallback}
}

// Extract parses html fetched from sourceURL.
func (e *Extractor) Extract(html, sourceURL string) (*models.PageSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	summary := &models.PageSummary{
		ID:           PageID(sourceURL),
		Title:        title(doc),
		ShortSummary: shortSummary(doc),
		FullSummary:  fullSummary(doc),
		SourceURL:    sourceURL,
	}

	if summary.FullSummary == "" && e.Readability {
		summary.FullSummary = readabilityExcerpt(html, sourceURL)
	}
	return summary, nil
}

// PageID is the category/slug pair at the end of a page URL.
func PageID(sourceURL string) string {
	p := sourceURL
	if u, err := url.Parse(sourceURL); err == nil && u.Host != "" {
		p = u.Path
	}
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) < 2 {
		return strings.Join(parts, "/")
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func title(doc *goquery.Document) string {
	for _, sel := range []string{titleSelector, "h1", "h1, h2, h3, h4, h5, h6"} {
		if text := firstText(doc.Find(sel)); text != "" {
			return text
		}
	}
	return ""
}

func shortSummary(doc *goquery.Document) string {
	if text := firstText(doc.Find(shortSummarySelector)); text != "" {
		return text
	}
	candidates := doc.Find("h2, div, p").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return classContains(s, "subtitle", "summary")
	})
	return firstText(candidates)
}

func fullSummary(doc *goquery.Document) string {
	if text := firstText(doc.Find(fullSummarySelector)); text != "" {
		return text
	}

	content := doc.Find("article, main, div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return classContains(s, "content", "entry")
	}).First()
	if content.Length() == 0 {
		return ""
	}

	var paragraphs []string
	content.Find("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		paragraphs = append(paragraphs, strings.TrimSpace(p.Text()))
		return len(paragraphs) < fallbackParagraphs
	})
	return strings.TrimSpace(strings.Join(paragraphs, "\n"))
}

func readabilityExcerpt(html, sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), u)
	if err != nil {
		return ""
	}
	return normalizeText(article.Excerpt)
}

func firstText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(s.First().Text())
}

func classContains(s *goquery.Selection, needles ...string) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	class = strings.ToLower(class)
	for _, n := range needles {
		if strings.Contains(class, n) {
			return true
		}
	}
	return false
}

// normalizeText joins non-empty trimmed lines with single spaces.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
