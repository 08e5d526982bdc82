package storage

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/pkg/validator"
)

// WriteSummaryLog writes the plain-text validation summary to
// logs/url_summary_{ts}.log and returns its path.
func (s *Storage) WriteSummaryLog(report *validator.Report, ts time.Time) (string, error) {
	path := s.LogPath("url_summary", ts)
	if err := s.SaveFile(path, []byte(FormatSummaryLog(report))); err != nil {
		return "", err
	}
	return path, nil
}

// FormatSummaryLog renders a validation report for operators.
func FormatSummaryLog(report *validator.Report) string {
	var b strings.Builder
	b.WriteString("=== URL VALIDATION SUMMARY ===\n\n")

	b.WriteString("VALID URLs:\n")
	b.WriteString("===========\n")
	for _, r := range report.Valid {
		fmt.Fprintf(&b, "✓ %s\n", r.Candidate.URL)
	}
	fmt.Fprintf(&b, "\nTotal Valid URLs: %d\n\n", len(report.Valid))

	if len(report.Redirected) > 0 {
		b.WriteString("\nREDIRECTING URLs:\n")
		b.WriteString("================\n")
		for _, r := range report.Redirected {
			fmt.Fprintf(&b, "⚠ %s\n  → %s\n", r.Candidate.URL, r.FinalURL)
		}
		fmt.Fprintf(&b, "\nTotal Redirecting URLs: %d\n\n", len(report.Redirected))
	}

	if len(report.NotFound) > 0 {
		b.WriteString("\nINVALID URLs (404):\n")
		b.WriteString("=================\n")
		for _, r := range report.NotFound {
			if r.StatusCode == http.StatusNotFound {
				fmt.Fprintf(&b, "✗ %s\n", r.Candidate.URL)
				continue
			}
			fmt.Fprintf(&b, "✗ %s (status %d)\n", r.Candidate.URL, r.StatusCode)
		}
		fmt.Fprintf(&b, "\nTotal Invalid URLs: %d\n\n", len(report.NotFound))
	}

	if len(report.Errored) > 0 {
		b.WriteString("\nERROR URLs:\n")
		b.WriteString("===========\n")
		for _, r := range report.Errored {
			fmt.Fprintf(&b, "⚠ %s\n  Error: %s\n", r.Candidate.URL, r.Error)
		}
		fmt.Fprintf(&b, "\nTotal Error URLs: %d\n", len(report.Errored))
	}

	return b.String()
}
