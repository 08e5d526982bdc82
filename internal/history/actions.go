package history

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/discoverjesus-scraper/internal/common"
	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/db"
	"github.com/urfave/cli/v2"
)

// HistoryAction lists recorded runs, or the URL checks of one run with
// --run.
func HistoryAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if c.IsSet("run") {
		return printRun(c, database, c.Int64("run"))
	}
	return printRuns(c, database, c.Int("limit"))
}

func printRuns(c *cli.Context, database *db.DB, limit int) error {
	w := c.App.Writer
	runs, err := database.ListRuns(limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return nil
	}

	fmt.Fprintf(w, "%-6s %-20s %-9s %-14s %-6s %-6s %-6s %-6s %-6s %-7s %-6s\n",
		"ID", "Started", "Command", "Outcome", "URLs", "Valid", "Redir", "404", "Err", "Scraped", "Failed")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Fprintf(w, "%-6d %-20s %-9s %-14s %-6d %-6d %-6d %-6d %-6d %-7d %-6d\n",
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Command,
			r.Outcome,
			r.CandidateCount,
			r.ValidCount,
			r.RedirectedCount,
			r.NotFoundCount,
			r.ErrorCount,
			r.ScrapedCount,
			r.FailedCount,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	return nil
}

func printRun(c *cli.Context, database *db.DB, runID int64) error {
	w := c.App.Writer
	run, err := database.GetRun(runID)
	if err != nil {
		return err
	}
	checks, err := database.GetRunChecks(runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Run %d: %s against %s, %s\n\n", run.RunID, run.Command, run.BaseURL, run.Outcome)
	for _, ch := range checks {
		switch models.ValidationStatus(ch.Status) {
		case models.StatusValid:
			fmt.Fprintf(w, "✓ %s\n", ch.URL)
		case models.StatusRedirected:
			fmt.Fprintf(w, "⚠ %s\n  → %s\n", ch.URL, ch.FinalURL)
		case models.StatusNotFound:
			fmt.Fprintf(w, "✗ %s (status %d)\n", ch.URL, ch.StatusCode)
		default:
			fmt.Fprintf(w, "⚠ %s\n  Error: %s\n", ch.URL, ch.Error)
		}
	}
	fmt.Fprintf(w, "\nTotal: %d checks\n", len(checks))
	return nil
}
