package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/discoverjesus-scraper/internal/common"
	"github.com/dtnitsch/discoverjesus-scraper/internal/export"
	"github.com/dtnitsch/discoverjesus-scraper/internal/history"
	"github.com/dtnitsch/discoverjesus-scraper/internal/scrape"
	"github.com/dtnitsch/discoverjesus-scraper/internal/tree"
	"github.com/dtnitsch/discoverjesus-scraper/internal/validate"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "djscrape",
		Usage: "Build DiscoverJesus page summaries from the audio tree listing",
		Flags: common.ConfigFlags(),
		Commands: []*cli.Command{
			{
				Name:   "tree",
				Usage:  "Parse the tree listing and print candidate URLs as YAML",
				Action: tree.TreeAction,
			},
			{
				Name:   "validate",
				Usage:  "Check every candidate URL and write valid/invalid URL files",
				Action: validate.ValidateAction,
			},
			{
				Name:  "scrape",
				Usage: "Validate, confirm, then scrape summaries and write the data module",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: scrape.ScrapeAction,
			},
			{
				Name:  "export",
				Usage: "Regenerate the data module from a summaries JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "input",
						Usage: "Summaries JSON file (default: <output-dir>/summaries.json)",
					},
				},
				Action: export.ExportAction,
			},
			{
				Name:  "history",
				Usage: "List recorded runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Show at most this many runs (0 for all)",
						Value: 20,
					},
					&cli.Int64Flag{
						Name:  "run",
						Usage: "Show the URL checks of one run",
					},
				},
				Action: history.HistoryAction,
			},
		},
	}
}
