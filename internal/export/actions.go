package export

import (
	"fmt"

	"github.com/dtnitsch/discoverjesus-scraper/internal/common"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ExportAction regenerates the data module from a summaries JSON file,
// by default the last summaries.json.
func ExportAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	logger := common.NewLogger(common.LogLevel(c), c.App.ErrWriter)

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return err
	}

	input := c.String("input")
	if input == "" {
		input = store.Path(storage.SummariesFile)
	}
	if !store.HasFile(input) {
		return cli.Exit(fmt.Sprintf("no summaries file at %s; run scrape first or pass --input", input), 1)
	}
	summaries, err := store.LoadSummaries(input)
	if err != nil {
		return err
	}

	n, err := store.WriteDataModule(cfg.DataModule, summaries)
	if err != nil {
		return err
	}
	logger.Info("Data module exported", "input", input, "summaries", len(summaries), "entries", n, "data_module", cfg.DataModule)
	fmt.Fprintf(c.App.Writer, "Saved %d summaries to %s\n", n, cfg.DataModule)
	return nil
}
