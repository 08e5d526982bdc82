package scrape

import (
	"errors"
	"fmt"

	"github.com/dtnitsch/discoverjesus-scraper/internal/common"
	"github.com/dtnitsch/discoverjesus-scraper/internal/pipeline"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ScrapeAction runs validation, asks for confirmation unless --yes is set,
// then scrapes every valid URL.
func ScrapeAction(c *cli.Context) error {
	confirm := func(question string) bool {
		if c.Bool("yes") {
			return true
		}
		return common.Confirm(c.App.Reader, c.App.Writer, question)
	}

	env, err := common.Setup(c, pipeline.WithConfirm(confirm))
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := env.Pipeline.RunScrape(c.Context)
	if errors.Is(err, pipeline.ErrDeclined) {
		return nil
	}
	if err != nil {
		return common.GateExit(env.Logger, err)
	}

	fmt.Fprintf(c.App.Writer, "\nSaved %d summaries to %s\n", res.ModuleEntries, env.Config.DataModule)
	fmt.Fprintf(c.App.Writer, "Saved raw data to %s\n", env.Pipeline.Storage().Path(storage.SummariesFile))
	if res.Failed > 0 {
		fmt.Fprintf(c.App.Writer, "%d pages failed, see %s\n", res.Failed, env.Pipeline.Storage().Path(storage.ErrorsLogFile))
	}
	return nil
}
