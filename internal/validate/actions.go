package validate

import (
	"fmt"

	"github.com/dtnitsch/discoverjesus-scraper/internal/common"
	"github.com/urfave/cli/v2"
)

// ValidateAction checks every candidate URL and writes the validation
// artifacts. It exits 1 when the gate would block scraping.
func ValidateAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	report, err := env.Pipeline.RunValidate(c.Context)
	if err != nil {
		return common.GateExit(env.Logger, err)
	}

	fmt.Fprintf(c.App.Writer, "%d valid, %d redirected. Ready to scrape.\n", len(report.Valid), len(report.Redirected))
	return nil
}
