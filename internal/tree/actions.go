package tree

import (
	"fmt"

	"github.com/dtnitsch/discoverjesus-scraper/internal/common"
	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/dtnitsch/discoverjesus-scraper/pkg/slug"
	treepkg "github.com/dtnitsch/discoverjesus-scraper/pkg/tree"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Output is the YAML document printed by the tree command.
type Output struct {
	TreeFile   string                    `yaml:"tree_file"`
	Total      int                       `yaml:"total"`
	Candidates []Candidate               `yaml:"candidates"`
	Skipped    map[models.SkipReason]int `yaml:"skipped,omitempty"`
}

type Candidate struct {
	Raw      string `yaml:"raw"`
	Category string `yaml:"category"`
	Title    string `yaml:"title"`
	Rule     string `yaml:"rule"`
	URL      string `yaml:"url"`
}

// TreeAction parses the tree listing and prints the candidate URLs without
// touching the network.
func TreeAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	logger := common.NewLogger(common.LogLevel(c), c.App.ErrWriter)

	corrections, err := slug.LoadCorrections(cfg.CorrectionsFile)
	if err != nil {
		return err
	}
	result, err := treepkg.New(cfg.BaseURL, corrections, logger).ParseFile(cfg.TreeFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(BuildOutput(cfg.TreeFile, result))
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err = c.App.Writer.Write(data)
	return err
}

// BuildOutput pairs each classified entry with the URL built from it.
func BuildOutput(treeFile string, result *treepkg.Result) *Output {
	out := &Output{
		TreeFile:   treeFile,
		Total:      result.Total,
		Candidates: make([]Candidate, 0, len(result.Candidates)),
		Skipped:    result.Skipped,
	}
	for i, c := range result.Candidates {
		entry := Candidate{
			Category: string(c.Category),
			Title:    c.Title,
			URL:      c.URL,
		}
		if i < len(result.Entries) {
			entry.Raw = result.Entries[i].Raw
			entry.Rule = result.Entries[i].Rule
		}
		out.Candidates = append(out.Candidates, entry)
	}
	return out
}
