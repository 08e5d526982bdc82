package tree

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/discoverjesus-scraper/internal/common"
	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func TestTreeAction_PrintsYAML(t *testing.T) {
	treeFile := filepath.Join(t.TempDir(), "tree.txt")
	require.NoError(t, os.WriteFile(treeFile, []byte(`New Series
├── Person - Philip.mp3
├── Person - Establishing Jesus Ancestry.mp3
├── Philip.docx
└── Mystery Recording.mp3
`), 0644))

	var out bytes.Buffer
	app := &cli.App{
		Name:      "test",
		Flags:     common.ConfigFlags(),
		Action:    TreeAction,
		Writer:    &out,
		ErrWriter: io.Discard,
	}
	require.NoError(t, app.Run([]string{"test", "--config", "", "--tree-file", treeFile}))

	var got Output
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))

	assert.Equal(t, treeFile, got.TreeFile)
	assert.Equal(t, 4, got.Total)
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, "Person - Philip.mp3", got.Candidates[0].Raw)
	assert.Equal(t, models.DefaultBaseURL+"/person/philip-apostle-of-jesus", got.Candidates[0].URL)
	assert.Equal(t, "topic", got.Candidates[1].Category, "category fix is applied")
	assert.Equal(t, 1, got.Skipped[models.SkipDocxTxt])
	assert.Equal(t, 1, got.Skipped[models.SkipNoCategory])
}

func TestTreeAction_MissingFile(t *testing.T) {
	app := &cli.App{
		Name:      "test",
		Flags:     common.ConfigFlags(),
		Action:    TreeAction,
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	err := app.Run([]string{"test", "--config", "", "--tree-file", filepath.Join(t.TempDir(), "none.txt")})
	assert.Error(t, err)
}
