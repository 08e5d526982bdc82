package common

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runWithFlags(t *testing.T, args ...string) (*models.ScrapeConfig, error) {
	t.Helper()
	var cfg *models.ScrapeConfig
	var loadErr error
	app := &cli.App{
		Name:  "test",
		Flags: ConfigFlags(),
		Action: func(c *cli.Context) error {
			cfg, loadErr = LoadConfig(c)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg, loadErr
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://example.org
output_dir: out
scrape_delay: 5s
max_attempts: 4
`), 0644))

	cfg, err := runWithFlags(t, "--config", path, "--output-dir", "elsewhere", "--check-delay", "1s", "--readability", "--debug-max-age", "72h")
	require.NoError(t, err)

	assert.Equal(t, "https://example.org", cfg.BaseURL)
	assert.Equal(t, "elsewhere", cfg.OutputDir)
	assert.Equal(t, 5*time.Second, cfg.ScrapeDelay)
	assert.Equal(t, time.Second, cfg.CheckDelay)
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.True(t, cfg.ReadabilityFallback)
	assert.Equal(t, 72*time.Hour, cfg.DebugMaxAge)
	assert.Equal(t, models.DefaultTreeFile, cfg.TreeFile)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := runWithFlags(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConfig(), cfg)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := runWithFlags(t, "--config", "", "--max-attempts", "0")
	assert.Error(t, err)

	_, err = runWithFlags(t, "--config", "", "--base-url", "not a url")
	assert.Error(t, err)

	_, err = runWithFlags(t, "--config", "", "--debug-max-age", "-1h")
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"  y  \n", true},
		{"y", true},
		{"yes\n", false},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tt.input), &out, "Proceed? (y/n): ")
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Proceed? (y/n): ", out.String())
	}
}
