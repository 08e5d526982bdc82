package artifact_manager

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultBaseDir = "scraper"
	DebugDir       = "debug"
)

// invalidFilenameChar matches anything unsafe in a debug artifact name.
var invalidFilenameChar = regexp.MustCompile(`[^\p{L}\p{N}\-_]+`)

// GetDebugDir returns the directory raw HTML copies live in.
// Example: scraper/debug/
func GetDebugDir(baseDir string) string {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return filepath.Join(baseDir, DebugDir)
}

// Manager stores the raw HTML of fetched pages for selector debugging.
type Manager struct {
	baseDir string
	maxAge  time.Duration // Max age for a stored artifact before it's considered stale
}

// NewManager creates the debug directory under baseDir.
func NewManager(baseDir string, maxAge time.Duration) (*Manager, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if err := os.MkdirAll(GetDebugDir(baseDir), 0750); err != nil {
		return nil, fmt.Errorf("failed to create debug directory: %w", err)
	}

	return &Manager{baseDir: baseDir, maxAge: maxAge}, nil
}

func sanitizeName(name string) string {
	safe := invalidFilenameChar.ReplaceAllString(name, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return "index"
	}
	return safe
}

// GetArtifactPath returns debug/{name}.html for a page's last path segment.
func (m *Manager) GetArtifactPath(name string) string {
	return filepath.Join(GetDebugDir(m.baseDir), sanitizeName(name)+".html")
}

// SaveDebugHTML overwrites the debug copy for name.
func (m *Manager) SaveDebugHTML(name string, body []byte) error {
	filePath := m.GetArtifactPath(name)
	if err := os.WriteFile(filePath, body, 0600); err != nil {
		return fmt.Errorf("failed to write debug HTML: %w", err)
	}
	return nil
}

// Prune removes debug copies older than maxAge. Non-positive maxAge keeps
// everything.
func (m *Manager) Prune() (int, error) {
	if m.maxAge <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(GetDebugDir(m.baseDir))
	if err != nil {
		return 0, fmt.Errorf("failed to list debug directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".html" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) <= m.maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(GetDebugDir(m.baseDir), e.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove stale debug HTML: %w", err)
		}
		removed++
	}
	return removed, nil
}

// MaxAge returns the configured max age for artifacts.
func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}
