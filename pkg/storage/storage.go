package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/discoverjesus-scraper/models"
)

// File names inside the output directory.
const (
	ProgressFile     = "progress.json"
	SummariesFile    = "summaries.json"
	ValidURLsFile    = "valid_urls.json"
	InvalidURLsFile  = "invalid_urls.json"
	ErrorsLogFile    = "errors.log"
	LogsDir          = "logs"
	TimestampFormat  = "20060102_150405"
	dataModuleHeader = `// Auto-generated by discoverjesus-scraper
export interface DiscoverJesusSummary {
  id: string;
  shortSummary: string;
  fullSummary: string;
}

export const discoverJesusSummaries: Record<string, DiscoverJesusSummary> = `
)

// Storage writes run artifacts under one output directory.
type Storage struct {
	dir string
}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

// New creates the output directory and its logs subdirectory.
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(dir, LogsDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Path returns name joined to the output directory.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// LogPath returns the path of a timestamped file in the logs directory.
func (s *Storage) LogPath(prefix string, ts time.Time) string {
	return filepath.Join(s.dir, LogsDir, fmt.Sprintf("%s_%s.log", prefix, ts.Format(TimestampFormat)))
}

// SaveFile replaces filePath atomically: content goes to a temp file in the
// same directory which is then renamed over the target.
func (s *Storage) SaveFile(filePath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

func (s *Storage) HasFile(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil
}

// GetFileStats returns metadata about a file using os.Stat.
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// marshalJSON indents with two spaces and leaves &, < and > unescaped so
// summary text reads as scraped. The result has no trailing newline.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (s *Storage) saveJSON(filePath string, v any) error {
	data, err := marshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(filePath), err)
	}
	return s.SaveFile(filePath, append(data, '\n'))
}

// SaveProgress overwrites the checkpoint with the full summary list.
func (s *Storage) SaveProgress(summaries []models.PageSummary) error {
	return s.saveJSON(s.Path(ProgressFile), nonNil(summaries))
}

// SaveSummaries writes the final raw summary list.
func (s *Storage) SaveSummaries(summaries []models.PageSummary) error {
	return s.saveJSON(s.Path(SummariesFile), nonNil(summaries))
}

// LoadSummaries reads a summary list written by SaveSummaries or
// SaveProgress.
func (s *Storage) LoadSummaries(filePath string) ([]models.PageSummary, error) {
	data, err := s.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var summaries []models.PageSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode summaries %s: %w", filePath, err)
	}
	return summaries, nil
}

func (s *Storage) SaveValidURLs(urls []string) error {
	if urls == nil {
		urls = []string{}
	}
	return s.saveJSON(s.Path(ValidURLsFile), urls)
}

// SaveInvalidURLs writes the manual-fix map. Keys are sorted.
func (s *Storage) SaveInvalidURLs(invalid map[string]models.InvalidURL) error {
	if invalid == nil {
		invalid = map[string]models.InvalidURL{}
	}
	return s.saveJSON(s.Path(InvalidURLsFile), invalid)
}

// AppendError adds one "url: error" line to errors.log.
func (s *Storage) AppendError(url string, cause error) error {
	f, err := os.OpenFile(s.Path(ErrorsLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s: %v\n", url, cause); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}

// DataModuleEntries maps id to the fields the app reads, dropping
// summaries without content. A later duplicate id replaces an earlier one.
func DataModuleEntries(summaries []models.PageSummary) map[string]models.DataModuleEntry {
	out := make(map[string]models.DataModuleEntry, len(summaries))
	for i := range summaries {
		s := &summaries[i]
		if !s.HasContent() {
			continue
		}
		out[s.ID] = models.DataModuleEntry{
			ID:           s.ID,
			ShortSummary: s.ShortSummary,
			FullSummary:  s.FullSummary,
		}
	}
	return out
}

// WriteDataModule generates the TypeScript data module at filePath.
func (s *Storage) WriteDataModule(filePath string, summaries []models.PageSummary) (int, error) {
	entries := DataModuleEntries(summaries)
	data, err := marshalJSON(entries)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal data module: %w", err)
	}

	content := make([]byte, 0, len(dataModuleHeader)+len(data)+2)
	content = append(content, dataModuleHeader...)
	content = append(content, data...)
	content = append(content, ";\n"...)

	if err := s.SaveFile(filePath, content); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func nonNil(summaries []models.PageSummary) []models.PageSummary {
	if summaries == nil {
		return []models.PageSummary{}
	}
	return summaries
}
