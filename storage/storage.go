// Package storage persists the analyzer's app configuration, analysis
// history and difficulty-table cache as JSON files under the user's config
// directory. The base directory is injected so the core stays testable; only
// the CLI asks for the default.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/010m010/PMSChartAnalyzer/logging"
)

const (
	configFileName  = "config.json"
	historyFileName = "history.json"

	// DefaultHistoryLimit bounds how many records history.json keeps
	DefaultHistoryLimit = 200
)

// SavedTable is a difficulty-table URL the user has registered, with an
// optional display name.
type SavedTable struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// Config is the persisted application configuration.
type Config struct {
	// BeatorajaPath is the player's beatoraja install root, used to resolve
	// relative chart paths
	BeatorajaPath string `json:"beatoraja_path,omitempty"`

	DifficultyTables []SavedTable `json:"difficulty_tables"`

	// LegacyURLs mirrors DifficultyTables for older versions that only knew
	// a flat URL list
	LegacyURLs []string `json:"difficulty_urls,omitempty"`
}

// AnalysisRecord is one remembered chart analysis.
type AnalysisRecord struct {
	ID         string             `json:"id"`
	FilePath   string             `json:"file_path"`
	Title      string             `json:"title"`
	Artist     string             `json:"artist,omitempty"`
	Difficulty string             `json:"difficulty,omitempty"`
	Level      string             `json:"level,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Store reads and writes the analyzer's persisted state.
type Store struct {
	dir    string
	logger logging.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		logger: logging.WithFields(logging.Fields{"component": "storage"}),
	}
}

// DefaultDir returns the per-user config directory (~/.pms_chart_analyzer).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".pms_chart_analyzer"), nil
}

func (s *Store) ensureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// LoadConfig reads the config file, returning an empty config when none has
// been written yet.
func (s *Store) LoadConfig() (*Config, error) {
	var cfg Config
	if err := s.readJSON(configFileName, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	migrateLegacyURLs(&cfg)
	return &cfg, nil
}

// SaveConfig writes the config, keeping the legacy URL list in sync so older
// versions keep working.
func (s *Store) SaveConfig(cfg *Config) error {
	cfg.LegacyURLs = cfg.LegacyURLs[:0]
	for _, t := range cfg.DifficultyTables {
		cfg.LegacyURLs = append(cfg.LegacyURLs, t.URL)
	}
	return s.writeJSON(configFileName, cfg)
}

// migrateLegacyURLs folds the old flat URL list into DifficultyTables.
func migrateLegacyURLs(cfg *Config) {
	for _, url := range cfg.LegacyURLs {
		known := false
		for _, t := range cfg.DifficultyTables {
			if t.URL == url {
				known = true
				break
			}
		}
		if !known {
			cfg.DifficultyTables = append(cfg.DifficultyTables, SavedTable{URL: url})
		}
	}
}

// AddTable registers a difficulty-table URL, updating the name when the URL
// is already known.
func (s *Store) AddTable(url, name string) error {
	cfg, err := s.LoadConfig()
	if err != nil {
		return err
	}
	for i, t := range cfg.DifficultyTables {
		if t.URL == url {
			if name != "" {
				cfg.DifficultyTables[i].Name = name
			}
			return s.SaveConfig(cfg)
		}
	}
	cfg.DifficultyTables = append(cfg.DifficultyTables, SavedTable{URL: url, Name: name})
	return s.SaveConfig(cfg)
}

// RemoveTable forgets a difficulty-table URL.
func (s *Store) RemoveTable(url string) error {
	cfg, err := s.LoadConfig()
	if err != nil {
		return err
	}
	kept := cfg.DifficultyTables[:0]
	for _, t := range cfg.DifficultyTables {
		if t.URL != url {
			kept = append(kept, t)
		}
	}
	cfg.DifficultyTables = kept
	return s.SaveConfig(cfg)
}

// LoadHistory reads the analysis history, newest first. A missing file is an
// empty history.
func (s *Store) LoadHistory() ([]AnalysisRecord, error) {
	var records []AnalysisRecord
	if err := s.readJSON(historyFileName, &records); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// AppendHistory prepends a record, dropping any earlier record for the same
// file path and trimming to limit. A missing ID is filled in.
func (s *Store) AppendHistory(record AnalysisRecord, limit int) error {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	records, err := s.LoadHistory()
	if err != nil {
		return err
	}

	updated := make([]AnalysisRecord, 0, len(records)+1)
	updated = append(updated, record)
	for _, r := range records {
		if r.FilePath == record.FilePath {
			continue
		}
		updated = append(updated, r)
	}
	if len(updated) > limit {
		updated = updated[:limit]
	}
	return s.writeJSON(historyFileName, updated)
}

func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, v any) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	s.logger.Debug("wrote state file", logging.Fields{"path": path})
	return nil
}
