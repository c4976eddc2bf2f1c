// Package table loads difficulty tables and runs batch density analysis over
// their chart entries, grouping results by difficulty for distribution
// (box-plot) statistics.
package table

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrMalformedTable means the table file could not be understood at all.
// Individual bad rows are skipped, not fatal.
var ErrMalformedTable = errors.New("malformed difficulty table")

// DifficultyEntry is one chart in a difficulty table. The label is free-form:
// numeric levels and symbolic ones like "EX" both occur.
type DifficultyEntry struct {
	Difficulty string `json:"difficulty"`
	Title      string `json:"title"`
	// Path is a filesystem path (either separator) or a URL
	Path string `json:"pms_path"`
}

// Table is an ordered difficulty table. Entry order is preserved from the
// source; grouping order downstream follows first appearance.
type Table struct {
	Name    string            `json:"name"`
	Entries []DifficultyEntry `json:"entries"`
}

// Load reads a difficulty table from a .csv or .json file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open difficulty table: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(f, name)
	case ".json":
		return LoadJSON(f, name)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrMalformedTable, filepath.Ext(path))
	}
}

// LoadCSV reads a table with a required header row naming at least the
// difficulty, title and chart-path columns. The original tool accepted a few
// alternate spellings, kept here so existing tables load unchanged.
func LoadCSV(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row: %v", ErrMalformedTable, err)
	}

	columns := make(map[string]int)
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}
	pathCol, ok := findColumn(columns, "pms_path", "chart", "path")
	if !ok {
		return nil, fmt.Errorf("%w: no pms_path column", ErrMalformedTable)
	}
	difficultyCol, _ := findColumn(columns, "difficulty", "level")
	titleCol, _ := findColumn(columns, "title", "name")

	t := &Table{Name: name}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// one unparsable row should not sink the table
			continue
		}
		entry := DifficultyEntry{
			Difficulty: field(record, difficultyCol),
			Title:      field(record, titleCol),
			Path:       field(record, pathCol),
		}
		if entry.Path == "" {
			continue
		}
		fillEntryDefaults(&entry)
		t.Entries = append(t.Entries, entry)
	}
	return t, nil
}

// LoadJSON reads a table given as a JSON array of entry objects, or as an
// object wrapping such an array under "charts" or "entries".
func LoadJSON(r io.Reader, name string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read difficulty table: %w", err)
	}

	var rows []jsonEntry
	if err := json.Unmarshal(data, &rows); err != nil {
		var wrapper struct {
			Charts  []jsonEntry `json:"charts"`
			Entries []jsonEntry `json:"entries"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		rows = wrapper.Charts
		if len(rows) == 0 {
			rows = wrapper.Entries
		}
	}

	t := &Table{Name: name}
	for _, row := range rows {
		entry := DifficultyEntry{
			Difficulty: firstNonEmpty(row.Difficulty, row.Level),
			Title:      firstNonEmpty(row.Title, row.AltName),
			Path:       firstNonEmpty(row.Path, row.Chart),
		}
		if entry.Path == "" {
			continue
		}
		fillEntryDefaults(&entry)
		t.Entries = append(t.Entries, entry)
	}
	return t, nil
}

type jsonEntry struct {
	Difficulty string `json:"difficulty"`
	Level      string `json:"level"`
	Title      string `json:"title"`
	AltName    string `json:"name"`
	Path       string `json:"pms_path"`
	Chart      string `json:"chart"`
}

func fillEntryDefaults(entry *DifficultyEntry) {
	if entry.Difficulty == "" {
		entry.Difficulty = "Unknown"
	}
	if entry.Title == "" {
		base := filepath.Base(NormalizePath(entry.Path))
		entry.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
}

func findColumn(columns map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := columns[name]; ok {
			return i, true
		}
	}
	return -1, false
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NormalizePath makes backslash-separated chart paths usable on any platform.
func NormalizePath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, "\\", "/"))
}
