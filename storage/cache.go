package storage

import (
	"errors"
	"io/fs"

	"github.com/010m010/PMSChartAnalyzer/density"
	"github.com/010m010/PMSChartAnalyzer/logging"
	"github.com/010m010/PMSChartAnalyzer/table"
)

// ErrNotCached marks a table entry that has no cached analysis, either
// because it failed when the table was last run or because the cache predates
// the entry.
var ErrNotCached = errors.New("no cached analysis for entry")

const cacheFileName = "difficulty_cache.json"

// cachedAnalysis is one successfully analyzed chart: the bucket series is
// enough to rebuild the metrics without re-resolving the chart.
type cachedAnalysis struct {
	EntryIndex int                   `json:"entry_index"`
	NoteCount  int                   `json:"note_count"`
	Duration   float64               `json:"duration"`
	Buckets    *density.BucketSeries `json:"buckets"`
}

type cachedTable struct {
	Name     string                  `json:"name"`
	Entries  []table.DifficultyEntry `json:"entries"`
	Analyses []cachedAnalysis        `json:"analyses"`
}

// SaveTableCache remembers a batch run keyed by the table's URL or path, so a
// later run of the same table can skip resolving and parsing every chart.
// Only successful entries are cached.
func (s *Store) SaveTableCache(key string, result *table.BatchResult) error {
	cache := s.loadCache()

	cached := cachedTable{Name: result.Table.Name, Entries: result.Table.Entries}
	for _, e := range result.Entries {
		if e.Failed() || e.Result == nil {
			continue
		}
		cached.Analyses = append(cached.Analyses, cachedAnalysis{
			EntryIndex: e.Index,
			NoteCount:  e.Result.NoteCount,
			Duration:   e.Result.Duration,
			Buckets:    e.Result.Buckets,
		})
	}
	cache[key] = cached
	return s.writeJSON(cacheFileName, cache)
}

// LoadTableCache rebuilds a batch result from the cache. The metrics are
// recomputed from the stored bucket series, never read back verbatim, so
// metric changes apply to cached data too. Returns nil when the key has never
// been cached; entries without a cached analysis are marked ErrNotCached.
func (s *Store) LoadTableCache(key string, metric table.Metric, config *density.Config) *table.BatchResult {
	cached, ok := s.loadCache()[key]
	if !ok {
		return nil
	}

	entries := make([]table.EntryResult, len(cached.Entries))
	for i, entry := range cached.Entries {
		entries[i] = table.EntryResult{Index: i, Entry: entry, Err: ErrNotCached, Error: ErrNotCached.Error()}
	}
	for _, a := range cached.Analyses {
		if a.EntryIndex < 0 || a.EntryIndex >= len(entries) {
			continue
		}
		result, err := density.FromSeries(a.Buckets, a.NoteCount, a.Duration, config)
		if err != nil {
			s.logger.Warn("dropping unusable cached analysis", logging.Fields{
				"table": key, "entry": a.EntryIndex, "error": err.Error(),
			})
			continue
		}
		entries[a.EntryIndex].Err = nil
		entries[a.EntryIndex].Error = ""
		entries[a.EntryIndex].Result = result
	}

	return &table.BatchResult{
		Table:   &table.Table{Name: cached.Name, Entries: cached.Entries},
		Entries: entries,
		Groups:  table.GroupDistributions(entries, metric),
	}
}

// RemoveTableCache forgets a cached table.
func (s *Store) RemoveTableCache(key string) error {
	cache := s.loadCache()
	if _, ok := cache[key]; !ok {
		return nil
	}
	delete(cache, key)
	return s.writeJSON(cacheFileName, cache)
}

// loadCache reads the cache file. A missing or corrupt file is an empty
// cache, never an error: the cache is always rebuildable from a fresh run.
func (s *Store) loadCache() map[string]cachedTable {
	cache := make(map[string]cachedTable)
	if err := s.readJSON(cacheFileName, &cache); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("discarding unreadable difficulty cache", logging.Fields{"error": err.Error()})
		}
		return make(map[string]cachedTable)
	}
	return cache
}
