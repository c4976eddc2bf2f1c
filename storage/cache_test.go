package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/010m010/PMSChartAnalyzer/chart"
	"github.com/010m010/PMSChartAnalyzer/density"
	"github.com/010m010/PMSChartAnalyzer/table"
)

func analyzedEntry(t *testing.T, index int, difficulty, title string, times ...float64) table.EntryResult {
	t.Helper()
	events := make([]chart.NoteEvent, len(times))
	for i, ts := range times {
		events[i] = chart.NoteEvent{Time: ts}
	}
	result, err := density.Compute(events, 0, nil)
	require.NoError(t, err)
	return table.EntryResult{
		Index:  index,
		Entry:  table.DifficultyEntry{Difficulty: difficulty, Title: title, Path: title + ".pms"},
		Result: result,
	}
}

func TestTableCacheRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	good := analyzedEntry(t, 0, "7", "alpha", 0.2, 0.4, 1.5)
	failed := table.EntryResult{
		Index: 1,
		Entry: table.DifficultyEntry{Difficulty: "7", Title: "beta", Path: "beta.pms"},
		Err:   chart.ErrUnreadableFile,
		Error: chart.ErrUnreadableFile.Error(),
	}
	batch := &table.BatchResult{
		Table:   &table.Table{Name: "insane", Entries: []table.DifficultyEntry{good.Entry, failed.Entry}},
		Entries: []table.EntryResult{good, failed},
	}
	key := "https://example.com/insane.json"
	require.NoError(t, store.SaveTableCache(key, batch))

	loaded := store.LoadTableCache(key, table.MetricPeak, nil)
	require.NotNil(t, loaded)
	assert.Equal(t, "insane", loaded.Table.Name)
	require.Len(t, loaded.Entries, 2)

	require.False(t, loaded.Entries[0].Failed())
	assert.Equal(t, good.Result.Metrics, loaded.Entries[0].Result.Metrics)
	assert.Equal(t, good.Result.NoteCount, loaded.Entries[0].Result.NoteCount)
	assert.Equal(t, good.Result.Buckets.Totals, loaded.Entries[0].Result.Buckets.Totals)

	// the failed entry was not cached, so the rebuilt result marks it
	assert.ErrorIs(t, loaded.Entries[1].Err, ErrNotCached)

	require.Len(t, loaded.Groups, 1)
	assert.Equal(t, "7", loaded.Groups[0].Difficulty)
	assert.Equal(t, 1, loaded.Groups[0].Count)
}

func TestTableCacheMissingKey(t *testing.T) {
	store := NewStore(t.TempDir())
	assert.Nil(t, store.LoadTableCache("https://example.com/unknown.json", table.MetricPeak, nil))
}

func TestRemoveTableCache(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.RemoveTableCache("never-saved"))

	entry := analyzedEntry(t, 0, "1", "solo", 0.5)
	batch := &table.BatchResult{
		Table:   &table.Table{Name: "t", Entries: []table.DifficultyEntry{entry.Entry}},
		Entries: []table.EntryResult{entry},
	}
	require.NoError(t, store.SaveTableCache("key", batch))
	require.NotNil(t, store.LoadTableCache("key", table.MetricPeak, nil))

	require.NoError(t, store.RemoveTableCache("key"))
	assert.Nil(t, store.LoadTableCache("key", table.MetricPeak, nil))
}

func TestCorruptCacheTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFileName), []byte("{not json"), 0o644))

	store := NewStore(dir)
	assert.Nil(t, store.LoadTableCache("key", table.MetricPeak, nil))

	entry := analyzedEntry(t, 0, "1", "solo", 0.5)
	batch := &table.BatchResult{
		Table:   &table.Table{Name: "t", Entries: []table.DifficultyEntry{entry.Entry}},
		Entries: []table.EntryResult{entry},
	}
	require.NoError(t, store.SaveTableCache("key", batch))
	assert.NotNil(t, store.LoadTableCache("key", table.MetricPeak, nil))
}
