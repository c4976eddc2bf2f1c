package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV(t *testing.T) {
	csv := strings.Join([]string{
		"difficulty,title,pms_path",
		"1,First Song,charts/first.pms",
		`10,Second Song,charts\second.pms`,
		"EX,Third Song,/abs/third.pms",
	}, "\n")

	table, err := LoadCSV(strings.NewReader(csv), "satellite")
	require.NoError(t, err)

	assert.Equal(t, "satellite", table.Name)
	require.Len(t, table.Entries, 3)
	assert.Equal(t, DifficultyEntry{Difficulty: "1", Title: "First Song", Path: "charts/first.pms"}, table.Entries[0])
	assert.Equal(t, "10", table.Entries[1].Difficulty)
	assert.Equal(t, `charts\second.pms`, table.Entries[1].Path)
	assert.Equal(t, "EX", table.Entries[2].Difficulty)
}

func TestLoadCSVAlternateColumnNames(t *testing.T) {
	csv := strings.Join([]string{
		"level,name,chart",
		"5,Renamed,x.pms",
	}, "\n")

	table, err := LoadCSV(strings.NewReader(csv), "alt")
	require.NoError(t, err)
	require.Len(t, table.Entries, 1)
	assert.Equal(t, "5", table.Entries[0].Difficulty)
	assert.Equal(t, "Renamed", table.Entries[0].Title)
}

func TestLoadCSVDefaultsMissingFields(t *testing.T) {
	csv := strings.Join([]string{
		"difficulty,title,pms_path",
		",,charts/untitled.pms",
		"3,Has Title,",
	}, "\n")

	table, err := LoadCSV(strings.NewReader(csv), "defaults")
	require.NoError(t, err)
	// the pathless row is dropped
	require.Len(t, table.Entries, 1)
	assert.Equal(t, "Unknown", table.Entries[0].Difficulty)
	assert.Equal(t, "untitled", table.Entries[0].Title)
}

func TestLoadCSVWithoutPathColumn(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("difficulty,title\n1,x"), "bad")
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestLoadJSONArray(t *testing.T) {
	raw := `[
		{"difficulty": "7", "title": "A", "pms_path": "a.pms"},
		{"level": "8", "name": "B", "chart": "b.pms"}
	]`

	table, err := LoadJSON(strings.NewReader(raw), "json")
	require.NoError(t, err)
	require.Len(t, table.Entries, 2)
	assert.Equal(t, DifficultyEntry{Difficulty: "7", Title: "A", Path: "a.pms"}, table.Entries[0])
	assert.Equal(t, DifficultyEntry{Difficulty: "8", Title: "B", Path: "b.pms"}, table.Entries[1])
}

func TestLoadJSONWrappedObject(t *testing.T) {
	raw := `{"charts": [{"difficulty": "1", "title": "A", "pms_path": "a.pms"}]}`

	table, err := LoadJSON(strings.NewReader(raw), "wrapped")
	require.NoError(t, err)
	assert.Len(t, table.Entries, 1)
}

func TestLoadJSONMalformed(t *testing.T) {
	_, err := LoadJSON(strings.NewReader("{not json"), "bad")
	assert.ErrorIs(t, err, ErrMalformedTable)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, NormalizePath("songs/pack/chart.pms"), NormalizePath(`songs\pack\chart.pms`))
}
