package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseText(t *testing.T, config *ParserConfig, lines ...string) (*Chart, error) {
	t.Helper()
	return NewParser(config).ParseBytes([]byte(strings.Join(lines, "\n")), "test.pms")
}

func mustParse(t *testing.T, config *ParserConfig, lines ...string) *Chart {
	t.Helper()
	c, err := parseText(t, config, lines...)
	require.NoError(t, err)
	return c
}

func TestParseHeadersWithColonValues(t *testing.T) {
	c := mustParse(t, nil,
		"#TITLE: Colon Title",
		"#SUBTITLE: Sub",
		"#ARTIST: Main Artist",
		"#SUBARTIST: Guest Artist",
		"#GENRE: Test",
		"#BPM:120",
		"#00011:0100",
	)

	assert.Equal(t, "Colon Title", c.Header.Title)
	assert.Equal(t, "Sub", c.Header.Subtitle)
	assert.Equal(t, "Main Artist", c.Header.Artist)
	assert.Equal(t, "Guest Artist", c.Header.Subartist)
	assert.Equal(t, "Test", c.Header.Genre)
	assert.Equal(t, 120.0, c.Header.BPM)
}

func TestParseBasicChart(t *testing.T) {
	c := mustParse(t, nil,
		"#TITLE Test Song",
		"#ARTIST Tester",
		"#BPM 120",
		"#00011:0100",
		"#00012:0001",
		"#00111:0001",
	)

	assert.Equal(t, "Test Song", c.Header.Title)
	assert.Len(t, c.Events, 3)
	// two measures at BPM 120 are 4 seconds
	assert.InDelta(t, 4.0, c.TotalTime, 1e-9)
}

func TestTitleFallsBackToFileStem(t *testing.T) {
	c, err := NewParser(nil).ParseBytes([]byte("#00011:01"), "songs/My Chart.pms")
	require.NoError(t, err)
	assert.Equal(t, "My Chart", c.Header.Title)
}

func TestDefaultBPMWhenHeaderAbsent(t *testing.T) {
	c := mustParse(t, nil, "#00011:01")
	assert.Equal(t, 130.0, c.Header.BPM)
	// one default measure at 130 BPM
	assert.InDelta(t, 240.0/130.0, c.TotalTime, 1e-9)
}

func TestFourEvenNotesAt130(t *testing.T) {
	c := mustParse(t, nil, "#00011:01010101")

	require.Len(t, c.Events, 4)
	measure := 240.0 / 130.0
	for i, ev := range c.Events {
		assert.InDelta(t, float64(i)/4.0*measure, ev.Time, 1e-9)
	}
	assert.InDelta(t, 1.846153846, c.TotalTime, 1e-6)
}

func TestEmptyChartNoBodyCommands(t *testing.T) {
	_, err := parseText(t, nil, "#TITLE No Notes", "#BPM 150")
	assert.ErrorIs(t, err, ErrEmptyChart)
}

func TestEmptyChartNoPlayableEvents(t *testing.T) {
	_, err := parseText(t, nil, "#00011:0000")
	assert.ErrorIs(t, err, ErrEmptyChart)
}

func TestMalformedLinesAreCountedNotFatal(t *testing.T) {
	c := mustParse(t, nil,
		"this is not a directive",
		"#00011:010", // odd-length data
		"#00011:01",
	)
	assert.Len(t, c.Events, 1)
	assert.Equal(t, 2, c.MalformedLines)
}

func TestDuplicateObjectsOnSameLaneCollapse(t *testing.T) {
	// channels 11 and 21 both map to lane 0
	c := mustParse(t, nil,
		"#00011:01",
		"#00021:02",
	)
	assert.Len(t, c.Events, 1)
}

func TestMinesExcludedByDefault(t *testing.T) {
	c := mustParse(t, nil,
		"#00011:01",
		"#00016:01",
	)
	assert.Len(t, c.Events, 1)

	withMines := DefaultParserConfig()
	withMines.IncludeMines = true
	c = mustParse(t, withMines,
		"#00011:01",
		"#00016:01",
	)
	require.Len(t, c.Events, 2)
	assert.Equal(t, NoteMine, c.Events[0].Kind)
	assert.Equal(t, LaneNone, c.Events[0].Lane)
	assert.Equal(t, NoteNormal, c.Events[1].Kind)
}

func TestSimultaneousMinesOnDifferentChannelsAllKept(t *testing.T) {
	withMines := DefaultParserConfig()
	withMines.IncludeMines = true
	c := mustParse(t, withMines,
		"#00016:01",
		"#00026:01",
	)

	// mines carry no column, so two at the same instant are distinct objects
	require.Len(t, c.Events, 2)
	for _, ev := range c.Events {
		assert.Equal(t, NoteMine, ev.Kind)
		assert.Equal(t, LaneNone, ev.Lane)
	}
}

func TestLongNoteTailCounting(t *testing.T) {
	lines := []string{"#00051:0101"}

	c := mustParse(t, nil, lines...)
	assert.Len(t, c.Events, 2, "head and tail both count by default")

	headOnly := DefaultParserConfig()
	headOnly.CountLongNoteTails = false
	c = mustParse(t, headOnly, lines...)
	require.Len(t, c.Events, 1)
	assert.Equal(t, 0.0, c.Events[0].Time)
}

func TestEventsSortedByTimeThenLane(t *testing.T) {
	c := mustParse(t, nil,
		"#00013:01",
		"#00011:01",
		"#00012:0001",
	)

	require.Len(t, c.Events, 3)
	for i := 1; i < len(c.Events); i++ {
		prev, cur := c.Events[i-1], c.Events[i]
		ordered := prev.Time < cur.Time ||
			(prev.Time == cur.Time && prev.Lane < cur.Lane)
		assert.True(t, ordered, "events out of order at %d", i)
	}
	assert.Equal(t, Lane(0), c.Events[0].Lane)
	assert.Equal(t, Lane(2), c.Events[1].Lane)
}

func TestShiftJISDecoding(t *testing.T) {
	// "テスト" in Shift-JIS
	title := []byte{0x83, 0x65, 0x83, 0x58, 0x83, 0x67}
	data := append([]byte("#TITLE "), title...)
	data = append(data, []byte("\n#00011:01")...)

	c, err := NewParser(nil).ParseBytes(data, "sjis.pms")
	require.NoError(t, err)
	assert.Equal(t, "テスト", c.Header.Title)
}

func TestEUCJPDecoding(t *testing.T) {
	// "こんにちは" in EUC-JP. Read as Shift-JIS these bytes hit unmapped
	// codes, so the decode must fall through to the EUC-JP attempt.
	title := []byte{0xA4, 0xB3, 0xA4, 0xF3, 0xA4, 0xCB, 0xA4, 0xC1, 0xA4, 0xCF}
	data := append([]byte("#TITLE "), title...)
	data = append(data, []byte("\n#00011:01")...)

	c, err := NewParser(nil).ParseBytes(data, "eucjp.pms")
	require.NoError(t, err)
	assert.Equal(t, "こんにちは", c.Header.Title)
}

func TestHeaderNumericDirectives(t *testing.T) {
	c := mustParse(t, nil,
		"#RANK 3",
		"#TOTAL 260.5",
		"#PLAYLEVEL 42",
		"#DIFFICULTY 4",
		"#00011:01",
	)
	require.NotNil(t, c.Header.Rank)
	assert.Equal(t, 3, *c.Header.Rank)
	require.NotNil(t, c.Header.Total)
	assert.Equal(t, 260.5, *c.Header.Total)
	assert.Equal(t, "42", c.Header.Level)
	assert.Equal(t, "4", c.Header.Difficulty)
}
