package chart

// NumLanes is the number of playable lanes in a 9key PMS chart.
const NumLanes = 9

// Lane identifies one of the 9 playable lanes, 0 (leftmost) through 8.
type Lane int

// LaneNone marks an object with no playable column. Mine channels mirror the
// playable sets but do not encode a column, so mines carry LaneNone and are
// kept out of per-lane counts.
const LaneNone Lane = -1

// NoteKind distinguishes how an object on a playable channel should be counted.
type NoteKind int

const (
	// NoteNormal is a regular tap note (channels 11-19 and 21-29)
	NoteNormal NoteKind = iota
	// NoteLong is a long-note head or tail (channels 51-59)
	NoteLong
	// NoteMine is a mine/invisible object, excluded from density by default
	NoteMine
)

func (k NoteKind) String() string {
	switch k {
	case NoteNormal:
		return "normal"
	case NoteLong:
		return "long"
	case NoteMine:
		return "mine"
	default:
		return "unknown"
	}
}

// NoteEvent is a single chart object resolved to an absolute timestamp.
// Sequences of NoteEvent are plain values: sorted by (Time, Lane) and safe to
// reuse across any number of metric computations.
type NoteEvent struct {
	Time     float64  `json:"time"`
	Lane     Lane     `json:"lane"`
	Kind     NoteKind `json:"kind"`
	ObjectID string   `json:"object_id"`
}

// Header holds the chart's parsed header directives. Immutable after parse.
type Header struct {
	Title      string  `json:"title"`
	Subtitle   string  `json:"subtitle,omitempty"`
	Genre      string  `json:"genre,omitempty"`
	Artist     string  `json:"artist,omitempty"`
	Subartist  string  `json:"subartist,omitempty"`
	Difficulty string  `json:"difficulty,omitempty"`
	Level      string  `json:"level,omitempty"`
	Rank       *int    `json:"rank,omitempty"`
	Total      *float64 `json:"total,omitempty"`

	// BPM is the base tempo taken from #BPM, or the parser default
	BPM float64 `json:"bpm"`

	// BPMDefs maps #BPMxx slot codes (upper-case base-36) to tempo values
	BPMDefs map[string]float64 `json:"-"`
	// StopDefs maps #STOPxx slot codes to stop lengths in 1/192ths of a measure
	StopDefs map[string]float64 `json:"-"`

	// Raw keeps every header directive as seen, for callers that need
	// directives the analyzer itself does not interpret
	Raw map[string]string `json:"-"`
}

// MeasureSpan is one measure resolved onto the absolute time axis.
// Spans are contiguous: End of measure n equals Start of measure n+1.
type MeasureSpan struct {
	Index  int     `json:"index"`
	Length float64 `json:"length"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

// Chart is the full parse result for one chart file.
type Chart struct {
	Path     string        `json:"path"`
	Header   *Header       `json:"header"`
	Events   []NoteEvent   `json:"events"`
	Measures []MeasureSpan `json:"measures"`

	// TotalTime is the end of the last measure in seconds
	TotalTime float64 `json:"total_time"`

	StartBPM float64 `json:"start_bpm"`
	MinBPM   float64 `json:"min_bpm"`
	MaxBPM   float64 `json:"max_bpm"`

	// MalformedLines counts skipped lines that matched neither directive form
	MalformedLines int `json:"malformed_lines"`
	// UnresolvedRefs counts BPM/STOP slot references with no header definition
	UnresolvedRefs int `json:"unresolved_refs"`
}
