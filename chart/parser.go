package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/010m010/PMSChartAnalyzer/logging"
)

const timestampEpsilon = 1e-6

// ParserConfig controls chart parsing.
type ParserConfig struct {
	// DefaultBPM is used when the chart has no valid #BPM header
	DefaultBPM float64 `json:"default_bpm"`

	// IncludeMines counts mine/invisible objects as events
	IncludeMines bool `json:"include_mines"`

	// CountLongNoteTails counts both ends of a long note. When false only
	// the head contributes to density.
	CountLongNoteTails bool `json:"count_long_note_tails"`
}

// DefaultParserConfig returns the parser defaults: BPM 130, mines excluded,
// long-note tails counted.
func DefaultParserConfig() *ParserConfig {
	return &ParserConfig{
		DefaultBPM:         130.0,
		IncludeMines:       false,
		CountLongNoteTails: true,
	}
}

// Parser turns raw PMS/BMS bytes into a Chart. It holds no per-chart state
// and is safe for reuse across files.
type Parser struct {
	config *ParserConfig
	logger logging.Logger
}

// NewParser creates a parser, falling back to defaults for a nil config.
func NewParser(config *ParserConfig) *Parser {
	if config == nil {
		config = DefaultParserConfig()
	}
	return &Parser{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "chart_parser"}),
	}
}

// ParseFile reads and parses a chart file. Both .pms and .bms are accepted.
func (p *Parser) ParseFile(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	return p.ParseBytes(data, path)
}

// ParseBytes parses already-resolved chart bytes. The name is used for the
// fallback title and diagnostics only.
func (p *Parser) ParseBytes(data []byte, name string) (*Chart, error) {
	text := decodeChartBytes(data)

	header := &Header{
		Title:    stemOf(name),
		BPM:      p.config.DefaultBPM,
		BPMDefs:  make(map[string]float64),
		StopDefs: make(map[string]float64),
		Raw:      make(map[string]string),
	}
	commands := make(map[int][]bodyCommand)
	measureLengths := make(map[int]float64)
	malformed := 0

	var flow flowState
	for _, raw := range strings.Split(text, "\n") {
		line := ClassifyLine(strings.TrimRight(raw, "\r"))

		switch line.Kind {
		case LineBlank:
			continue
		case LineFlow:
			flow.handle(line.FlowCommand, line.FlowArg)
			continue
		}
		if !flow.active() {
			continue
		}

		switch line.Kind {
		case LineBody:
			if line.Channel == channelMeasureLength {
				if length, err := strconv.ParseFloat(line.Data, 64); err == nil && length > 0 {
					measureLengths[line.Measure] = length
				}
				continue
			}
			commands[line.Measure] = append(commands[line.Measure], bodyCommand{
				channel: line.Channel,
				data:    line.Data,
			})
		case LineHeader:
			p.applyHeader(header, measureLengths, line.Tag, line.Value)
		case LineMalformed:
			malformed++
			p.logger.Debug("skipping malformed line", logging.Fields{"line": line.Raw})
		}
	}

	if len(commands) == 0 {
		return nil, fmt.Errorf("%w: %s has no body commands", ErrEmptyChart, name)
	}

	tl := buildTimeline(commands, measureLengths, header, p.config.IncludeMines, p.logger)
	malformed += tl.malformed

	events := p.finishEvents(tl.events)
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: %s has no playable events", ErrEmptyChart, name)
	}

	if malformed > 0 {
		p.logger.Warn("chart parsed with malformed lines skipped", logging.Fields{
			"path": name, "malformed": malformed,
		})
	}

	return &Chart{
		Path:           name,
		Header:         header,
		Events:         events,
		Measures:       tl.spans,
		TotalTime:      tl.totalTime,
		StartBPM:       header.BPM,
		MinBPM:         tl.minBPM,
		MaxBPM:         tl.maxBPM,
		MalformedLines: malformed,
		UnresolvedRefs: tl.unresolved,
	}, nil
}

// applyHeader folds one header directive into the header under construction.
// Values that fail to parse leave the previous value in place; charts in the
// wild are messy and a bad directive should not fail the file.
func (p *Parser) applyHeader(h *Header, measureLengths map[int]float64, tag, value string) {
	h.Raw[tag] = value
	if value == "" {
		return
	}

	switch {
	case tag == "BPM":
		if bpm, err := strconv.ParseFloat(value, 64); err == nil && bpm > 0 {
			h.BPM = bpm
		}
	case strings.HasPrefix(tag, "BPM") && len(tag) == 5:
		if bpm, err := strconv.ParseFloat(value, 64); err == nil {
			h.BPMDefs[tag[3:]] = bpm
		}
	case strings.HasPrefix(tag, "STOP") && len(tag) == 6:
		if units, err := strconv.ParseFloat(value, 64); err == nil {
			h.StopDefs[tag[4:]] = units
		}
	case tag == "TITLE":
		h.Title = value
	case tag == "SUBTITLE":
		h.Subtitle = value
	case tag == "ARTIST":
		h.Artist = value
	case tag == "SUBARTIST":
		h.Subartist = value
	case tag == "GENRE":
		h.Genre = value
	case tag == "DIFFICULTY":
		h.Difficulty = value
	case tag == "LEVEL", tag == "PLAYLEVEL":
		h.Level = value
	case tag == "RANK":
		if rank, err := strconv.Atoi(value); err == nil {
			h.Rank = &rank
		}
	case tag == "TOTAL":
		if total, err := strconv.ParseFloat(value, 64); err == nil {
			h.Total = &total
		}
	case tag == "MEASURE":
		// alternate measure-length form: #MEASURE <index> <length>
		parts := strings.Fields(value)
		if len(parts) == 2 {
			index, errIdx := strconv.Atoi(parts[0])
			length, errLen := strconv.ParseFloat(parts[1], 64)
			if errIdx == nil && errLen == nil && index >= 0 && length > 0 {
				measureLengths[index] = length
			}
		}
	}
}

// finishEvents sorts, optionally drops long-note tails, and collapses
// duplicate objects sharing a lane and timestamp.
func (p *Parser) finishEvents(events []NoteEvent) []NoteEvent {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return events[i].Lane < events[j].Lane
	})

	if !p.config.CountLongNoteTails {
		events = dropLongNoteTails(events)
	}

	out := events[:0]
	for _, ev := range events {
		if len(out) > 0 && ev.Lane != LaneNone {
			last := out[len(out)-1]
			if last.Lane == ev.Lane && ev.Time-last.Time < timestampEpsilon {
				continue
			}
		}
		out = append(out, ev)
	}
	return out
}

// dropLongNoteTails keeps only the first of each head/tail pair per lane.
// Long-note channels toggle: odd occurrences on a lane are heads.
func dropLongNoteTails(events []NoteEvent) []NoteEvent {
	var holding [NumLanes]bool
	out := events[:0]
	for _, ev := range events {
		if ev.Kind == NoteLong {
			if holding[ev.Lane] {
				holding[ev.Lane] = false
				continue
			}
			holding[ev.Lane] = true
		}
		out = append(out, ev)
	}
	return out
}

func stemOf(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
