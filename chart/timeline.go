package chart

import (
	"sort"
	"strconv"
	"strings"

	"github.com/010m010/PMSChartAnalyzer/logging"
)

// stopUnitsPerMeasure is the resolution of #STOPxx values: 192 units equal one
// measure of default length (a whole note).
const stopUnitsPerMeasure = 192.0

// bodyCommand is one body line assigned to its measure.
type bodyCommand struct {
	channel string
	data    string
}

// eventKind orders simultaneous objects within a slot position. The order is
// the documented tie-break: a BPM change applies first, then any stop is
// evaluated at the new tempo, then notes land after the stop.
type eventKind int

const (
	eventBPM eventKind = iota
	eventStop
	eventNote
)

// measureEvent is one expanded object before time resolution.
type measureEvent struct {
	position float64
	kind     eventKind
	lane     Lane
	noteKind NoteKind
	objectID string
	value    float64
}

// timeline is the result of folding all measures onto the absolute time axis.
type timeline struct {
	events     []NoteEvent
	spans      []MeasureSpan
	totalTime  float64
	minBPM     float64
	maxBPM     float64
	unresolved int
	malformed  int
}

// timeState is the running accumulator threaded through measure processing:
// absolute time so far and the tempo in effect.
type timeState struct {
	time float64
	bpm  float64
}

// buildTimeline walks measures in index order, resolving each object slot to
// an absolute timestamp. Measures with no commands still advance time at the
// current BPM and length multiplier.
func buildTimeline(
	commands map[int][]bodyCommand,
	measureLengths map[int]float64,
	header *Header,
	includeMines bool,
	logger logging.Logger,
) timeline {
	tl := timeline{minBPM: header.BPM, maxBPM: header.BPM}
	if len(commands) == 0 {
		return tl
	}

	indices := make([]int, 0, len(commands))
	for m := range commands {
		indices = append(indices, m)
	}
	sort.Ints(indices)
	lastMeasure := indices[len(indices)-1]

	st := timeState{bpm: header.BPM}
	for m := 0; m <= lastMeasure; m++ {
		length := measureLength(measureLengths, m)
		span := MeasureSpan{Index: m, Length: length, Start: st.time}

		events, expandStats := expandMeasure(commands[m], header, includeMines, logger)
		tl.unresolved += expandStats.unresolved
		tl.malformed += expandStats.malformed

		sort.SliceStable(events, func(i, j int) bool {
			if events[i].position != events[j].position {
				return events[i].position < events[j].position
			}
			return events[i].kind < events[j].kind
		})

		previousPosition := 0.0
		for _, ev := range events {
			st.time += portionSeconds(ev.position-previousPosition, st.bpm, length)
			previousPosition = ev.position

			switch ev.kind {
			case eventBPM:
				st.bpm = ev.value
				if st.bpm < tl.minBPM {
					tl.minBPM = st.bpm
				}
				if st.bpm > tl.maxBPM {
					tl.maxBPM = st.bpm
				}
			case eventStop:
				st.time += stopSeconds(ev.value, st.bpm)
			case eventNote:
				tl.events = append(tl.events, NoteEvent{
					Time:     st.time,
					Lane:     ev.lane,
					Kind:     ev.noteKind,
					ObjectID: ev.objectID,
				})
			}
		}
		st.time += portionSeconds(1.0-previousPosition, st.bpm, length)

		span.End = st.time
		tl.spans = append(tl.spans, span)
	}

	tl.totalTime = st.time
	return tl
}

type expandStats struct {
	unresolved int
	malformed  int
}

// expandMeasure turns one measure's channel lines into position-tagged events.
// Object-id pairs of "00" are rests. Lines whose data is not an even-length
// base-36 string are counted as malformed and skipped.
func expandMeasure(cmds []bodyCommand, header *Header, includeMines bool, logger logging.Logger) ([]measureEvent, expandStats) {
	var events []measureEvent
	var stats expandStats

	for _, cmd := range cmds {
		if len(cmd.data)%2 != 0 || !isBase36(cmd.data) {
			stats.malformed++
			continue
		}
		slots := len(cmd.data) / 2
		for idx := 0; idx < slots; idx++ {
			code := strings.ToUpper(cmd.data[2*idx : 2*idx+2])
			if code == "00" {
				continue
			}
			position := float64(idx) / float64(slots)

			if mineChannels[cmd.channel] {
				if !includeMines {
					continue
				}
				events = append(events, measureEvent{
					position: position,
					kind:     eventNote,
					lane:     LaneNone,
					noteKind: NoteMine,
					objectID: code,
				})
				continue
			}

			if lc, ok := laneChannels[cmd.channel]; ok {
				events = append(events, measureEvent{
					position: position,
					kind:     eventNote,
					lane:     lc.lane,
					noteKind: lc.kind,
					objectID: code,
				})
				continue
			}

			switch cmd.channel {
			case channelBPMHex:
				value, err := strconv.ParseInt(code, 16, 64)
				if err != nil || value <= 0 {
					stats.malformed++
					continue
				}
				events = append(events, measureEvent{position: position, kind: eventBPM, value: float64(value)})
			case channelBPMRef:
				value, ok := header.BPMDefs[code]
				if !ok || value <= 0 {
					stats.unresolved++
					logger.Warn("undefined BPM reference ignored", logging.Fields{"code": code})
					continue
				}
				events = append(events, measureEvent{position: position, kind: eventBPM, value: value})
			case channelStop:
				value, ok := header.StopDefs[code]
				if !ok || value <= 0 {
					stats.unresolved++
					logger.Warn("undefined STOP reference ignored", logging.Fields{"code": code})
					continue
				}
				events = append(events, measureEvent{position: position, kind: eventStop, value: value})
			}
			// other channels (BGM, BGA, ...) carry no density information
		}
	}

	return events, stats
}

func measureLength(lengths map[int]float64, index int) float64 {
	if l, ok := lengths[index]; ok && l > 0 {
		return l
	}
	return 1.0
}

// portionSeconds converts a fraction of a measure into seconds at the given
// tempo. A measure of length 1.0 is 4 beats.
func portionSeconds(portion, bpm, length float64) float64 {
	if bpm <= 0 {
		return 0.0
	}
	return portion * 4.0 * length * (60.0 / bpm)
}

// stopSeconds converts a #STOPxx value (1/192ths of a whole note) into an
// absolute pause at the given tempo.
func stopSeconds(units, bpm float64) float64 {
	if bpm <= 0 {
		return 0.0
	}
	return units / stopUnitsPerMeasure * 4.0 * (60.0 / bpm)
}
