package chart

// Channel ids with a control meaning rather than a lane.
const (
	channelMeasureLength = "02" // measure length multiplier, data is a float
	channelBPMHex        = "03" // inline BPM change, object id is a hex literal
	channelBPMRef        = "08" // BPM change via #BPMxx definition
	channelStop          = "09" // stop via #STOPxx definition
)

// laneChannels maps PMS/BMS body channels to 9key lanes. Pop'n-style charts
// place notes on several channel sets:
//   - 11-19: primary 1P lanes
//   - 21-29: secondary set used by some creators/exporters
//   - 51-59: long-note channels
var laneChannels = buildLaneChannels()

// mineChannels are mine/invisible-object channels. They mirror the playable
// sets with a trailing 6 but carry no column of their own, so mine events get
// LaneNone. Excluded from density counts unless the parser is configured
// otherwise.
var mineChannels = map[string]bool{
	"16": true, "26": true, "36": true, "46": true,
	"56": true, "66": true, "76": true, "86": true,
}

type laneChannel struct {
	lane Lane
	kind NoteKind
}

func buildLaneChannels() map[string]laneChannel {
	m := make(map[string]laneChannel)
	sets := []struct {
		prefix byte
		kind   NoteKind
	}{
		{'1', NoteNormal},
		{'2', NoteNormal},
		{'5', NoteLong},
	}
	for _, set := range sets {
		for key := 1; key <= 9; key++ {
			id := string([]byte{set.prefix, byte('0' + key)})
			m[id] = laneChannel{lane: Lane(key - 1), kind: set.kind}
		}
	}
	return m
}
