package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLine(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Line
	}{
		{
			name: "header with space",
			raw:  "#TITLE My Song",
			want: Line{Kind: LineHeader, Tag: "TITLE", Value: "My Song"},
		},
		{
			name: "header with colon",
			raw:  "#BPM:150",
			want: Line{Kind: LineHeader, Tag: "BPM", Value: "150"},
		},
		{
			name: "header lowercased tag",
			raw:  "#title lower",
			want: Line{Kind: LineHeader, Tag: "TITLE", Value: "lower"},
		},
		{
			name: "body command",
			raw:  "#00312:0102",
			want: Line{Kind: LineBody, Measure: 3, Channel: "12", Data: "0102"},
		},
		{
			name: "body channel is uppercased",
			raw:  "#001a1:01",
			want: Line{Kind: LineBody, Measure: 1, Channel: "A1", Data: "01"},
		},
		{
			name: "flow command",
			raw:  "#IF 2",
			want: Line{Kind: LineFlow, FlowCommand: "IF", FlowArg: "2"},
		},
		{
			name: "flow command lowercase",
			raw:  "#random 4",
			want: Line{Kind: LineFlow, FlowCommand: "RANDOM", FlowArg: "4"},
		},
		{
			name: "comment",
			raw:  "// a comment",
			want: Line{Kind: LineBlank},
		},
		{
			name: "blank",
			raw:  "   ",
			want: Line{Kind: LineBlank},
		},
		{
			name: "not a directive",
			raw:  "random prose",
			want: Line{Kind: LineMalformed},
		},
		{
			name: "body with empty data",
			raw:  "#00011:",
			want: Line{Kind: LineMalformed},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyLine(tc.raw)
			tc.want.Raw = tc.raw
			assert.Equal(t, tc.want, got)
		})
	}
}
