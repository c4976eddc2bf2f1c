package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomSelectsFirstBranch(t *testing.T) {
	c := mustParse(t, nil,
		"#BPM 120",
		"#RANDOM 2",
		"#IF 1",
		"#00011:01",
		"#ENDIF",
		"#IF 2",
		"#00012:01",
		"#ENDIF",
		"#ENDRANDOM",
	)

	// branch selection is deterministic: always 1
	require.Len(t, c.Events, 1)
	assert.Equal(t, Lane(0), c.Events[0].Lane)
}

func TestElseTakenWhenIfDoesNot(t *testing.T) {
	c := mustParse(t, nil,
		"#RANDOM 3",
		"#IF 2",
		"#00011:01",
		"#ELSE",
		"#00013:01",
		"#ENDIF",
		"#ENDRANDOM",
	)

	require.Len(t, c.Events, 1)
	assert.Equal(t, Lane(2), c.Events[0].Lane)
}

func TestElseIfChain(t *testing.T) {
	c := mustParse(t, nil,
		"#SETRANDOM 2",
		"#IF 1",
		"#00011:01",
		"#ELSEIF 2",
		"#00014:01",
		"#ELSE",
		"#00015:01",
		"#ENDIF",
	)

	require.Len(t, c.Events, 1)
	assert.Equal(t, Lane(3), c.Events[0].Lane)
}

func TestSwitchCaseDefault(t *testing.T) {
	c := mustParse(t, nil,
		"#SWITCH 1",
		"#CASE 1",
		"#00011:01",
		"#CASE 2",
		"#00012:01",
		"#DEFAULT",
		"#00013:01",
		"#ENDSWITCH",
	)

	require.Len(t, c.Events, 1)
	assert.Equal(t, Lane(0), c.Events[0].Lane)
}

func TestNestedRandomBlocks(t *testing.T) {
	c := mustParse(t, nil,
		"#RANDOM 2",
		"#IF 1",
		"#RANDOM 2",
		"#IF 2",
		"#00012:01",
		"#ENDIF",
		"#ENDRANDOM",
		"#00011:01",
		"#ENDIF",
		"#ENDRANDOM",
	)

	// outer branch active, inner IF 2 not taken
	require.Len(t, c.Events, 1)
	assert.Equal(t, Lane(0), c.Events[0].Lane)
}

func TestUnbalancedBlocksAreTolerated(t *testing.T) {
	c := mustParse(t, nil,
		"#ENDIF",
		"#ELSE",
		"#CASE 3",
		"#00011:01",
	)
	assert.Len(t, c.Events, 1)
}

func TestHeaderDirectivesRespectConditionals(t *testing.T) {
	c := mustParse(t, nil,
		"#TITLE Outside",
		"#RANDOM 2",
		"#IF 2",
		"#TITLE Inside",
		"#ENDIF",
		"#ENDRANDOM",
		"#00011:01",
	)
	assert.Equal(t, "Outside", c.Header.Title)
}
