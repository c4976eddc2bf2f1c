package chart

import (
	"strconv"
	"strings"
)

// Charts in the wild use #RANDOM/#IF (and the newer #SWITCH/#CASE) blocks to
// ship several patterns in one file. The analyzer evaluates them
// deterministically: a #RANDOM with a positive range always selects branch 1,
// so repeated runs over the same file see the same chart.

type flowBlockKind int

const (
	flowIf flowBlockKind = iota
	flowSwitch
)

type flowBlock struct {
	kind          flowBlockKind
	parentActive  bool
	currentActive bool
	matchedBranch bool
	switchValue   *int
}

// flowState tracks nested #RANDOM and conditional blocks while scanning lines.
// The zero value is ready to use.
type flowState struct {
	randomStack []*int
	blocks      []flowBlock
}

// active reports whether lines at the current scan position belong to the
// selected branch of every enclosing block.
func (f *flowState) active() bool {
	for _, b := range f.blocks {
		if !b.currentActive {
			return false
		}
	}
	return true
}

// handle processes one LineFlow command, mutating the block stacks.
// Unbalanced or stray commands are tolerated and ignored.
func (f *flowState) handle(command, arg string) {
	switch command {
	case "RANDOM":
		value := parseFlowInt(arg)
		if value != nil && *value <= 0 {
			f.randomStack = append(f.randomStack, nil)
			return
		}
		one := 1
		f.randomStack = append(f.randomStack, &one)
	case "SETRANDOM":
		value := parseFlowInt(arg)
		if value == nil {
			one := 1
			value = &one
		}
		if len(f.randomStack) > 0 {
			f.randomStack[len(f.randomStack)-1] = value
		} else {
			f.randomStack = append(f.randomStack, value)
		}
	case "ENDRANDOM":
		if len(f.randomStack) > 0 {
			f.randomStack = f.randomStack[:len(f.randomStack)-1]
		}
	case "IF":
		parentActive := f.active()
		result := parentActive && f.evaluate(arg)
		f.blocks = append(f.blocks, flowBlock{
			kind:          flowIf,
			parentActive:  parentActive,
			currentActive: result,
			matchedBranch: result,
		})
	case "ELSEIF":
		if b := f.top(flowIf); b != nil {
			switch {
			case !b.parentActive, b.matchedBranch:
				b.currentActive = false
			default:
				result := f.evaluate(arg)
				b.currentActive = result
				b.matchedBranch = result
			}
		}
	case "ELSE":
		if b := f.top(flowIf); b != nil {
			if !b.parentActive || b.matchedBranch {
				b.currentActive = false
			} else {
				b.currentActive = true
				b.matchedBranch = true
			}
		}
	case "ENDIF":
		if f.top(flowIf) != nil {
			f.blocks = f.blocks[:len(f.blocks)-1]
		}
	case "SWITCH":
		parentActive := f.active()
		switchValue := parseFlowInt(arg)
		if switchValue == nil && len(f.randomStack) > 0 {
			switchValue = f.randomStack[len(f.randomStack)-1]
		}
		f.blocks = append(f.blocks, flowBlock{
			kind:         flowSwitch,
			parentActive: parentActive,
			switchValue:  switchValue,
		})
	case "CASE":
		if b := f.top(flowSwitch); b != nil {
			caseValue := parseFlowInt(arg)
			if b.parentActive && !b.matchedBranch &&
				caseValue != nil && b.switchValue != nil && *caseValue == *b.switchValue {
				b.currentActive = true
				b.matchedBranch = true
			} else {
				b.currentActive = false
			}
		}
	case "DEFAULT":
		if b := f.top(flowSwitch); b != nil {
			if b.parentActive && !b.matchedBranch {
				b.currentActive = true
				b.matchedBranch = true
			} else {
				b.currentActive = false
			}
		}
	case "ENDSWITCH":
		if f.top(flowSwitch) != nil {
			f.blocks = f.blocks[:len(f.blocks)-1]
		}
	}
}

// top returns the innermost block when it has the wanted kind.
func (f *flowState) top(kind flowBlockKind) *flowBlock {
	if len(f.blocks) == 0 {
		return nil
	}
	b := &f.blocks[len(f.blocks)-1]
	if b.kind != kind {
		return nil
	}
	return b
}

func (f *flowState) evaluate(arg string) bool {
	condition := parseFlowInt(arg)
	var currentRandom *int
	if len(f.randomStack) > 0 {
		currentRandom = f.randomStack[len(f.randomStack)-1]
	}
	if currentRandom != nil {
		return condition != nil && *currentRandom == *condition
	}
	if condition == nil {
		return false
	}
	return *condition != 0
}

func parseFlowInt(arg string) *int {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return nil
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &v
}
