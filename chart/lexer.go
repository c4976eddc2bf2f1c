package chart

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind tags a classified chart line.
type LineKind int

const (
	// LineBlank is an empty line or a // comment
	LineBlank LineKind = iota
	// LineHeader is a #KEY VALUE or #KEY:VALUE directive
	LineHeader
	// LineBody is a #mmmcc:data measure command
	LineBody
	// LineFlow is a #RANDOM/#IF/#SWITCH-family control command
	LineFlow
	// LineMalformed matched neither form
	LineMalformed
)

// Line is the tagged result of classifying one raw chart line. Exactly the
// fields for its Kind are populated.
type Line struct {
	Kind LineKind
	Raw  string

	// header directive
	Tag   string
	Value string

	// body command
	Measure int
	Channel string
	Data    string

	// control flow
	FlowCommand string
	FlowArg     string
}

var (
	bodyPattern   = regexp.MustCompile(`^#(\d{3})([0-9A-Za-z]{2}):(.*)$`)
	headerPattern = regexp.MustCompile(`^#(\w+)(?::|\s+)?(.*)$`)
	flowPattern   = regexp.MustCompile(`(?i)^#\s*(RANDOM|SETRANDOM|IF|ELSEIF|ELSE|ENDIF|SWITCH|CASE|DEFAULT|ENDSWITCH|ENDRANDOM)\b`)
)

// ClassifyLine splits one raw line into its tagged form. It never fails;
// unrecognizable input comes back as LineMalformed so the caller can count
// and skip it.
func ClassifyLine(raw string) Line {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "//") {
		return Line{Kind: LineBlank, Raw: raw}
	}
	if !strings.HasPrefix(line, "#") {
		return Line{Kind: LineMalformed, Raw: raw}
	}

	if m := flowPattern.FindStringSubmatch(line); m != nil {
		return Line{
			Kind:        LineFlow,
			Raw:         raw,
			FlowCommand: strings.ToUpper(m[1]),
			FlowArg:     strings.TrimSpace(line[len(m[0]):]),
		}
	}

	// Body commands would also match the looser header pattern, so they are
	// tried first.
	if m := bodyPattern.FindStringSubmatch(line); m != nil {
		measure, err := strconv.Atoi(m[1])
		if err != nil || m[3] == "" {
			return Line{Kind: LineMalformed, Raw: raw}
		}
		return Line{
			Kind:    LineBody,
			Raw:     raw,
			Measure: measure,
			Channel: strings.ToUpper(m[2]),
			Data:    strings.TrimSpace(m[3]),
		}
	}

	if m := headerPattern.FindStringSubmatch(line); m != nil {
		value := strings.TrimLeft(m[2], " \t")
		// Tolerate the doubled-colon form some editors emit (#TITLE:: x)
		if strings.HasPrefix(value, ":") {
			value = strings.TrimLeft(value[1:], " \t")
		}
		return Line{
			Kind:  LineHeader,
			Raw:   raw,
			Tag:   strings.ToUpper(m[1]),
			Value: value,
		}
	}

	return Line{Kind: LineMalformed, Raw: raw}
}

// isBase36 reports whether s is non-empty and contains only base-36 digits.
func isBase36(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return true
}
