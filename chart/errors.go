package chart

import "errors"

var (
	// ErrEmptyChart means the file had no recognized body commands, or no
	// playable events survived extraction
	ErrEmptyChart = errors.New("empty chart")

	// ErrUnreadableFile means the chart bytes could not be read at all
	ErrUnreadableFile = errors.New("unreadable file")
)
