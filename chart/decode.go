package chart

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/010m010/PMSChartAnalyzer/logging"
)

// decodeChartBytes turns raw chart bytes into text. BMS/PMS files in the wild
// are most commonly Shift-JIS, with UTF-8 and EUC-JP both seen; the decode
// order here mirrors that. Invalid bytes never fail the parse: the final
// fallback replaces them so a mangled file still yields partial results.
func decodeChartBytes(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	candidates := []encoding.Encoding{japanese.ShiftJIS, japanese.EUCJP}
	for _, enc := range candidates {
		decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err != nil || !utf8.Valid(decoded) {
			continue
		}
		// the decoders substitute U+FFFD for unmappable bytes instead of
		// returning an error, so a replacement rune marks a wrong guess
		if !bytes.ContainsRune(decoded, utf8.RuneError) {
			return string(decoded)
		}
	}

	logging.Warn("chart bytes matched no known encoding, decoding lossily", logging.Fields{
		"bytes": len(data),
	})
	return strings.ToValidUTF8(string(data), "�")
}
