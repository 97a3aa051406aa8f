package utils

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var codeFencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")

// RepairJSON applies lossy, heuristic fixes to text that failed strict
// parsing, in this order:
//
//  1. keep only the body of a Markdown code fence, then drop any prose
//     before the first '{' or '['; text with neither and no leading quote
//     is returned as-is
//  2. escape backslashes that do not start a valid JSON escape
//  3. hand the rest to jsonrepair, which closes unterminated strings,
//     closes open objects and arrays, and strips trailing commas
//
// When jsonrepair gives up, the output of steps 1 and 2 is returned. The
// result is not guaranteed to be valid JSON and may not mean what the
// author intended; callers only use it after a strict parse failed.
func RepairJSON(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.IndexAny(text, "{[")
	switch {
	case start > 0:
		text = text[start:]
	case start < 0 && !strings.HasPrefix(text, `"`):
		return text
	}

	text = escapeStrayBackslashes(text)
	if fixed, err := jsonrepair.JSONRepair(text); err == nil {
		return fixed
	}
	return text
}

// LenientUnmarshal parses data strictly and, only if that fails, retries
// once on the output of RepairJSON. repaired reports whether the repaired
// text was used. The error of the strict attempt is returned when both fail.
func LenientUnmarshal(data string, out interface{}) (repaired bool, err error) {
	strictErr := json.Unmarshal([]byte(data), out)
	if strictErr == nil {
		return false, nil
	}
	fixed := RepairJSON(data)
	if fixed == data {
		return false, strictErr
	}
	if err := json.Unmarshal([]byte(fixed), out); err != nil {
		return true, strictErr
	}
	return true, nil
}

func escapeStrayBackslashes(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(text) && strings.IndexByte(`"\/bfnrtu`, text[i+1]) >= 0 {
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}
