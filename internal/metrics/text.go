package metrics

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/petasbytes/sidekick/memory"
)

// TextStats are size features of a piece of text. They are safe to log:
// nothing in them reveals the text itself.
type TextStats struct {
	Bytes     int `json:"bytes"`
	Runes     int `json:"runes"`
	Graphemes int `json:"graphemes"`
	Words     int `json:"words"`
	Lines     int `json:"lines"`
}

// Measure computes TextStats for s.
func Measure(s string) TextStats {
	return TextStats{
		Bytes:     len(s),
		Runes:     utf8.RuneCountInString(s),
		Graphemes: uniseg.GraphemeClusterCount(s),
		Words:     len(strings.Fields(s)),
		Lines:     countLines(s),
	}
}

// Add returns the field-wise sum of two stats.
func (t TextStats) Add(o TextStats) TextStats {
	return TextStats{
		Bytes:     t.Bytes + o.Bytes,
		Runes:     t.Runes + o.Runes,
		Graphemes: t.Graphemes + o.Graphemes,
		Words:     t.Words + o.Words,
		Lines:     t.Lines + o.Lines,
	}
}

// MeasureTurns sums the stats of every turn's content.
func MeasureTurns(turns []memory.Turn) TextStats {
	var total TextStats
	for _, t := range turns {
		total = total.Add(Measure(t.Content))
	}
	return total
}

// Fields renders stats as a telemetry payload.
func (t TextStats) Fields() map[string]any {
	return map[string]any{
		"bytes":     t.Bytes,
		"runes":     t.Runes,
		"graphemes": t.Graphemes,
		"words":     t.Words,
		"lines":     t.Lines,
	}
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n'.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}
