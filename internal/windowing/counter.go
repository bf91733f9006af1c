package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/sidekick/memory"
)

// TokenCounter estimates the input cost of turns.
type TokenCounter interface {
	CountTurn(t memory.Turn) int
	CountGroup(g Group, all []memory.Turn) int
}

// HeuristicCounter charges the rune count of each turn plus a fixed overhead.
type HeuristicCounter struct{}

// Per-turn overhead for role markers; changing it requires updating the tests.
const turnOverhead = 4

func (HeuristicCounter) CountTurn(t memory.Turn) int {
	return utf8.RuneCountInString(t.Content) + turnOverhead
}

func (h HeuristicCounter) CountGroup(g Group, all []memory.Turn) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountTurn(all[i])
	}
	return total
}
