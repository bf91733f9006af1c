package windowing

import "github.com/petasbytes/sidekick/memory"

// Stats summarizes the result of window preparation.
//
// Fields:
// - Total: estimated cost of the included groups.
// - Budget: the budget used; <= 0 means unlimited.
// - IncludedGroups / SkippedGroups: group counts on each side of the cut.
// - OverBudgetNewest: the newest group alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// Fields renders stats as a telemetry payload.
func (s Stats) Fields() map[string]any {
	return map[string]any{
		"budget":             s.Budget,
		"total_estimated":    s.Total,
		"included_groups":    s.IncludedGroups,
		"skipped_groups":     s.SkippedGroups,
		"over_budget_newest": s.OverBudgetNewest,
	}
}

// PrepareWindow returns the newest suffix of turns (oldest→newest order kept)
// whose groups fit in budget. A budget <= 0 disables trimming.
//
// Unlike a request window, history is context rather than the question: when
// even the newest exchange is too large the window is empty and the caller
// still sends its new message.
func PrepareWindow(turns []memory.Turn, budget int, c TokenCounter) ([]memory.Turn, Stats) {
	if len(turns) == 0 {
		return nil, Stats{Budget: budget}
	}

	groups := GroupTurns(turns)
	costs := make([]int, len(groups))
	all := 0
	for i, g := range groups {
		costs[i] = c.CountGroup(g, turns)
		all += costs[i]
	}

	if budget <= 0 {
		return turns, Stats{Total: all, Budget: budget, IncludedGroups: len(groups)}
	}

	total, included := 0, 0
	start := len(turns)
	for gi := len(groups) - 1; gi >= 0; gi-- {
		if total+costs[gi] > budget {
			break
		}
		total += costs[gi]
		included++
		start = groups[gi].Start
	}

	stats := Stats{
		Total:            total,
		Budget:           budget,
		IncludedGroups:   included,
		SkippedGroups:    len(groups) - included,
		OverBudgetNewest: costs[len(costs)-1] > budget,
	}
	if included == 0 {
		return nil, stats
	}
	return turns[start:], stats
}
