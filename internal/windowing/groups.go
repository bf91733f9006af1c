// Package windowing trims conversation history to an input budget before it
// is sent to a model.
//
// Invariant: an exchange (a user turn immediately followed by an assistant
// turn) is atomic. A window either carries both turns or neither.
package windowing

import "github.com/petasbytes/sidekick/memory"

// GroupKind denotes the atomic unit type when preparing a window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupExchange
)

// Group describes a contiguous span of turns [Start, End).
type Group struct {
	Kind  GroupKind
	Start int // inclusive
	End   int // exclusive
}

// GroupTurns splits turns into exchanges and leftover singletons.
func GroupTurns(turns []memory.Turn) []Group {
	groups := make([]Group, 0, len(turns)/2+1)
	for i := 0; i < len(turns); {
		if turns[i].Role == memory.RoleUser && i+1 < len(turns) && turns[i+1].Role == memory.RoleAssistant {
			groups = append(groups, Group{Kind: GroupExchange, Start: i, End: i + 2})
			i += 2
			continue
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}
