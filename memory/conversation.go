package memory

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History is an append-only list of turns owned by a single session.
type History struct {
	mu    sync.Mutex
	turns []Turn
}

// NewHistory returns a history seeded with turns (may be nil).
func NewHistory(seed []Turn) *History {
	h := &History{}
	h.turns = append(h.turns, seed...)
	return h
}

// Append records one exchange: the user message followed by the answer.
func (h *History) Append(user, assistant string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns,
		Turn{Role: RoleUser, Content: user},
		Turn{Role: RoleAssistant, Content: assistant},
	)
}

// Turns returns a copy so callers cannot mutate recorded entries.
func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Reset drops every turn.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

// LoadTranscript reads a transcript written by SaveTranscript.
// A missing file is not an error and yields nil.
func LoadTranscript(path string) ([]Turn, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var turns []Turn
	if err := json.Unmarshal(b, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// SaveTranscript writes turns as indented JSON, creating parent directories.
func SaveTranscript(path string, turns []Turn) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(turns, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
