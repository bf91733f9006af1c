package memory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/sidekick/memory"
)

func TestHistory_AppendAddsUserThenAssistant(t *testing.T) {
	h := memory.NewHistory(nil)
	h.Append("hi", "hello")

	require.Equal(t, 2, h.Len())
	turns := h.Turns()
	assert.Equal(t, memory.Turn{Role: memory.RoleUser, Content: "hi"}, turns[0])
	assert.Equal(t, memory.Turn{Role: memory.RoleAssistant, Content: "hello"}, turns[1])

	h.Append("again", "sure")
	assert.Equal(t, 4, h.Len())
}

func TestHistory_TurnsIsACopy(t *testing.T) {
	h := memory.NewHistory(nil)
	h.Append("q", "a")

	turns := h.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "q", h.Turns()[0].Content)
}

func TestHistory_Reset(t *testing.T) {
	h := memory.NewHistory([]memory.Turn{{Role: memory.RoleUser, Content: "old"}})
	h.Append("q", "a")
	h.Reset()

	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Turns())

	h.Append("next", "ok")
	assert.Equal(t, 2, h.Len())
}

func TestTranscript_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "conv.json")

	in := []memory.Turn{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	require.NoError(t, memory.SaveTranscript(p, in))

	out, err := memory.LoadTranscript(p)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTranscript_LoadMissing_ReturnsNil(t *testing.T) {
	p := filepath.Join(t.TempDir(), "does-not-exist.json")

	turns, err := memory.LoadTranscript(p)
	require.NoError(t, err)
	assert.Nil(t, turns)
}

func TestTranscript_LoadInvalidJSON_ReturnsError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte("{oops"), 0o644))

	_, err := memory.LoadTranscript(p)
	assert.Error(t, err)
}
