// Package agent defines the contract between the terminal session and the
// conversational agent it drives, and how an answer is read from the
// agent's result.
package agent

import (
	"context"
	"errors"

	"github.com/petasbytes/sidekick/memory"
)

// ErrNotInitialized is returned when a session submits before its agent
// has been initialized.
var ErrNotInitialized = errors.New("agent not initialized")

// Agent is the external collaborator a session drives.
type Agent interface {
	// Initialize prepares the agent; a failure is fatal to the session.
	Initialize(ctx context.Context) error
	// Submit runs one request. criterion may be empty, meaning none.
	Submit(ctx context.Context, message, criterion string, history []memory.Turn) (Result, error)
	// Cleanup releases resources. It must be safe to call more than once.
	Cleanup() error
}

// Factory builds a fresh, uninitialized agent.
type Factory func() Agent
