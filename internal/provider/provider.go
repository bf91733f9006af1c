// Package provider adapts LLM backends to the single request shape the
// sidekick agent needs: a system prompt, a text conversation, and an optional
// forced tool call for structured output.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/invopop/jsonschema"

	"github.com/petasbytes/sidekick/memory"
)

// ErrEmptyReply is returned when a backend answers with no usable content.
var ErrEmptyReply = errors.New("provider: empty reply")

// Tool describes a structured-output tool. When set on a Request the model
// is forced to call it.
type Tool struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

type Request struct {
	System    string
	Messages  []memory.Turn
	Tool      *Tool
	MaxTokens int64
}

type Reply struct {
	Text string
	// ToolInput is the raw JSON input of the forced tool call, if any.
	ToolInput json.RawMessage
	Model     string
}

// Completer is one LLM backend.
type Completer interface {
	Complete(ctx context.Context, req Request) (Reply, error)
	// Close releases pooled connections.
	Close()
}

// Options configure a backend client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	// HTTPClient is owned by the backend; nil builds a fresh one.
	HTTPClient *http.Client
}

const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
)

// New returns the backend named by kind.
func New(kind string, opts Options) (Completer, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	switch kind {
	case Anthropic:
		return NewAnthropic(opts), nil
	case OpenAI:
		return NewOpenAI(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", kind)
	}
}

// GenerateSchema reflects a JSON schema for T with inline definitions.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
