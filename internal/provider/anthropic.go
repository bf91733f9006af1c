package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/sidekick/memory"
)

const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

type AnthropicClient struct {
	client *anthropic.Client
	http   *http.Client
	model  anthropic.Model
}

// NewAnthropic returns a Messages API backend. An empty APIKey falls back to
// the SDK's own environment lookup.
func NewAnthropic(opts Options) *AnthropicClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	reqOpts := []option.RequestOption{option.WithHTTPClient(opts.HTTPClient)}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	model := anthropic.Model(opts.Model)
	if model == "" {
		model = DefaultAnthropicModel
	}
	c := anthropic.NewClient(reqOpts...)
	return &AnthropicClient{client: &c, http: opts.HTTPClient, model: model}
}

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Reply, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: req.MaxTokens,
		Messages:  toAnthropicMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if t := req.Tool; t != nil {
		schema := anthropic.ToolInputSchemaParam{}
		if t.Schema != nil {
			schema.Properties = t.Schema.Properties
			schema.Required = t.Schema.Required
		}
		params.Tools = []anthropic.ToolUnionParam{{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		}}}
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfTool: &anthropic.ToolChoiceToolParam{Name: t.Name}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{Model: string(msg.Model)}
	var texts []string
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			if v.Text != "" {
				texts = append(texts, v.Text)
			}
		case anthropic.ToolUseBlock:
			if req.Tool != nil && v.Name == req.Tool.Name && reply.ToolInput == nil {
				reply.ToolInput = json.RawMessage(v.JSON.Input.Raw())
			}
		}
	}
	reply.Text = strings.Join(texts, "\n")
	if reply.Text == "" && reply.ToolInput == nil {
		return Reply{}, ErrEmptyReply
	}
	return reply, nil
}

func (c *AnthropicClient) Close() { c.http.CloseIdleConnections() }

func toAnthropicMessages(turns []memory.Turn) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(t.Content)
		if t.Role == memory.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}
