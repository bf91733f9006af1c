package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/petasbytes/sidekick/memory"
)

const DefaultOpenAIModel = openai.GPT4oMini

type OpenAIClient struct {
	client *openai.Client
	http   *http.Client
	model  string
}

func NewOpenAI(opts Options) *OpenAIClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	config.HTTPClient = opts.HTTPClient
	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		http:   opts.HTTPClient,
		model:  model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Reply, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, t := range req.Messages {
		role := openai.ChatMessageRoleUser
		if t.Role == memory.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	creq := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  msgs,
		MaxTokens: int(req.MaxTokens),
	}
	if t := req.Tool; t != nil {
		creq.Tools = []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Schema,
			},
		}}
		creq.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: t.Name},
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, ErrEmptyReply
	}

	m := resp.Choices[0].Message
	reply := Reply{Text: m.Content, Model: resp.Model}
	if req.Tool != nil {
		for _, tc := range m.ToolCalls {
			if tc.Function.Name == req.Tool.Name {
				reply.ToolInput = json.RawMessage(tc.Function.Arguments)
				break
			}
		}
	}
	if reply.Text == "" && reply.ToolInput == nil {
		return Reply{}, ErrEmptyReply
	}
	return reply, nil
}

func (c *OpenAIClient) Close() { c.http.CloseIdleConnections() }
