package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/petasbytes/sidekick/internal/provider"
	"github.com/petasbytes/sidekick/memory"
)

type fakeTransport struct {
	respStatus int
	respBody   []byte
	body       []byte
	path       string
	calls      int
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	f.body = b
	f.path = req.URL.Path
	f.calls++
	resp := &http.Response{
		StatusCode: f.respStatus,
		Body:       io.NopCloser(bytes.NewReader(f.respBody)),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

type verdict struct {
	Feedback string `json:"feedback" jsonschema_description:"Why."`
	Met      bool   `json:"met"`
}

var conv = []memory.Turn{
	{Role: memory.RoleUser, Content: "hi"},
	{Role: memory.RoleAssistant, Content: "hello"},
	{Role: memory.RoleUser, Content: "again"},
}

func newBackend(t *testing.T, kind string, ft *fakeTransport) provider.Completer {
	t.Helper()
	c, err := provider.New(kind, provider.Options{
		APIKey:     "test-key",
		Model:      "test-model",
		HTTPClient: &http.Client{Transport: ft},
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := provider.New("yandex", provider.Options{})
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestGenerateSchema_InlineObject(t *testing.T) {
	s := provider.GenerateSchema[verdict]()
	b, err := json.Marshal(s)
	require.NoError(t, err)

	assert.Equal(t, "object", gjson.GetBytes(b, "type").String())
	assert.Equal(t, "string", gjson.GetBytes(b, "properties.feedback.type").String())
	assert.Equal(t, "Why.", gjson.GetBytes(b, "properties.feedback.description").String())
	assert.Equal(t, "boolean", gjson.GetBytes(b, "properties.met.type").String())
	assert.False(t, gjson.GetBytes(b, "$ref").Exists())
}

func TestAnthropic_TextReply(t *testing.T) {
	ft := &fakeTransport{respStatus: 200, respBody: []byte(`{"role":"assistant","model":"test-model","content":[{"type":"text","text":"one"},{"type":"text","text":"two"}]}`)}
	c := newBackend(t, provider.Anthropic, ft)

	reply, err := c.Complete(context.Background(), provider.Request{System: "be nice", Messages: conv, MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", reply.Text)
	assert.Nil(t, reply.ToolInput)

	assert.Equal(t, "/v1/messages", ft.path)
	assert.Equal(t, "test-model", gjson.GetBytes(ft.body, "model").String())
	assert.Equal(t, int64(64), gjson.GetBytes(ft.body, "max_tokens").Int())
	assert.Equal(t, "be nice", gjson.GetBytes(ft.body, "system.0.text").String())
	roles := gjson.GetBytes(ft.body, "messages.#.role").Array()
	require.Len(t, roles, 3)
	assert.Equal(t, "assistant", roles[1].String())
	assert.Equal(t, "again", gjson.GetBytes(ft.body, "messages.2.content.0.text").String())
	assert.False(t, gjson.GetBytes(ft.body, "tools").Exists())
}

func TestAnthropic_ForcedToolReply(t *testing.T) {
	resp := `{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"record","input":{"feedback":"fine","met":true}}]}`
	ft := &fakeTransport{respStatus: 200, respBody: []byte(resp)}
	c := newBackend(t, provider.Anthropic, ft)

	tool := &provider.Tool{Name: "record", Description: "record it", Schema: provider.GenerateSchema[verdict]()}
	reply, err := c.Complete(context.Background(), provider.Request{Messages: conv, Tool: tool, MaxTokens: 64})
	require.NoError(t, err)

	assert.Equal(t, "fine", gjson.GetBytes(reply.ToolInput, "feedback").String())
	assert.True(t, gjson.GetBytes(reply.ToolInput, "met").Bool())

	assert.Equal(t, "record", gjson.GetBytes(ft.body, "tools.0.name").String())
	assert.Equal(t, "tool", gjson.GetBytes(ft.body, "tool_choice.type").String())
	assert.Equal(t, "record", gjson.GetBytes(ft.body, "tool_choice.name").String())
	assert.Equal(t, "string", gjson.GetBytes(ft.body, "tools.0.input_schema.properties.feedback.type").String())
}

func TestAnthropic_EmptyReply(t *testing.T) {
	ft := &fakeTransport{respStatus: 200, respBody: []byte(`{"role":"assistant","content":[]}`)}
	c := newBackend(t, provider.Anthropic, ft)

	_, err := c.Complete(context.Background(), provider.Request{Messages: conv, MaxTokens: 8})
	assert.ErrorIs(t, err, provider.ErrEmptyReply)
}

func TestOpenAI_TextReply(t *testing.T) {
	ft := &fakeTransport{respStatus: 200, respBody: []byte(`{"model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":"hey"}}]}`)}
	c := newBackend(t, provider.OpenAI, ft)

	reply, err := c.Complete(context.Background(), provider.Request{System: "sys", Messages: conv, MaxTokens: 32})
	require.NoError(t, err)
	assert.Equal(t, "hey", reply.Text)
	assert.Equal(t, "test-model", reply.Model)

	assert.Equal(t, "/v1/chat/completions", ft.path)
	assert.Equal(t, "system", gjson.GetBytes(ft.body, "messages.0.role").String())
	assert.Equal(t, "sys", gjson.GetBytes(ft.body, "messages.0.content").String())
	assert.Equal(t, "assistant", gjson.GetBytes(ft.body, "messages.2.role").String())
	assert.Equal(t, int64(4), gjson.GetBytes(ft.body, "messages.#").Int())
}

func TestOpenAI_ForcedToolReply(t *testing.T) {
	resp := `{"choices":[{"index":0,"message":{"role":"assistant","content":"","tool_calls":[{"id":"c1","type":"function","function":{"name":"record","arguments":"{\"feedback\":\"meh\",\"met\":false}"}}]}}]}`
	ft := &fakeTransport{respStatus: 200, respBody: []byte(resp)}
	c := newBackend(t, provider.OpenAI, ft)

	tool := &provider.Tool{Name: "record", Description: "record it", Schema: provider.GenerateSchema[verdict]()}
	reply, err := c.Complete(context.Background(), provider.Request{Messages: conv, Tool: tool})
	require.NoError(t, err)

	assert.Equal(t, "meh", gjson.GetBytes(reply.ToolInput, "feedback").String())
	assert.Equal(t, "record", gjson.GetBytes(ft.body, "tool_choice.function.name").String())
	assert.Equal(t, "object", gjson.GetBytes(ft.body, "tools.0.function.parameters.type").String())
}

func TestOpenAI_NoChoices(t *testing.T) {
	ft := &fakeTransport{respStatus: 200, respBody: []byte(`{"choices":[]}`)}
	c := newBackend(t, provider.OpenAI, ft)

	_, err := c.Complete(context.Background(), provider.Request{Messages: conv})
	assert.ErrorIs(t, err, provider.ErrEmptyReply)
}
