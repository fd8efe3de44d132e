package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Neruzzz/toolcall-demo/internal/chat/model"
	"github.com/Neruzzz/toolcall-demo/internal/tools"
)

func newServer(t *testing.T, reply string, seen *[]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*seen = append(*seen, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *Client {
	retries := 0
	return New(Config{
		BaseURL:    srv.URL + "/",
		APIKey:     "test",
		HTTPClient: srv.Client(),
		MaxRetries: &retries,
	})
}

func TestChat_ParsesToolCalls(t *testing.T) {
	const reply = `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1,
		"model": "gpt-4.1",
		"choices": [{
			"index": 0,
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"content": null,
				"tool_calls": [{
					"id": "call_1",
					"type": "function",
					"function": {"name": "get_temperature", "arguments": "{\"city\":\"London\"}"}
				}]
			}
		}]
	}`
	var seen []map[string]any
	cli := newClient(newServer(t, reply, &seen))

	reg := tools.Default(nil)
	msg, err := cli.Chat(t.Context(), []*model.Message{model.UserMessage("How warm is London?")}, reg.All())
	require.NoError(t, err)

	require.Equal(t, model.RoleAssistant, msg.Role)
	require.Len(t, msg.ToolCalls, 1)
	require.Equal(t, model.ToolCall{ID: "call_1", Name: "get_temperature", Arguments: map[string]any{"city": "London"}}, msg.ToolCalls[0])

	require.Len(t, seen, 1)
	require.Equal(t, string(DefaultModel), seen[0]["model"])
	declared := seen[0]["tools"].([]any)
	require.Len(t, declared, 3)
	fn := declared[0].(map[string]any)["function"].(map[string]any)
	require.Equal(t, "get_temperature", fn["name"])
}

func TestChat_SendsToolRoundTrip(t *testing.T) {
	const reply = `{
		"id": "chatcmpl-2",
		"object": "chat.completion",
		"created": 1,
		"model": "gpt-4.1",
		"choices": [{
			"index": 0,
			"finish_reason": "stop",
			"message": {"role": "assistant", "content": "It is 15°C in London."}
		}]
	}`
	var seen []map[string]any
	cli := newClient(newServer(t, reply, &seen))

	call := model.ToolCall{ID: "call_1", Name: "get_temperature", Arguments: map[string]any{"city": "London"}}
	msgs := []*model.Message{
		model.SystemMessage("Be brief."),
		model.UserMessage("How warm is London?"),
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{call}},
		model.ToolMessage(call, "15°C"),
	}

	msg, err := cli.Chat(t.Context(), msgs, nil)
	require.NoError(t, err)
	require.Equal(t, "It is 15°C in London.", msg.Content)
	require.Empty(t, msg.ToolCalls)

	sent := seen[0]["messages"].([]any)
	require.Len(t, sent, 4)
	require.Equal(t, "system", sent[0].(map[string]any)["role"])

	assistant := sent[2].(map[string]any)
	require.Equal(t, "assistant", assistant["role"])
	calls := assistant["tool_calls"].([]any)
	require.Len(t, calls, 1)
	require.Equal(t, "call_1", calls[0].(map[string]any)["id"])

	tool := sent[3].(map[string]any)
	require.Equal(t, "tool", tool["role"])
	require.Equal(t, "call_1", tool["tool_call_id"])
	require.Equal(t, "15°C", tool["content"])
}

func TestChat_NoChoices(t *testing.T) {
	const reply = `{"id":"chatcmpl-3","object":"chat.completion","created":1,"model":"gpt-4.1","choices":[]}`
	var seen []map[string]any
	cli := newClient(newServer(t, reply, &seen))

	_, err := cli.Chat(t.Context(), []*model.Message{model.UserMessage("hi")}, nil)
	require.Error(t, err)
}

func TestChat_UnsupportedRole(t *testing.T) {
	var seen []map[string]any
	cli := newClient(newServer(t, `{}`, &seen))

	_, err := cli.Chat(t.Context(), []*model.Message{{Role: "narrator", Content: "x"}}, nil)
	require.Error(t, err)
	require.Empty(t, seen)
}
