// Package ollama provides a chat backend using an Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/Neruzzz/toolcall-demo/internal/chat/model"
	"github.com/Neruzzz/toolcall-demo/internal/httpx"
	"github.com/Neruzzz/toolcall-demo/internal/tools"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llama3.1:8b"

	defaultHTTPTimeout = 5 * time.Minute
)

// Client is a chat client backed by an Ollama server.
type Client struct {
	model  string
	token  string
	http   *http.Client
	client *api.Client
}

// Option configures the Client.
type Option func(*Client) error

// NewClient creates a new Ollama chat client bound to baseURL.
func NewClient(baseURL url.URL, opts ...Option) (*Client, error) {
	client := &Client{
		model: DefaultModel,
		http:  httpx.Client(defaultHTTPTimeout),
	}

	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(client.model) == "" {
		return nil, errors.New("ollama model name is required")
	}

	hc := client.http
	if client.token != "" {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc = &http.Client{
			Timeout:   hc.Timeout,
			Transport: bearerTransport{base: base, token: client.token},
		}
	}
	client.client = api.NewClient(&baseURL, hc)

	return client, nil
}

// WithModel sets the model used for chat requests.
func WithModel(name string) Option {
	return func(client *Client) error {
		client.model = strings.TrimSpace(name)
		return nil
	}
}

// WithAPIKey sends key as a bearer token, as hosted Ollama requires.
func WithAPIKey(key string) Option {
	return func(client *Client) error {
		client.token = strings.TrimSpace(key)
		return nil
	}
}

// WithHTTPClient overrides the HTTP client used for Ollama requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) error {
		if httpClient == nil {
			return errors.New("ollama http client is required")
		}
		client.http = httpClient
		return nil
	}
}

// WithHTTPTimeout sets the HTTP client timeout used for Ollama requests.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(client *Client) error {
		if timeout <= 0 {
			return errors.New("ollama http timeout must be positive")
		}
		client.http.Timeout = timeout
		return nil
	}
}

// Chat sends msgs with ts declared as available tools and returns the
// assistant reply. Streaming is disabled.
func (client *Client) Chat(ctx context.Context, msgs []*model.Message, ts []tools.Tool) (*model.Message, error) {
	messages, err := toAPIMessages(msgs)
	if err != nil {
		return nil, err
	}
	apiTools, err := toAPITools(ts)
	if err != nil {
		return nil, err
	}

	stream := false
	request := &api.ChatRequest{
		Model:    client.model,
		Messages: messages,
		Tools:    apiTools,
		Stream:   &stream,
	}

	slog.DebugContext(ctx, "Ollama chat request", "model", client.model, "messages", len(messages), "tools", len(apiTools))

	var (
		reply api.Message
		got   bool
	)
	if err := client.client.Chat(ctx, request, func(resp api.ChatResponse) error {
		reply = resp.Message
		got = true
		return nil
	}); err != nil {
		return nil, err
	}
	if !got {
		return nil, errors.New("ollama returned no response")
	}

	return fromAPIMessage(reply)
}

// The api types have shifted shape across Ollama releases, so conversion
// goes through their JSON form.

type wireMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolName  string         `json:"tool_name,omitempty"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	Function wireFunctionCall `json:"function"`
}

type wireFunctionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func toAPIMessages(msgs []*model.Message) ([]api.Message, error) {
	out := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		w := wireMessage{Role: string(m.Role), Content: m.Content, ToolName: m.ToolName}
		for _, c := range m.ToolCalls {
			args := c.Arguments
			if args == nil {
				args = map[string]any{}
			}
			w.ToolCalls = append(w.ToolCalls, wireToolCall{Function: wireFunctionCall{Name: c.Name, Arguments: args}})
		}

		var am api.Message
		if err := convert(w, &am); err != nil {
			return nil, fmt.Errorf("ollama message: %w", err)
		}
		out = append(out, am)
	}
	return out, nil
}

func toAPITools(ts []tools.Tool) (api.Tools, error) {
	out := make(api.Tools, 0, len(ts))
	for _, t := range ts {
		w := wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.ParametersSchema(),
			},
		}

		var at api.Tool
		if err := convert(w, &at); err != nil {
			return nil, fmt.Errorf("ollama tool %q: %w", t.Name(), err)
		}
		out = append(out, at)
	}
	return out, nil
}

func fromAPIMessage(am api.Message) (*model.Message, error) {
	var w wireMessage
	if err := convert(am, &w); err != nil {
		return nil, fmt.Errorf("ollama reply: %w", err)
	}

	m := &model.Message{Role: model.Role(w.Role), Content: w.Content, ToolName: w.ToolName}
	if m.Role == "" {
		m.Role = model.RoleAssistant
	}
	for _, c := range w.ToolCalls {
		m.ToolCalls = append(m.ToolCalls, model.ToolCall{Name: c.Function.Name, Arguments: c.Function.Arguments})
	}
	return m, nil
}

func convert(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

type bearerTransport struct {
	base  http.RoundTripper
	token string
}

func (t bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(req)
}
