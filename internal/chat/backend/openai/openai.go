// Package openai provides a chat backend using the OpenAI chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/Neruzzz/toolcall-demo/internal/chat/model"
	"github.com/Neruzzz/toolcall-demo/internal/tools"
)

const DefaultModel = openai.ChatModelGPT4_1

type Client struct {
	cli   openai.Client
	model openai.ChatModel
}

type Config struct {
	// Model defaults to DefaultModel.
	Model string
	// BaseURL and APIKey fall back to the SDK's environment defaults
	// (OPENAI_BASE_URL, OPENAI_API_KEY) when empty.
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
	MaxRetries *int
}

func New(cfg Config) *Client {
	var opts []option.RequestOption
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, option.WithMaxRetries(*cfg.MaxRetries))
	}

	m := openai.ChatModel(strings.TrimSpace(cfg.Model))
	if m == "" {
		m = DefaultModel
	}
	return &Client{cli: openai.NewClient(opts...), model: m}
}

func (c *Client) Chat(ctx context.Context, msgs []*model.Message, ts []tools.Tool) (*model.Message, error) {
	params, err := toParams(msgs)
	if err != nil {
		return nil, err
	}

	var toolDefs []openai.ChatCompletionToolUnionParam
	for _, t := range ts {
		toolDefs = append(toolDefs,
			openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
				Name:        t.Name(),
				Description: openai.String(t.Description()),
				Parameters:  t.ParametersSchema(),
			}),
		)
	}

	resp, err := c.cli.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: params,
		Tools:    toolDefs,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices returned by OpenAI")
	}

	message := resp.Choices[0].Message
	out := &model.Message{Role: model.RoleAssistant, Content: message.Content}
	for _, call := range message.ToolCalls {
		var args map[string]any
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				slog.WarnContext(ctx, "Unparseable tool arguments", "name", call.Function.Name, "args", call.Function.Arguments, "err", err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}

func toParams(msgs []*model.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case model.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case model.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case model.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			p, err := assistantWithCalls(m)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		default:
			return nil, fmt.Errorf("unsupported role %q", m.Role)
		}
	}
	return out, nil
}

// assistantWithCalls rebuilds the SDK's response message from its wire form
// so the tool calls round-trip through ToParam.
func assistantWithCalls(m *model.Message) (openai.ChatCompletionMessageParamUnion, error) {
	type function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}
	type toolCall struct {
		ID       string   `json:"id"`
		Type     string   `json:"type"`
		Function function `json:"function"`
	}
	wire := struct {
		Role      string     `json:"role"`
		Content   string     `json:"content"`
		ToolCalls []toolCall `json:"tool_calls"`
	}{Role: "assistant", Content: m.Content}

	for _, c := range m.ToolCalls {
		args := c.Arguments
		if args == nil {
			args = map[string]any{}
		}
		b, err := json.Marshal(args)
		if err != nil {
			return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("tool call %q arguments: %w", c.Name, err)
		}
		wire.ToolCalls = append(wire.ToolCalls, toolCall{
			ID:       c.ID,
			Type:     "function",
			Function: function{Name: c.Name, Arguments: string(b)},
		})
	}

	raw, err := json.Marshal(wire)
	if err != nil {
		return openai.ChatCompletionMessageParamUnion{}, err
	}
	var msg openai.ChatCompletionMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return openai.ChatCompletionMessageParamUnion{}, err
	}
	return msg.ToParam(), nil
}
