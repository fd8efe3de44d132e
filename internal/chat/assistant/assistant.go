package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Neruzzz/toolcall-demo/internal/chat/model"
	"github.com/Neruzzz/toolcall-demo/internal/tools"
)

// DefaultPrompt is the user message the demo conversation starts with.
const DefaultPrompt = "Turn on the lights"

// Client is the chat model the assistant talks to. Implementations submit
// the conversation plus the offered tool contracts and return the model's
// reply, which may request tool calls.
type Client interface {
	Chat(ctx context.Context, msgs []*model.Message, ts []tools.Tool) (*model.Message, error)
}

type Assistant struct {
	cli  Client
	reg  *tools.Registry
	opts options
}

type options struct {
	out       io.Writer
	system    string
	firstTurn []string
	finalTurn []string
}

type Option func(*options)

// WithOutput sets where the final answer is written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithSystemPrompt prepends a system message to the conversation.
func WithSystemPrompt(prompt string) Option {
	return func(o *options) { o.system = prompt }
}

// WithFirstTurnTools names the tools offered on the first request.
func WithFirstTurnTools(names ...string) Option {
	return func(o *options) { o.firstTurn = names }
}

// WithFinalTurnTools names the tools offered on the follow-up request.
func WithFinalTurnTools(names ...string) Option {
	return func(o *options) { o.finalTurn = names }
}

func New(cli Client, reg *tools.Registry, opts ...Option) *Assistant {
	o := options{
		out:       os.Stdout,
		firstTurn: []string{"control"},
		finalTurn: []string{"control"},
	}
	for _, opt := range opts {
		opt(&o)
	}

	ts := reg.All()
	if len(ts) == 0 {
		slog.Warn("No tools registered!")
	} else {
		slog.Info("Tools registered", "count", len(ts))
		for _, t := range ts {
			slog.Info("Tool registered", "name", t.Name(), "desc", t.Description())
		}
	}

	return &Assistant{cli: cli, reg: reg, opts: o}
}

type Result struct {
	Conversation *model.Conversation
	// Output is the final answer; empty when the model requested no tools.
	Output string
	// ToolCalls is the number of tool calls dispatched.
	ToolCalls int
}

// Run plays one exchange: it sends prompt, runs every tool call the reply
// asks for, and, if there were any, asks the model for a final answer which
// is written to the output. Client errors are returned as is; nothing is
// retried.
func (a *Assistant) Run(ctx context.Context, prompt string) (*Result, error) {
	if prompt == "" {
		return nil, errors.New("empty prompt")
	}

	conv := model.NewConversation()
	if a.opts.system != "" {
		conv.Append(model.SystemMessage(a.opts.system))
	}
	conv.Append(model.UserMessage(prompt))
	res := &Result{Conversation: conv}

	slog.InfoContext(ctx, "Sending prompt", "conversation_id", conv.ID, "prompt", prompt)

	reply, err := a.cli.Chat(ctx, conv.Messages, a.reg.Select(a.opts.firstTurn...))
	if err != nil {
		return res, fmt.Errorf("chat: %w", err)
	}
	if reply == nil {
		return res, errors.New("chat: empty reply")
	}
	conv.Append(reply)

	if len(reply.ToolCalls) == 0 {
		slog.InfoContext(ctx, "No tool calls requested", "conversation_id", conv.ID)
		return res, nil
	}

	for _, call := range reply.ToolCalls {
		slog.InfoContext(ctx, "Tool call received", "conversation_id", conv.ID, "name", call.Name, "args", call.Arguments)

		out := a.reg.Dispatch(ctx, call.Name, call.Arguments)
		conv.Append(model.ToolMessage(call, out))
		res.ToolCalls++
	}

	final, err := a.cli.Chat(ctx, conv.Messages, a.reg.Select(a.opts.finalTurn...))
	if err != nil {
		return res, fmt.Errorf("final chat: %w", err)
	}
	if final == nil {
		return res, errors.New("final chat: empty reply")
	}
	conv.Append(final)
	res.Output = final.Content

	if _, err := fmt.Fprintln(a.opts.out, final.Content); err != nil {
		return res, fmt.Errorf("write answer: %w", err)
	}
	return res, nil
}
