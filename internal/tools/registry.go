package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Neruzzz/toolcall-demo/internal/httpx"
)

// UnknownTool is the dispatch result for a name no tool answers to.
const UnknownTool = "Unknown tool"

// Tool is the contract every tool exposes to the model.
type Tool interface {
	Name() string                                               // exact name the model sees, e.g. "get_temperature"
	Description() string                                        // short description for the model
	ParametersSchema() map[string]any                           // JSON schema (object) of the parameters
	Call(ctx context.Context, args map[string]any) (any, error) // execution
}

// Registry is the static name -> tool mapping. It is built once and never mutated.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
	calls  metric.Int64Counter
}

// NewRegistry builds a registry over ts. Later tools with a duplicate name are ignored.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		if _, dup := r.byName[t.Name()]; dup {
			slog.Warn("Duplicate tool ignored", "name", t.Name())
			continue
		}
		r.tools = append(r.tools, t)
		r.byName[t.Name()] = t
	}

	c, err := httpx.Meter().Int64Counter("tool.calls", metric.WithDescription("Tool calls dispatched by name"))
	if err != nil {
		slog.Warn("Tool call counter unavailable", "err", err)
	}
	r.calls = c
	return r
}

// All returns every registered tool in registration order.
func (r *Registry) All() []Tool {
	return r.tools
}

// FindByName returns the tool registered under name, or nil.
func (r *Registry) FindByName(name string) Tool {
	return r.byName[name]
}

// Select returns the registered tools named in names, in the given order.
// Unknown names are skipped.
func (r *Registry) Select(names ...string) []Tool {
	out := make([]Tool, 0, len(names))
	for _, n := range names {
		if t := r.FindByName(n); t != nil {
			out = append(out, t)
		} else {
			slog.Warn("Offered tool not registered", "name", n)
		}
	}
	return out
}

// Dispatch runs the tool registered under name and returns its result as
// the string carried back into the conversation. It never fails: an unknown
// name yields UnknownTool and a tool error yields the error text.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) string {
	t := r.FindByName(name)
	r.count(ctx, name, t != nil)
	if t == nil {
		slog.WarnContext(ctx, "Unknown tool requested", "name", name)
		return UnknownTool
	}

	out, err := t.Call(ctx, args)
	if err != nil {
		slog.ErrorContext(ctx, "Tool call failed", "name", name, "err", err)
		return "tool error: " + err.Error()
	}
	return Stringify(out)
}

func (r *Registry) count(ctx context.Context, name string, known bool) {
	if r.calls == nil {
		return
	}
	r.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.name", name),
		attribute.Bool("tool.known", known),
	))
}

// Stringify renders a tool result for a tool-role message. Booleans are
// spelled "True"/"False".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case fmt.Stringer:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// stringArg reads a string argument; anything missing or non-string reads as "".
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// stringParam is the schema of a single required string parameter.
func stringParam(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{name},
	}
}
