package tools

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookups(t *testing.T) {
	tests := []struct {
		city        string
		temperature string
		conditions  string
	}{
		{"New York", "22°C", "Partly cloudy"},
		{"London", "15°C", "Rainy"},
		{"Tokyo", "18°C", "Sunny"},
		{"Paris", Unknown, Unknown},
		{"london", Unknown, Unknown},
		{"", Unknown, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			if got := Temperature(tt.city); got != tt.temperature {
				t.Errorf("Temperature(%q) = %q, want %q", tt.city, got, tt.temperature)
			}
			if got := Conditions(tt.city); got != tt.conditions {
				t.Errorf("Conditions(%q) = %q, want %q", tt.city, got, tt.conditions)
			}
			// same input, same answer
			t1, t2 := Temperature(tt.city), Temperature(tt.city)
			c1, c2 := Conditions(tt.city), Conditions(tt.city)
			if t1 != t2 || c1 != c2 {
				t.Errorf("lookups for %q are not stable", tt.city)
			}
		})
	}
}

func TestControllerTurnOn(t *testing.T) {
	for _, entity := range []string{"the lights", "", "Door Lock"} {
		var out bytes.Buffer
		c := NewController(&out)

		if c.TurnOn(entity) {
			t.Errorf("TurnOn(%q) = true, want false", entity)
		}
		if got, want := out.String(), "Turning on "+entity+"\n"; got != want {
			t.Errorf("TurnOn(%q) notification = %q, want %q", entity, got, want)
		}
	}
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		tool   string
		args   map[string]any
		want   string
		notice string
	}{
		{"temperature", "get_temperature", map[string]any{"city": "London"}, "15°C", ""},
		{"conditions", "get_conditions", map[string]any{"city": "Tokyo"}, "Sunny", ""},
		{"unknown city", "get_conditions", map[string]any{"city": "Oslo"}, Unknown, ""},
		{"missing argument", "get_temperature", nil, Unknown, ""},
		{"non-string argument", "get_temperature", map[string]any{"city": 42}, Unknown, ""},
		{"control", "control", map[string]any{"entity": "the lights"}, "False", "Turning on the lights\n"},
		{"unknown tool", "open_door", map[string]any{"entity": "the lights"}, UnknownTool, ""},
		{"empty name", "", nil, UnknownTool, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			reg := Default(&out)

			if got := reg.Dispatch(ctx, tt.tool, tt.args); got != tt.want {
				t.Errorf("Dispatch(%q) = %q, want %q", tt.tool, got, tt.want)
			}
			if out.String() != tt.notice {
				t.Errorf("Dispatch(%q) wrote %q, want %q", tt.tool, out.String(), tt.notice)
			}
		})
	}
}

type failingTool struct{}

func (failingTool) Name() string                     { return "broken" }
func (failingTool) Description() string              { return "always fails" }
func (failingTool) ParametersSchema() map[string]any { return map[string]any{"type": "object"} }
func (failingTool) Call(context.Context, map[string]any) (any, error) {
	return nil, errors.New("boom")
}

func TestDispatch_ToolError(t *testing.T) {
	reg := NewRegistry(failingTool{})
	if got, want := reg.Dispatch(context.Background(), "broken", nil), "tool error: boom"; got != want {
		t.Errorf("Dispatch() = %q, want %q", got, want)
	}
}

func TestRegistry(t *testing.T) {
	reg := Default(nil)

	names := func(ts []Tool) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.Name())
		}
		return out
	}

	if diff := cmp.Diff([]string{"get_temperature", "get_conditions", "control"}, names(reg.All())); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"control", "get_temperature"}, names(reg.Select("control", "nope", "get_temperature"))); diff != "" {
		t.Errorf("Select() mismatch (-want +got):\n%s", diff)
	}
	if reg.FindByName("nope") != nil {
		t.Error("FindByName() of an unregistered name should be nil")
	}

	dup := NewRegistry(ToolTemperature{}, ToolTemperature{})
	if len(dup.All()) != 1 {
		t.Errorf("duplicate registration kept %d tools, want 1", len(dup.All()))
	}
}

func TestParametersSchema(t *testing.T) {
	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entity": map[string]any{
				"type":        "string",
				"description": "The name of the smart home device",
			},
		},
		"required": []string{"entity"},
	}
	if diff := cmp.Diff(want, ToolControl{}.ParametersSchema()); diff != "" {
		t.Errorf("control schema mismatch (-want +got):\n%s", diff)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{true, "True"},
		{false, "False"},
		{"Rainy", "Rainy"},
		{nil, ""},
		{map[string]any{"status": "ok"}, `{"status":"ok"}`},
		{3, "3"},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
