package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Controller drives smart home devices. There is no device integration yet:
// TurnOn announces the action and reports failure.
type Controller struct {
	out io.Writer
}

// NewController returns a controller that writes its notifications to out.
// A nil out means stdout.
func NewController(out io.Writer) *Controller {
	if out == nil {
		out = os.Stdout
	}
	return &Controller{out: out}
}

// TurnOn announces that entity is being turned on and reports whether it
// was. It always returns false.
func (c *Controller) TurnOn(entity string) bool {
	if _, err := fmt.Fprintf(c.out, "Turning on %s\n", entity); err != nil {
		slog.Warn("Control notification not written", "entity", entity, "err", err)
	}
	return false
}

type ToolControl struct {
	Controller *Controller
}

func (ToolControl) Name() string { return "control" }

func (ToolControl) Description() string {
	return "Control a smart home device. Returns whether the device was successfully controlled."
}

func (ToolControl) ParametersSchema() map[string]any {
	return stringParam("entity", "The name of the smart home device")
}

func (t ToolControl) Call(_ context.Context, args map[string]any) (any, error) {
	return t.Controller.TurnOn(stringArg(args, "entity")), nil
}

// Default returns the registry of the three smart home tools, with control
// notifications written to out.
func Default(out io.Writer) *Registry {
	return NewRegistry(
		ToolTemperature{},
		ToolConditions{},
		ToolControl{Controller: NewController(out)},
	)
}
