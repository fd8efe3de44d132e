package tools

import "context"

// Unknown is returned by the lookups for a city outside their tables.
const Unknown = "Unknown"

var temperatures = map[string]string{
	"New York": "22°C",
	"London":   "15°C",
	"Tokyo":    "18°C",
}

var conditions = map[string]string{
	"New York": "Partly cloudy",
	"London":   "Rainy",
	"Tokyo":    "Sunny",
}

// Temperature returns the current temperature for city, or Unknown.
func Temperature(city string) string {
	if t, ok := temperatures[city]; ok {
		return t
	}
	return Unknown
}

// Conditions returns the current weather conditions for city, or Unknown.
func Conditions(city string) string {
	if c, ok := conditions[city]; ok {
		return c
	}
	return Unknown
}

type ToolTemperature struct{}

func (ToolTemperature) Name() string { return "get_temperature" }

func (ToolTemperature) Description() string {
	return "Get the current temperature for a city."
}

func (ToolTemperature) ParametersSchema() map[string]any {
	return stringParam("city", "The name of the city")
}

func (ToolTemperature) Call(_ context.Context, args map[string]any) (any, error) {
	return Temperature(stringArg(args, "city")), nil
}

type ToolConditions struct{}

func (ToolConditions) Name() string { return "get_conditions" }

func (ToolConditions) Description() string {
	return "Get the current weather conditions for a city."
}

func (ToolConditions) ParametersSchema() map[string]any {
	return stringParam("city", "The name of the city")
}

func (ToolConditions) Call(_ context.Context, args map[string]any) (any, error) {
	return Conditions(stringArg(args, "city")), nil
}
