package nodes

import (
	"context"

	"github.com/agavesunset/agave/pkg/domain"
)

// Primitives exposes one widget of each primitive type and returns them.
type Primitives struct{}

type primitivesInputs struct {
	Float   float64 `input:"float_value"`
	Boolean bool    `input:"boolean_value"`
	String  string  `input:"string_value"`
	Int     int64   `input:"int_value"`
}

func (Primitives) Spec() domain.Spec {
	return domain.Spec{
		Class:       "type_AgaveSunset",
		DisplayName: "type_AgaveSunset",
		Category:    "AgaveSunset",
		Function:    "produce",
		Required: []domain.Input{
			{Name: "float_value", Type: domain.SocketFloat, Options: map[string]any{
				"display": "number", "step": 0.01, "min": -1_000_000_000.0, "max": 1_000_000_000.0, "default": 0.0,
			}},
			{Name: "boolean_value", Type: domain.SocketBoolean, Options: map[string]any{"default": false}},
			{Name: "string_value", Type: domain.SocketString, Options: map[string]any{"default": ""}},
			{Name: "int_value", Type: domain.SocketInt, Options: map[string]any{
				"display": "number", "step": 1, "min": -1_000_000_000, "max": 1_000_000_000, "default": 0,
			}},
		},
		ReturnTypes: []domain.SocketType{domain.SocketFloat, domain.SocketBoolean, domain.SocketString, domain.SocketInt},
		ReturnNames: []string{"float", "boolean", "string", "int"},
	}
}

func (Primitives) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	var in primitivesInputs
	if err := decodeInputs(req.Inputs, &in); err != nil {
		return domain.Output{}, err
	}
	return domain.Output{Result: []any{in.Float, in.Boolean, in.String, in.Int}}, nil
}
