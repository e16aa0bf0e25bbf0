package nodes

import (
	"context"
	"errors"

	"github.com/agavesunset/agave/pkg/domain"
)

var ErrEmptySourceRange = errors.New("src_max must be different from src_min")

// MapRange maps a value linearly from [src_min, src_max] to [dst_min, dst_max].
type MapRange struct{}

type mapRangeInputs struct {
	Value  float64 `input:"value"`
	SrcMin float64 `input:"src_min"`
	SrcMax float64 `input:"src_max"`
	DstMin float64 `input:"dst_min"`
	DstMax float64 `input:"dst_max"`
	Clamp  string  `input:"clamp"`
}

func (MapRange) Spec() domain.Spec {
	bound := func(name string, def float64) domain.Input {
		return domain.Input{Name: name, Type: domain.SocketFloat, Options: map[string]any{"default": def}}
	}
	return domain.Spec{
		Class:       "MapRangeAgaveSunset",
		DisplayName: "maprange_AgaveSunset",
		Category:    categoryNodes,
		Function:    "map_value",
		Required: []domain.Input{
			{Name: "value", Type: domain.SocketFloat, Options: map[string]any{
				"default": 0.0, "step": 0.01, "round": 0.001, "display": "number",
			}},
			bound("src_min", 0),
			bound("src_max", 1),
			bound("dst_min", 0),
			bound("dst_max", 1),
			{Name: "clamp", Type: domain.SocketCombo, Choices: []string{"disable", "enable"}},
		},
		ReturnTypes: []domain.SocketType{domain.SocketFloat},
		ReturnNames: []string{"value"},
	}
}

func (MapRange) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	var in mapRangeInputs
	if err := decodeInputs(req.Inputs, &in); err != nil {
		return domain.Output{}, err
	}
	r, err := mapRange(in)
	if err != nil {
		return domain.Output{}, err
	}
	return domain.Output{
		Result: []any{r},
		UI:     map[string]any{"text": "mapped: " + str(r)},
	}, nil
}

func mapRange(in mapRangeInputs) (float64, error) {
	if in.SrcMax == in.SrcMin {
		return 0, ErrEmptySourceRange
	}
	t := (in.Value - in.SrcMin) / (in.SrcMax - in.SrcMin)
	if in.Clamp == "enable" {
		t = max(0, min(1, t))
	}
	return in.DstMin + t*(in.DstMax-in.DstMin), nil
}
