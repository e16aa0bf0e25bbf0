package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/agavesunset/agave/pkg/domain"
)

const switchCases = 10

// Miss policies of the Switch node.
const (
	MissUseDefault     = "use_default"
	MissFirstConnected = "first_connected"
	MissLastConnected  = "last_connected"
	MissError          = "error"
)

var (
	ErrSwitchNoFallback  = errors.New("selected case missing and no default or connected case provided")
	ErrSwitchNoConnected = errors.New("no connected branches to choose from")
	ErrSwitchMissing     = errors.New("selected case is missing (on_miss=error)")
)

// Switch selects one of ten cases by index, falling back according to the
// on_miss policy when the selected case is not connected.
type Switch struct{}

func (Switch) Spec() domain.Spec {
	optional := make([]domain.Input, 0, switchCases+1)
	for i := range switchCases {
		optional = append(optional, domain.Input{Name: fmt.Sprintf("case%d", i), Type: domain.SocketAny})
	}
	optional = append(optional, domain.Input{Name: "default", Type: domain.SocketAny})

	return domain.Spec{
		Class:       "SwitchAgaveSunset",
		DisplayName: "Switch_AS",
		Category:    categoryAS,
		Function:    "switch",
		Required: []domain.Input{
			{Name: "index", Type: domain.SocketInt, Options: map[string]any{
				"default": 0, "min": 0, "max": switchCases - 1, "step": 1, "display": "number",
			}},
			{Name: "on_miss", Type: domain.SocketCombo, Choices: []string{
				MissUseDefault, MissFirstConnected, MissLastConnected, MissError,
			}},
		},
		Optional:    optional,
		ReturnTypes: []domain.SocketType{domain.SocketAny},
		ReturnNames: []string{"output"},
	}
}

func (Switch) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	var in struct {
		Index  int64  `input:"index"`
		OnMiss string `input:"on_miss"`
	}
	if err := decodeInputs(map[string]any{"index": req.Inputs["index"], "on_miss": req.Inputs["on_miss"]}, &in); err != nil {
		return domain.Output{}, err
	}

	cases := make([]any, switchCases)
	for i := range cases {
		cases[i] = req.Inputs[fmt.Sprintf("case%d", i)]
	}
	chosen, src, err := selectCase(cases, req.Inputs["default"], in.Index, in.OnMiss)
	if err != nil {
		return domain.Output{}, err
	}
	return domain.Output{
		Result: []any{chosen},
		UI:     map[string]any{"text": []any{fmt.Sprintf("index: %d\nselected: %s", in.Index, src)}},
	}, nil
}

// selectCase returns the chosen value and the name of the input it came from.
func selectCase(cases []any, def any, idx int64, onMiss string) (any, string, error) {
	if idx >= 0 && idx < int64(len(cases)) && cases[idx] != nil {
		return cases[idx], fmt.Sprintf("case%d", idx), nil
	}

	switch onMiss {
	case MissUseDefault:
		if def != nil {
			return def, "default", nil
		}
		if v, src, ok := firstConnected(cases); ok {
			return v, src, nil
		}
		return nil, "", ErrSwitchNoFallback
	case MissFirstConnected, MissLastConnected:
		find := firstConnected
		if onMiss == MissLastConnected {
			find = lastConnected
		}
		if v, src, ok := find(cases); ok {
			return v, src, nil
		}
		if def != nil {
			return def, "default", nil
		}
		return nil, "", ErrSwitchNoConnected
	}
	return nil, "", ErrSwitchMissing
}

func firstConnected(cases []any) (any, string, bool) {
	for i, v := range cases {
		if v != nil {
			return v, fmt.Sprintf("case%d", i), true
		}
	}
	return nil, "", false
}

func lastConnected(cases []any) (any, string, bool) {
	for i := len(cases) - 1; i >= 0; i-- {
		if cases[i] != nil {
			return cases[i], fmt.Sprintf("case%d", i), true
		}
	}
	return nil, "", false
}
