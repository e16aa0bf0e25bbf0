package nodes

import (
	"context"
	"fmt"

	"github.com/agavesunset/agave/pkg/domain"
)

const demuxWays = 10

// Demux routes its input to one of ten outputs. The other outputs carry a
// blocker so the branches behind them do not run.
type Demux struct{}

type demuxInputs struct {
	Input  any   `input:"input"`
	Select int64 `input:"select"`
}

func (Demux) Spec() domain.Spec {
	types := make([]domain.SocketType, 0, demuxWays+1)
	names := make([]string, 0, demuxWays+1)
	for i := range demuxWays {
		types = append(types, domain.SocketAny)
		names = append(names, fmt.Sprintf("out%d", i))
	}
	return domain.Spec{
		Class:       "DemuxAgaveSunset",
		DisplayName: "Demux_AS",
		Category:    categoryAS,
		Function:    "demux",
		Required: []domain.Input{
			{Name: "input", Type: domain.SocketAny},
			{Name: "select", Type: domain.SocketInt, Options: map[string]any{
				"default": 0, "min": 0, "max": demuxWays - 1, "step": 1, "display": "number",
			}},
		},
		ReturnTypes: append(types, domain.SocketInt),
		ReturnNames: append(names, "selected_index"),
	}
}

func (Demux) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	var in demuxInputs
	if err := decodeInputs(req.Inputs, &in); err != nil {
		return domain.Output{}, err
	}
	sel := in.Select
	if sel < 0 || sel >= demuxWays {
		return domain.Output{}, fmt.Errorf("%w: 'select' must be between 0 and %d (got %d)", domain.ErrInvalidInput, demuxWays-1, sel)
	}

	result := make([]any, demuxWays+1)
	for i := range demuxWays {
		result[i] = &domain.Blocker{}
	}
	result[sel] = unwrapSingleton(in.Input)
	result[demuxWays] = sel

	return domain.Output{
		Result: result,
		UI:     map[string]any{"text": []any{fmt.Sprintf("select: %d\nselected: out%d", sel, sel)}},
	}, nil
}
