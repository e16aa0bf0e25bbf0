package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/agavesunset/agave/pkg/domain"
)

const (
	categoryNodes = "nodes_AgaveSunset"
	demux8Ways    = 8
)

var defaultDemux8Labels = func() string {
	labels := make([]string, demux8Ways)
	for i := range labels {
		labels[i] = fmt.Sprintf("out%d", i+1)
	}
	return strings.Join(labels, ",")
}()

// Demux8 routes input1 to one of eight outputs, numbered from 1. Unselected
// outputs are nil rather than blocked. An out-of-range route is clamped.
type Demux8 struct{}

type demux8Inputs struct {
	Input1 any    `input:"input1"`
	Route  any    `input:"route"`
	Labels string `input:"labels"`
}

func (Demux8) Spec() domain.Spec {
	types := make([]domain.SocketType, 0, demux8Ways+2)
	names := make([]string, 0, demux8Ways+2)
	for i := range demux8Ways {
		types = append(types, domain.SocketAny)
		names = append(names, fmt.Sprintf("out%d", i+1))
	}
	return domain.Spec{
		Class:       "Demux8AgaveSunset",
		DisplayName: "demux8_AgaveSunset",
		Category:    categoryNodes,
		Function:    "route",
		Required: []domain.Input{
			{Name: "input1", Type: domain.SocketAny},
			{Name: "route", Type: domain.SocketInt, Options: map[string]any{
				"default": 1, "min": 1, "max": demux8Ways, "step": 1, "display": "number",
			}},
		},
		Optional: []domain.Input{
			{Name: "labels", Type: domain.SocketString, Options: map[string]any{"default": defaultDemux8Labels}},
		},
		ReturnTypes: append(types, domain.SocketString, domain.SocketInt),
		ReturnNames: append(names, "selected_label", "selected_index"),
	}
}

func (Demux8) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	in := demux8Inputs{Labels: defaultDemux8Labels}
	if err := decodeInputs(req.Inputs, &in); err != nil {
		return domain.Output{}, err
	}

	labels := demux8Labels(in.Labels)
	idx := routeIndex(in.Route)
	label := labels[idx-1]

	result := make([]any, demux8Ways, demux8Ways+2)
	result[idx-1] = in.Input1
	result = append(result, label, idx)

	return domain.Output{
		Result: result,
		UI:     map[string]any{"text": fmt.Sprintf("route: %d\nselected: %s", idx, label)},
	}, nil
}

// demux8Labels splits a comma list, drops blanks and pads to eight names.
func demux8Labels(s string) []string {
	labels := make([]string, 0, demux8Ways)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			labels = append(labels, part)
		}
	}
	for i := len(labels); i < demux8Ways; i++ {
		labels = append(labels, fmt.Sprintf("out%d", i+1))
	}
	return labels[:demux8Ways]
}

// routeIndex falls back to 1 when the route is not an integer.
func routeIndex(v any) int64 {
	idx := int64(1)
	switch x := native(v).(type) {
	case string:
		if i, err := parseInt(x); err == nil {
			idx = i
		}
	case nil:
	default:
		if f, ok := asFloat(x); ok {
			idx = int64(f)
		}
	}
	return min(max(idx, 1), demux8Ways)
}
