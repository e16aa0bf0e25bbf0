package nodes

import (
	"context"
	"fmt"

	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/agavesunset/agave/pkg/workflow"
)

const categoryAS = "AgaveSunset/AS"

// Math evaluates a restricted arithmetic expression over a, b and c.
type Math struct{}

type mathInputs struct {
	Expression string `input:"expression"`
	A          any    `input:"a"`
	B          any    `input:"b"`
	C          any    `input:"c"`
}

func (Math) Spec() domain.Spec {
	words := expr.AutocompleteWords()
	return domain.Spec{
		Class:       "MathAgaveSunset",
		DisplayName: "Math_AS",
		Category:    categoryAS,
		Function:    "evaluate",
		Description: "Evaluates a math expression over a, b and c. Supports a.width/a.height and NodeName.widget references.",
		Required: []domain.Input{
			{Name: "expression", Type: domain.SocketString, Options: map[string]any{
				"multiline":      true,
				"dynamicPrompts": false,
				"pysssss.autocomplete": map[string]any{
					"words":     words,
					"separator": "",
				},
			}},
		},
		Optional: []domain.Input{
			{Name: "a", Type: domain.SocketAny},
			{Name: "b", Type: domain.SocketAny},
			{Name: "c", Type: domain.SocketAny},
		},
		Hidden: []domain.Input{
			{Name: "extra_pnginfo", Type: domain.HiddenExtraPNGInfo},
			{Name: "prompt", Type: domain.HiddenPrompt},
		},
		ReturnTypes: []domain.SocketType{domain.SocketInt, domain.SocketFloat},
		OutputNode:  true,
	}
}

func (Math) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	var in mathInputs
	if err := decodeInputs(req.Inputs, &in); err != nil {
		return domain.Output{}, err
	}

	snap, err := workflow.FromHidden(req.Hidden.ExtraPNGInfo, req.Hidden.Prompt)
	if err != nil {
		return domain.Output{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	bindings := expr.Bindings{
		"a": Composite(in.A),
		"b": Composite(in.B),
		"c": Composite(in.C),
	}
	r, err := expr.Evaluate(in.Expression, bindings, expr.WithResolver(snap))
	if err != nil {
		return domain.Output{}, err
	}

	return domain.Output{
		Result: []any{r.Int(), r.Float()},
		UI:     map[string]any{"value": []any{r.Value.Interface()}},
	}, nil
}

// IsVolatile reports whether the expression draws random numbers.
func (Math) IsVolatile(req domain.Request) bool {
	s, _ := req.Inputs["expression"].(string)
	return expr.IsVolatile(s)
}
