package nodes

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflowJSON = `{
  "workflow": {
    "nodes": [{"id": 3, "type": "KSampler", "title": "Main sampler", "properties": {"Node name for S&R": "KSampler"}}],
    "links": []
  },
  "prompt": {"3": {"class_type": "KSampler", "inputs": {"steps": 20, "cfg": 7.5}}}
}`

func TestMath_Execute(t *testing.T) {
	out := run(t, Math{}, map[string]any{"expression": "a * b + 1", "a": 2, "b": json.Number("3")})
	assert.Equal(t, []any{int64(7), 7.0}, out.Result)
	assert.Equal(t, []any{int64(7)}, out.UI["value"])

	out = run(t, Math{}, map[string]any{"expression": "a / 2", "a": 5})
	assert.Equal(t, []any{int64(2), 2.5}, out.Result)
	assert.Equal(t, []any{2.5}, out.UI["value"])
}

func TestMath_Composites(t *testing.T) {
	out := run(t, Math{}, map[string]any{
		"expression": "a.width + b.height",
		"a":          map[string]any{"samples": []any{1, 4, 64, 96}},
		"b":          map[string]any{"shape": []any{1, 768, 1024, 3}},
	})
	assert.Equal(t, []any{int64(768 + 768), 1536.0}, out.Result)
}

func TestMath_SiblingFields(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(workflowJSON), &doc))

	req := domain.Request{
		Inputs: map[string]any{"expression": "KSampler.steps * 2 + a", "a": 0.5},
		Hidden: domain.Hidden{
			ExtraPNGInfo: map[string]any{"workflow": doc["workflow"]},
			Prompt:       doc["prompt"].(map[string]any),
		},
	}
	out, err := Math{}.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 40.5, out.Result[1])

	req.Inputs["expression"] = "Missing.steps"
	_, err = Math{}.Execute(context.Background(), req)
	assert.ErrorIs(t, err, expr.ErrNameNotFound)
}

func TestMath_Errors(t *testing.T) {
	tests := map[string]error{
		"a +":           expr.ErrSyntax,
		"d * 2":         expr.ErrNameNotFound,
		"a @ b":         expr.ErrUnsupportedOperator,
		"a if b else c": expr.ErrUnsupportedNode,
		"a / 0":         expr.ErrDivisionByZero,
	}
	for src, want := range tests {
		_, err := Math{}.Execute(context.Background(), domain.Request{Inputs: map[string]any{
			"expression": src, "a": 1, "b": 2, "c": 3,
		}})
		assert.ErrorIs(t, err, want, src)
	}
}

func TestMath_Volatile(t *testing.T) {
	m := Math{}
	assert.True(t, m.IsVolatile(domain.Request{Inputs: map[string]any{"expression": "randomint(1, 6)"}}))
	assert.False(t, m.IsVolatile(domain.Request{Inputs: map[string]any{"expression": "a + 1"}}))
}

func TestMath_Spec(t *testing.T) {
	s := Math{}.Spec()
	assert.Equal(t, "MathAgaveSunset", s.Class)
	assert.Equal(t, "Math_AS", s.DisplayName)
	assert.Equal(t, []domain.SocketType{domain.SocketInt, domain.SocketFloat}, s.ReturnTypes)

	auto := s.Required[0].Options["pysssss.autocomplete"].(map[string]any)
	assert.NotEmpty(t, auto["words"])
	assert.Equal(t, "", auto["separator"])
}
