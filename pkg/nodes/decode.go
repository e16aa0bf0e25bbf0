package nodes

import (
	"encoding/json"
	"fmt"

	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/mitchellh/mapstructure"
)

// decodeInputs copies request inputs into a typed struct tagged with `input`.
// Scalars are converted weakly, the way the host coerces widget values.
func decodeInputs(inputs map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "input",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(native(inputs)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// native replaces json.Number values with int64 or float64, recursively.
func native(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = native(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = native(item)
		}
		return out
	}
	return v
}

// Composite turns a wire-level latent or image descriptor into the value the
// evaluator exposes width/height for. Other values pass through.
func Composite(v any) any {
	m, ok := native(v).(map[string]any)
	if !ok {
		return v
	}
	switch {
	case m["samples"] != nil:
		var l expr.Latent
		if err := mapstructure.WeakDecode(m, &l); err == nil {
			return l
		}
	case m["shape"] != nil:
		var img expr.Image
		if err := mapstructure.WeakDecode(m, &img); err == nil {
			return img
		}
	}
	return v
}

// unwrapSingleton returns the only element of a one-element list.
func unwrapSingleton(v any) any {
	if l, ok := v.([]any); ok && len(l) == 1 {
		return l[0]
	}
	return v
}
