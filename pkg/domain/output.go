package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Blocker stops execution of everything downstream of the output that holds
// it. An empty message blocks silently.
type Blocker struct {
	Message string
}

const blockerKey = "$blocker"

// MarshalJSON encodes the blocker as {"$blocker": message}.
func (b *Blocker) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{blockerKey: b.Message})
}

// Output is the result of a node execution: one value per return socket and
// an optional UI payload.
type Output struct {
	Result []any          `json:"result"`
	UI     map[string]any `json:"ui,omitempty"`
}

// UnmarshalJSON decodes an Output, reviving blockers.
func (o *Output) UnmarshalJSON(data []byte) error {
	var raw struct {
		Result []json.RawMessage `json:"result"`
		UI     map[string]any    `json:"ui"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.UI = raw.UI
	o.Result = make([]any, len(raw.Result))
	for i, item := range raw.Result {
		var probe map[string]json.RawMessage
		if json.Unmarshal(item, &probe) == nil && len(probe) == 1 {
			if msg, ok := probe[blockerKey]; ok {
				b := &Blocker{}
				if err := json.Unmarshal(msg, &b.Message); err != nil {
					return err
				}
				o.Result[i] = b
				continue
			}
		}
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		o.Result[i] = v
	}
	return nil
}

// Blocked reports whether result slot i carries a blocker.
func (o Output) Blocked(i int) bool {
	if i < 0 || i >= len(o.Result) {
		return false
	}
	_, ok := o.Result[i].(*Blocker)
	return ok
}

// Coerce converts result values to the declared return types. It is applied
// to results read back from a cache, where numbers lose their Go type.
func (o Output) Coerce(types []SocketType) (Output, error) {
	if len(o.Result) != len(types) {
		return o, fmt.Errorf("result has %d values, node declares %d", len(o.Result), len(types))
	}
	out := Output{Result: make([]any, len(o.Result)), UI: o.UI}
	for i, v := range o.Result {
		c, err := coerce(v, types[i])
		if err != nil {
			return o, fmt.Errorf("result %d: %w", i, err)
		}
		out.Result[i] = c
	}
	return out, nil
}

func coerce(v any, t SocketType) (any, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.(*Blocker); ok {
		return v, nil
	}
	switch t {
	case SocketInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
		}
		f, err := number(v)
		if err != nil {
			return nil, err
		}
		return int64(math.Trunc(f)), nil
	case SocketFloat:
		return number(v)
	case SocketBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(b))
		}
		f, err := number(v)
		return f != 0, err
	case SocketString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		return n.Float64()
	}
	return v, nil
}

func number(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	}
	return 0, fmt.Errorf("cannot convert %T to a number", v)
}
