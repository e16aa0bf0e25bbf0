package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/agavesunset/agave/pkg/domain"
)

// Type defines the contract for socket value validation.
type Type interface {
	// Name returns the socket type name (e.g., "INT", "FLOAT").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return string(domain.SocketString) }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return string(domain.SocketInt) }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return fmt.Errorf("expected int, got %s", v)
		}
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return string(domain.SocketFloat) }

func (t *FloatType) Validate(value any) error {
	switch v := value.(type) {
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case json.Number:
		if _, err := v.Float64(); err != nil {
			return fmt.Errorf("expected float, got %s", v)
		}
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return string(domain.SocketBoolean) }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// AnyType accepts every value, including nil.
type AnyType struct {
	name string
}

func (t *AnyType) Name() string { return t.name }

func (t *AnyType) Validate(any) error { return nil }

// ComboType validates drop-down selections.
type ComboType struct {
	choices []string
}

func (t *ComboType) Name() string { return string(domain.SocketCombo) }

func (t *ComboType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected one of %v, got %T", t.choices, value)
	}
	if !slices.Contains(t.choices, s) {
		return fmt.Errorf("value %q not in %v", s, t.choices)
	}
	return nil
}

// BoundedType wraps a numeric type with the widget's min/max limits.
type BoundedType struct {
	inner    Type
	min, max *float64
}

func (t *BoundedType) Name() string { return t.inner.Name() }

func (t *BoundedType) Validate(value any) error {
	if err := t.inner.Validate(value); err != nil {
		return err
	}
	f, ok := toFloat(value)
	if !ok {
		return nil
	}
	if t.min != nil && f < *t.min {
		return fmt.Errorf("value %v smaller than min of %v", value, *t.min)
	}
	if t.max != nil && f > *t.max {
		return fmt.Errorf("value %v bigger than max of %v", value, *t.max)
	}
	return nil
}

// --- Constructors ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Any creates a validator that accepts everything and reports name.
func Any(name string) Type { return &AnyType{name: name} }

// Combo creates a validator for one of choices.
func Combo(choices ...string) Type { return &ComboType{choices: choices} }

// Bounded limits a numeric type. Nil bounds are open.
func Bounded(inner Type, min, max *float64) Type {
	if min == nil && max == nil {
		return inner
	}
	return &BoundedType{inner: inner, min: min, max: max}
}

// ForInput derives the validator for a declared input.
func ForInput(in domain.Input) Type {
	var t Type
	switch in.Type {
	case domain.SocketInt:
		t = Int()
	case domain.SocketFloat:
		t = Float()
	case domain.SocketString:
		return String()
	case domain.SocketBoolean:
		return Bool()
	case domain.SocketCombo:
		return Combo(in.Choices...)
	default:
		// Wildcards and tensor sockets carry host objects.
		return Any(string(in.Type))
	}
	return Bounded(t, option(in, "min"), option(in, "max"))
}

func option(in domain.Input, key string) *float64 {
	v, ok := in.Options[key]
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
