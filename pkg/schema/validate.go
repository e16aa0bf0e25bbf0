package schema

import (
	"sort"

	"github.com/agavesunset/agave/pkg/domain"
)

// Schema is a map of input names to their expected types.
// Example: {"expression": String(), "select": Bounded(Int(), &zero, &nine)}
type Schema map[string]Type

// FromInputs builds a schema for the given declared inputs.
func FromInputs(inputs []domain.Input) Schema {
	s := make(Schema, len(inputs))
	for _, in := range inputs {
		s[in.Name] = ForInput(in)
	}
	return s
}

// Validate checks that every field of the schema is present in data and
// conforms to its type. Errors are reported in field order.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error
	for _, fieldName := range sortedKeys(schema) {
		value, exists := data[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		if err := schema[fieldName].Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateOptional checks only the fields of the schema that are present and
// non-nil in data.
func ValidateOptional(schema Schema, data map[string]any) error {
	var errs []error
	for _, fieldName := range sortedKeys(schema) {
		value, exists := data[fieldName]
		if !exists || value == nil {
			continue
		}
		if err := schema[fieldName].Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateRequest checks a node request against the node's declared inputs.
func ValidateRequest(spec domain.Spec, inputs map[string]any) error {
	var errs []error
	if err := Validate(FromInputs(spec.Required), inputs); err != nil {
		errs = append(errs, ValidationErrors(err)...)
	}
	if err := ValidateOptional(FromInputs(spec.Optional), inputs); err != nil {
		errs = append(errs, ValidationErrors(err)...)
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func sortedKeys(s Schema) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
