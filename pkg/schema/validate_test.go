package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/agavesunset/agave/pkg/domain"
)

func testSpec() domain.Spec {
	return domain.Spec{
		Class: "Test",
		Required: []domain.Input{
			{Name: "expression", Type: domain.SocketString},
			{Name: "select", Type: domain.SocketInt, Options: map[string]any{"default": 0, "min": 0, "max": 9}},
			{Name: "mode", Type: domain.SocketCombo, Choices: []string{"add", "sub"}},
		},
		Optional: []domain.Input{
			{Name: "a", Type: domain.SocketAny},
			{Name: "clamp", Type: domain.SocketBoolean},
			{Name: "ratio", Type: domain.SocketFloat, Options: map[string]any{"min": -1.0, "max": 1.0}},
		},
	}
}

func TestValidateRequest_Success(t *testing.T) {
	inputs := map[string]any{
		"expression": "a + 1",
		"select":     json.Number("3"),
		"mode":       "add",
		"a":          map[string]any{"samples": []int{1, 4, 8, 8}},
		"ratio":      0.5,
	}
	if err := ValidateRequest(testSpec(), inputs); err != nil {
		t.Errorf("ValidateRequest() error = %v, want nil", err)
	}
}

func TestValidateRequest_NilOptional(t *testing.T) {
	inputs := map[string]any{"expression": "", "select": 0, "mode": "sub", "clamp": nil}
	if err := ValidateRequest(testSpec(), inputs); err != nil {
		t.Errorf("ValidateRequest() error = %v, want nil", err)
	}
}

func TestValidateRequest_Failures(t *testing.T) {
	inputs := map[string]any{
		"select": 12,
		"mode":   "mul",
		"clamp":  "yes",
		"ratio":  -2,
	}

	err := ValidateRequest(testSpec(), inputs)
	if err == nil {
		t.Fatal("ValidateRequest() should fail")
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error should match domain.ErrInvalidInput")
	}

	errs := ValidationErrors(err)
	if len(errs) != 5 {
		t.Fatalf("ValidateRequest() = %d errors, want 5: %v", len(errs), err)
	}

	keys := make([]string, len(errs))
	for i, e := range errs {
		var ve *ValidationError
		if !errors.As(e, &ve) {
			t.Fatalf("error should be *ValidationError, got %T", e)
		}
		keys[i] = ve.Key
	}
	want := []string{"expression", "mode", "select", "clamp", "ratio"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("error %d key = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestIntType(t *testing.T) {
	tests := []struct {
		value   any
		wantErr bool
	}{
		{3, false},
		{int64(3), false},
		{3.0, false},
		{3.5, true},
		{json.Number("4"), false},
		{json.Number("4.5"), true},
		{"3", true},
	}
	for _, tt := range tests {
		err := Int().Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Int().Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestForInput(t *testing.T) {
	tests := []struct {
		in   domain.Input
		name string
	}{
		{domain.Input{Type: domain.SocketInt}, "INT"},
		{domain.Input{Type: domain.SocketFloat, Options: map[string]any{"min": 0}}, "FLOAT"},
		{domain.Input{Type: domain.SocketLatent}, "LATENT"},
		{domain.Input{Type: domain.SocketAny}, "*"},
		{domain.Input{Type: domain.SocketCombo, Choices: []string{"x"}}, "COMBO"},
	}
	for _, tt := range tests {
		if got := ForInput(tt.in).Name(); got != tt.name {
			t.Errorf("ForInput(%s).Name() = %q, want %q", tt.in.Type, got, tt.name)
		}
	}
}
