package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agavesunset/agave/pkg/domain"
)

// Show renders any value as text in the UI and passes it through. It runs on
// every execution.
type Show struct{}

func (Show) Spec() domain.Spec {
	return domain.Spec{
		Class:       "Show_AgaveSunset",
		DisplayName: "Show_AS",
		Category:    categoryAS,
		Function:    "notify",
		Required: []domain.Input{
			{Name: "anything", Type: domain.SocketAny, Options: map[string]any{"forceInput": true}},
		},
		Hidden: []domain.Input{
			{Name: "unique_id", Type: domain.HiddenUniqueID},
			{Name: "extra_pnginfo", Type: domain.HiddenExtraPNGInfo},
		},
		ReturnTypes: []domain.SocketType{domain.SocketAny},
		ReturnNames: []string{"output"},
		OutputNode:  true,
	}
}

func (Show) Execute(_ context.Context, req domain.Request) (domain.Output, error) {
	v := req.Inputs["anything"]
	return domain.Output{
		Result: []any{v},
		UI:     map[string]any{"text": []any{stringify(native(v))}},
	}, nil
}

func (Show) IsVolatile(domain.Request) bool { return true }

// stringify pretty-prints containers as JSON and everything else with str.
func stringify(v any) string {
	switch v.(type) {
	case []any, map[string]any:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Sprintf("<unprintable %s: %v>", typeName(v), err)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
	return str(v)
}
