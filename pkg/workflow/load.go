package workflow

import (
	"fmt"
	"os"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a snapshot from a JSON or YAML document of the form
// {"workflow": {...}, "prompt": {...}}.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Parse(data)
}

// Parse decodes a snapshot document. JSON is accepted as a YAML subset.
func Parse(data []byte) (*Snapshot, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return FromHidden(raw["workflow"], raw["prompt"])
}

// FromHidden builds a snapshot from the host's hidden inputs. extraPNGInfo is
// either the full extra_pnginfo map (with a "workflow" key) or the workflow
// itself. Either argument may be nil.
func FromHidden(extraPNGInfo, prompt any) (*Snapshot, error) {
	snap := &Snapshot{Prompt: Prompt{}}

	if m, ok := extraPNGInfo.(map[string]any); ok {
		if inner, ok := m["workflow"]; ok {
			extraPNGInfo = inner
		} else if m == nil {
			extraPNGInfo = nil
		}
	}
	if m, ok := prompt.(map[string]any); ok && m == nil {
		prompt = nil
	}
	if extraPNGInfo != nil {
		if err := decode(extraPNGInfo, &snap.Workflow); err != nil {
			return nil, fmt.Errorf("invalid workflow: %w", err)
		}
	}
	if prompt != nil {
		if err := decode(prompt, &snap.Prompt); err != nil {
			return nil, fmt.Errorf("invalid prompt: %w", err)
		}
	}
	return snap, nil
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       linkHook,
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var linkType = reflect.TypeOf(Link{})

// linkHook accepts the compact [id, from, from_slot, to, to_slot, type] form
// the editor uses for links.
func linkHook(from, to reflect.Type, data any) (any, error) {
	if to != linkType || from.Kind() != reflect.Slice {
		return data, nil
	}
	items, ok := data.([]any)
	if !ok {
		return data, nil
	}
	if len(items) < 5 {
		return nil, fmt.Errorf("link needs at least 5 elements, got %d", len(items))
	}
	keys := []string{"id", "from", "from_slot", "to", "to_slot", "type"}
	out := make(map[string]any, len(keys))
	for i, k := range keys {
		if i < len(items) {
			out[k] = items[i]
		}
	}
	return out, nil
}
