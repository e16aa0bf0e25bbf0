package domain

import "context"

// SocketType is the type tag of an input or output socket.
type SocketType string

const (
	SocketInt     SocketType = "INT"
	SocketFloat   SocketType = "FLOAT"
	SocketString  SocketType = "STRING"
	SocketBoolean SocketType = "BOOLEAN"
	// SocketAny accepts a connection of any type.
	SocketAny    SocketType = "*"
	SocketLatent SocketType = "LATENT"
	SocketImage  SocketType = "IMAGE"
	// SocketCombo marks a drop-down widget; its values live in Input.Choices.
	SocketCombo SocketType = "COMBO"
)

// Hidden input tags understood by the host.
const (
	HiddenPrompt       = "PROMPT"
	HiddenExtraPNGInfo = "EXTRA_PNGINFO"
	HiddenUniqueID     = "UNIQUE_ID"
)

// Input declares one input socket or widget of a node.
type Input struct {
	Name string     `json:"name" yaml:"name"`
	Type SocketType `json:"type" yaml:"type"`
	// Choices lists the allowed values of a COMBO input.
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	// Options holds widget settings such as default, min, max, step, multiline.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Default returns the widget default, if any.
func (i Input) Default() (any, bool) {
	v, ok := i.Options["default"]
	return v, ok
}

// Spec is the static declaration of a node class.
type Spec struct {
	Class       string       `json:"class" yaml:"class"`
	DisplayName string       `json:"display_name" yaml:"display_name"`
	Category    string       `json:"category" yaml:"category"`
	Function    string       `json:"function" yaml:"function"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Required    []Input      `json:"required" yaml:"required"`
	Optional    []Input      `json:"optional,omitempty" yaml:"optional,omitempty"`
	Hidden      []Input      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	ReturnTypes []SocketType `json:"return_types" yaml:"return_types"`
	ReturnNames []string     `json:"return_names,omitempty" yaml:"return_names,omitempty"`
	OutputNode  bool         `json:"output_node,omitempty" yaml:"output_node,omitempty"`
}

// Inputs returns required followed by optional inputs.
func (s Spec) Inputs() []Input {
	out := make([]Input, 0, len(s.Required)+len(s.Optional))
	out = append(out, s.Required...)
	return append(out, s.Optional...)
}

// Request carries the values of one node invocation.
type Request struct {
	Inputs map[string]any `json:"inputs"`
	Hidden Hidden         `json:"hidden,omitempty"`
}

// Hidden holds the execution context the host passes to nodes that ask for it.
type Hidden struct {
	Prompt       map[string]any `json:"prompt,omitempty" mapstructure:"prompt"`
	ExtraPNGInfo map[string]any `json:"extra_pnginfo,omitempty" mapstructure:"extra_pnginfo"`
	UniqueID     string         `json:"unique_id,omitempty" mapstructure:"unique_id"`
}

// Node is a node class the host can execute.
type Node interface {
	Spec() Spec
	Execute(ctx context.Context, req Request) (Output, error)
}

// VolatileNode is implemented by nodes whose output may change between runs
// with identical inputs. Their results are never cached.
type VolatileNode interface {
	Node
	IsVolatile(req Request) bool
}
