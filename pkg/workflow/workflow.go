package workflow

import (
	"fmt"

	"github.com/agavesunset/agave/pkg/expr"
)

// NameProperty is the node property that overrides a node's type for
// search-and-replace style lookups.
const NameProperty = "Node name for S&R"

// NodeID identifies a node. Hosts send it as a number in the workflow and as
// a string key in the prompt, so it is normalized to text.
type NodeID string

// Node is the editor-side description of a node in the workflow.
type Node struct {
	ID         NodeID         `json:"id" yaml:"id" mapstructure:"id"`
	Type       string         `json:"type" yaml:"type" mapstructure:"type"`
	Title      string         `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty" mapstructure:"properties"`
}

// Name returns the name used to address the node from an expression.
func (n Node) Name() string {
	if v, ok := n.Properties[NameProperty]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return n.Type
}

// Link connects an output slot of one node to an input slot of another.
type Link struct {
	ID       int64  `json:"id" yaml:"id" mapstructure:"id"`
	From     NodeID `json:"from" yaml:"from" mapstructure:"from"`
	FromSlot int    `json:"from_slot" yaml:"from_slot" mapstructure:"from_slot"`
	To       NodeID `json:"to" yaml:"to" mapstructure:"to"`
	ToSlot   int    `json:"to_slot" yaml:"to_slot" mapstructure:"to_slot"`
	Type     string `json:"type" yaml:"type" mapstructure:"type"`
}

// Workflow is the editor graph carried in the extra_pnginfo hidden input.
type Workflow struct {
	Nodes []Node `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
	Links []Link `json:"links,omitempty" yaml:"links,omitempty" mapstructure:"links"`
}

// PromptNode is the execution-side view of a node: its class and the
// effective values of its inputs. A linked input holds [sourceID, slot].
type PromptNode struct {
	ClassType string         `json:"class_type" yaml:"class_type" mapstructure:"class_type"`
	Inputs    map[string]any `json:"inputs" yaml:"inputs" mapstructure:"inputs"`
}

// Prompt maps node ids to their execution-side view.
type Prompt map[NodeID]PromptNode

// Snapshot pairs the workflow with the prompt being executed. It resolves
// `Node.field` references for the expression evaluator.
type Snapshot struct {
	Workflow Workflow `json:"workflow" yaml:"workflow" mapstructure:"workflow"`
	Prompt   Prompt   `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
}

var _ expr.FieldResolver = (*Snapshot)(nil)

// Find returns the id of the first node whose name or title matches name.
func (s *Snapshot) Find(name string) (NodeID, bool) {
	if s == nil {
		return "", false
	}
	for _, n := range s.Workflow.Nodes {
		if n.Name() == name || n.Title == name {
			return n.ID, true
		}
	}
	return "", false
}

// Resolve returns the literal value of a widget on a sibling node.
func (s *Snapshot) Resolve(node, field string) (any, error) {
	id, ok := s.Find(node)
	if !ok {
		return nil, &expr.Error{Kind: expr.ErrNameNotFound, Pos: -1, Msg: fmt.Sprintf("Node not found: %s.%s", node, field)}
	}

	value, ok := s.Prompt[id].Inputs[field]
	if !ok {
		return nil, &expr.Error{Kind: expr.ErrNameNotFound, Pos: -1, Msg: fmt.Sprintf("Widget not found: %s.%s", node, field)}
	}
	if IsLink(value) {
		return nil, &expr.Error{
			Kind: expr.ErrLinkedValue,
			Pos:  -1,
			Msg:  "Converted widgets not supported via named reference; use inputs instead.",
		}
	}
	return value, nil
}

// Links returns the workflow links.
func (s *Snapshot) Links() []Link {
	if s == nil {
		return nil
	}
	return s.Workflow.Links
}

// IsLink reports whether an input value is a connection rather than a literal.
func IsLink(v any) bool {
	switch v.(type) {
	case []any, []string, []int, []float64:
		return true
	}
	return false
}
