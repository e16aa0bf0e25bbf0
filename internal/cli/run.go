package cli

import (
	"context"
	"fmt"
	"io"
	"maps"

	"github.com/agavesunset/agave"
	"github.com/agavesunset/agave/pkg/domain"
	"github.com/agavesunset/agave/pkg/expr"
	"github.com/agavesunset/agave/pkg/workflow"
)

// RunOptions configures one node execution from the command line.
type RunOptions struct {
	Class string
	// InputsPath is a JSON/YAML object of input values; "-" reads stdin.
	InputsPath string
	// Set holds key=value overrides applied after InputsPath.
	Set []string
	// SnapshotPath is a {"workflow", "prompt"} document passed as hidden inputs.
	SnapshotPath string
	UniqueID     string
	JSON         bool
}

// RunNode executes one node class and writes its output to w.
func RunNode(ctx context.Context, host *agave.Host, opts RunOptions, stdin io.Reader, w io.Writer) error {
	node, err := host.Registry().Lookup(opts.Class)
	if err != nil {
		return err
	}

	req := domain.Request{Inputs: map[string]any{}}
	if opts.InputsPath != "" {
		doc, err := ReadDocument(opts.InputsPath, stdin)
		if err != nil {
			return err
		}
		req.Inputs = doc
	}
	set, err := ParseAssignments(opts.Set)
	if err != nil {
		return err
	}
	maps.Copy(req.Inputs, set)

	if opts.SnapshotPath != "" {
		doc, err := ReadDocument(opts.SnapshotPath, stdin)
		if err != nil {
			return err
		}
		req.Hidden = HiddenFromSnapshot(doc)
	}
	req.Hidden.UniqueID = opts.UniqueID

	out, err := host.Execute(ctx, opts.Class, req)
	if err != nil {
		return err
	}
	if opts.JSON {
		return WriteJSON(w, out)
	}
	_, err = io.WriteString(w, FormatOutput(node.Spec(), out))
	return err
}

// EvalOptions configures a direct expression evaluation.
type EvalOptions struct {
	Expression   string
	Set          []string
	SnapshotPath string
	JSON         bool
}

// EvalResult is the JSON form of an evaluation.
type EvalResult struct {
	Int   int64   `json:"int"`
	Float float64 `json:"float"`
	Value any     `json:"value"`
}

// Evaluate runs an expression against key=value bindings and writes the result to w.
func Evaluate(ctx context.Context, host *agave.Host, opts EvalOptions, stdin io.Reader, w io.Writer) error {
	bindings, err := ParseAssignments(opts.Set)
	if err != nil {
		return err
	}

	var resolver expr.FieldResolver
	if opts.SnapshotPath != "" {
		doc, err := ReadDocument(opts.SnapshotPath, stdin)
		if err != nil {
			return err
		}
		snap, err := workflow.FromHidden(doc["workflow"], doc["prompt"])
		if err != nil {
			return err
		}
		resolver = snap
	}

	res, err := host.Evaluate(ctx, opts.Expression, expr.Bindings(bindings), resolver)
	if err != nil {
		return err
	}
	if opts.JSON {
		return WriteJSON(w, EvalResult{Int: res.Int(), Float: res.Float(), Value: res.Value.Interface()})
	}
	_, err = fmt.Fprintf(w, "%s\n", res)
	return err
}
