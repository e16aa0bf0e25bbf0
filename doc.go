/*
Package agave hosts the AgaveSunset node classes outside the node editor.

The centerpiece is a restricted arithmetic evaluator (package expr) that the
Math node exposes to workflows: expressions over the inputs a, b and c, the
width/height of latent and image inputs, and widget values of sibling nodes
referenced as NodeName.widget. The remaining nodes route, compare, convert
and display values.

# Concept

A Host executes node classes the way the node-graph host does. Each call
fills in widget defaults, validates inputs against the declared socket types,
and runs the node. With a ResultCache configured, non-volatile nodes are
fingerprinted by class and inputs and their outputs reused. Lifecycle hooks
report every execution, which is how metrics are collected.

# Usage

	host := agave.New(
		agave.WithCache(memory.NewCache()),
		agave.WithLogger(logging.New(slog.LevelInfo)),
	)

	out, err := host.Execute(ctx, "MathAgaveSunset", domain.Request{
		Inputs: map[string]any{"expression": "a * 2 + b", "a": 3, "b": 0.5},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out.Result) // [6 6.5]

The same host backs the command line (cmd/agave), an HTTP API and an MCP
server for agents.
*/
package agave
