/*
Package expr implements the restricted arithmetic evaluator behind the Math node.

An expression is parsed into a small syntax tree and reduced against a set of
variable bindings. Only the operators and functions listed in the package's
whitelist tables can run; any other name, attribute or construct fails the
evaluation instead of falling back to a general lookup.

# Usage

	res, err := expr.Evaluate("max(a, b) * 2", expr.Bindings{"a": 3, "b": 4.5})
	if err != nil {
		return err
	}
	fmt.Println(res.Int(), res.Float()) // 9 9

Attribute references such as `a.width` read the dimensions of composite
bindings (Latent, Image). Other dotted references (`KSampler.seed`) are sent
to an injected FieldResolver, usually a workflow snapshot.
*/
package expr
