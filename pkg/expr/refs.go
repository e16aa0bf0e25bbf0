package expr

// Reference is a `Node.field` attribute access found in an expression.
type Reference struct {
	Node  string
	Field string
}

// References returns the attribute references of a parsed expression in
// source order, without duplicates. width and height accesses on a, b or c
// are bindings, not references, and are skipped.
func References(n Node) []Reference {
	var refs []Reference
	seen := make(map[Reference]bool)
	walk(n, func(n Node) {
		attr, ok := n.(*Attribute)
		if !ok {
			return
		}
		base, ok := attr.Value.(*Name)
		if !ok {
			return
		}
		if isVariable(base.ID) && (attr.Attr == "width" || attr.Attr == "height") {
			return
		}
		r := Reference{Node: base.ID, Field: attr.Attr}
		if !seen[r] {
			seen[r] = true
			refs = append(refs, r)
		}
	})
	return refs
}

func isVariable(id string) bool {
	return id == "a" || id == "b" || id == "c"
}

func walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	switch x := n.(type) {
	case *BinaryOp:
		walk(x.Left, visit)
		walk(x.Right, visit)
	case *UnaryOp:
		walk(x.Operand, visit)
	case *BoolOp:
		for _, v := range x.Values {
			walk(v, visit)
		}
	case *Compare:
		walk(x.Left, visit)
		for _, c := range x.Comparators {
			walk(c, visit)
		}
	case *Attribute:
		walk(x.Value, visit)
	case *Call:
		walk(x.Func, visit)
		for _, a := range x.Args {
			walk(a, visit)
		}
	case *Subscript:
		walk(x.Value, visit)
		walk(x.Index, visit)
	case *IfExp:
		walk(x.Test, visit)
		walk(x.Body, visit)
		walk(x.Else, visit)
	}
}
