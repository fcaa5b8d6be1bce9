package rast

// RenameDriver renames every occurrence of identifier "from" to "to" when
// it appears as a driver (lvalue) within items: the LHS of a continuous
// assignment, or the LHS of a procedural assignment inside an always/
// initial block. It never inspects RHS subtrees (spec §4.4, §9
// "Identifier renaming correctness").
func RenameDriver(items []Node, from, to string) {
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Assign:
			renameInExpr(v.LHS, from, to)
		case *ProcAssign:
			renameInExpr(v.LHS, from, to)
		case *AlwaysBlock:
			for _, s := range v.Body {
				walk(s)
			}
		case *InitialBlock:
			for _, s := range v.Body {
				walk(s)
			}
		}
	}
	for _, it := range items {
		walk(it)
	}
}

// RenameLoad renames every occurrence of identifier "from" to "to" when it
// appears as a load (rvalue): the RHS of a continuous or procedural
// assignment, or a reference in an always-block sensitivity list. It never
// inspects LHS subtrees.
func RenameLoad(items []Node, from, to string) {
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Assign:
			renameInExpr(v.RHS, from, to)
		case *ProcAssign:
			renameInExpr(v.RHS, from, to)
		case *AlwaysBlock:
			for _, s := range v.Sensitivity {
				renameInExpr(s, from, to)
			}
			for _, s := range v.Body {
				walk(s)
			}
		case *InitialBlock:
			for _, s := range v.Body {
				walk(s)
			}
		}
	}
	for _, it := range items {
		walk(it)
	}
}

// renameInExpr rewrites every Identifier named "from" reachable from e,
// descending through part-selects and concatenations. Callers already
// confine e to one lvalue or rvalue subtree, so this never crosses into
// a different statement's opposite role.
func renameInExpr(e Expression, from, to string) {
	switch v := e.(type) {
	case *Identifier:
		if v.Name == from {
			v.Name = to
		}
	case *Partselect:
		renameInExpr(v.Target, from, to)
	case *Concat:
		for _, it := range v.Items {
			renameInExpr(it, from, to)
		}
	}
}

// RenamePortArgActuals renames "from" to "to" wherever it appears as an
// actual expression in an instance's port-argument list. Port-argument
// actuals are neither a pure driver nor a pure load in isolation (their
// role depends on the formal's direction at the child module), so callers
// pick this helper explicitly rather than routing through RenameDriver/
// RenameLoad.
func RenamePortArgActuals(instances []*Instance, from, to string) {
	for _, inst := range instances {
		for _, arg := range inst.Ports {
			renameInExpr(arg.Actual, from, to)
		}
	}
}
