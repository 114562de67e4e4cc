package expr

import "sort"

// Refs lists the names an expression references, split by position.
// A name can appear in both sets ("f(f)" references f as a function and as
// a value).
type Refs struct {
	// Values are names referenced in value position (bare identifiers).
	Values []string

	// Funcs are names referenced in function position (call targets).
	Funcs []string
}

// References walks a node and collects every referenced name.
// The returned lists are sorted and deduplicated, so load-time reference
// checking reports each missing name once.
func References(node Node) Refs {
	values := make(map[string]bool)
	funcs := make(map[string]bool)
	collect(node, values, funcs)

	return Refs{
		Values: sortedKeys(values),
		Funcs:  sortedKeys(funcs),
	}
}

func collect(node Node, values, funcs map[string]bool) {
	switch n := node.(type) {
	case *Ident:
		values[n.Name] = true
	case *Call:
		funcs[n.Func] = true
		for _, arg := range n.Args {
			collect(arg, values, funcs)
		}
	case *Assert:
		collect(n.Left, values, funcs)
	case *IntLit, *FloatLit:
		// Literals reference nothing.
	}
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
