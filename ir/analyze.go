package ir

import "fmt"

// NameTable resolves place and transition names to compiled net indices; *net.Net satisfies it.
type NameTable interface {
	PlaceIndex(name string) (int, bool)
	TransitionIndex(name string) (int, bool)
}

// AnalyzeError reports an unresolved identifier: its name and whether it named a place or a
// transition.
type AnalyzeError struct {
	Name string
	Kind string // "place" or "transition"
}

func (e *AnalyzeError) Error() string {
	return fmt.Sprintf("ir: unresolved %s identifier %q", e.Kind, e.Name)
}

// Analyze resolves every identifier-expression in the tree against table, in place, mutating
// PlaceIdx/TransitionIdx/Places fields. It returns the first unresolved-identifier error found,
// per spec.md §4.1 ("report unresolved names as errors").
func Analyze(n *Node, table NameTable) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case PlaceExpr:
		idx, ok := table.PlaceIndex(n.Name)
		if !ok {
			return &AnalyzeError{Name: n.Name, Kind: "place"}
		}
		n.PlaceIdx = idx
	case Fireable:
		idx, ok := table.TransitionIndex(n.Name)
		if !ok {
			return &AnalyzeError{Name: n.Name, Kind: "transition"}
		}
		n.TransitionIdx = idx
	case UpperBound:
		n.Places = make([]int, len(n.Names))
		for i, name := range n.Names {
			idx, ok := table.PlaceIndex(name)
			if !ok {
				return &AnalyzeError{Name: name, Kind: "place"}
			}
			n.Places[i] = idx
		}
	case CompareConjunction:
		// Bounds already carry resolved place indices by construction (they are built
		// post-analysis by Simplify, not parsed directly); nothing to resolve here.
	}
	for _, c := range n.Children {
		if err := Analyze(c, table); err != nil {
			return err
		}
	}
	return nil
}

// IsReachability reports whether n is EF ψ / AG ψ over a propositional ψ — spec.md §4.1's
// is_reachability(depth) predicate, here with depth folded into the recursive IsPropositional
// check on the body. The bare-path forms F ψ / G ψ are LTL formulas and are not
// reachability-class.
func IsReachability(n *Node) bool {
	switch n.Kind {
	case EF, AG:
		return n.Children[0].IsPropositional()
	}
	return false
}

// PrepareForReachability peels the outer modality of a reachability-class node, per spec.md
// §4.1's prepare_for_reachability(negated): it returns the propositional body and an invariant
// flag that is true for AG/G (whose semantics are "holds iff no counter-example marking is
// reached") and false for EF/F ("holds iff some witness marking is reached").
func PrepareForReachability(n *Node) (body *Node, invariant bool, ok bool) {
	switch n.Kind {
	case EF, PathF:
		return n.Children[0], false, true
	case AG, PathG:
		return n.Children[0], true, true
	default:
		return nil, false, false
	}
}
