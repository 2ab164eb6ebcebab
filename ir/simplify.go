package ir

import "github.com/pncheck/pncheck/net"

// LPOracle decides, independent of any particular marking, whether a CompareConjunction's bound
// box is structurally satisfiable or tautological — spec.md §4.1(d)'s "LP-based feasibility
// oracle". Structural net reduction and LP-based query simplification are themselves external
// collaborators (spec.md §1); LPOracle is the black-box interface the engine consumes them
// through, per §1's "consumed as a black-box predicate 'this query can be shown trivially true/
// false'".
type LPOracle interface {
	// Feasible reports RTrue if the (possibly Negated) bound box is a structural tautology,
	// RFalse if it is structurally unsatisfiable, or RUnknown if the oracle cannot decide.
	Feasible(bounds []Bound, negated bool) Result
}

// SimplifyContext bundles the optional inputs Simplify may use to fold a subtree without
// exploring the state space: a concrete marking against which Fireable (with View) and
// CompareConjunction predicates are directly decided (spec.md §8 scenario 6: "starting marking p=5 ... after
// simplify, the IR collapses to FALSE without exploration"), and/or an LPOracle for
// marking-independent structural reasoning over compare-conjunctions.
type SimplifyContext struct {
	Marking net.Marking
	View    NetView
	Oracle  LPOracle
}

// Simplify drives constant-folding and LP-based collapsing bottom-up, per spec.md §4.1(e). It
// returns a new tree; the input is left untouched (Node trees are immutable shared DAGs once
// built, per spec.md §3).
func Simplify(n *Node, ctx SimplifyContext) *Node {
	switch n.Kind {
	case BoolLit, IntLit, Deadlock, PlaceExpr:
		return n

	case Fireable:
		if ctx.Marking != nil && ctx.View != nil {
			return Bool(ctx.View.Enabled(ctx.Marking, n.TransitionIdx))
		}
		return n

	case CompareConjunction:
		if ctx.Marking != nil {
			return Bool(evalCompareConjunction(n, ctx.Marking) == RTrue)
		}
		if ctx.Oracle != nil {
			switch ctx.Oracle.Feasible(n.Bounds, n.Negated) {
			case RTrue:
				return Bool(true)
			case RFalse:
				return Bool(false)
			}
		}
		return n

	case Sum, Diff, Product, Negate:
		if isPlaceFree(n) {
			return Int(EvalInt(n, nil))
		}
		kids := simplifyChildren(n.Children, ctx)
		return &Node{Kind: n.Kind, Children: kids}

	case Cmp:
		l := simplifyExpr(n.Children[0], ctx)
		r := simplifyExpr(n.Children[1], ctx)
		if isPlaceFree(l) && isPlaceFree(r) {
			return Bool(evalCmp(n.Op, EvalInt(l, nil), EvalInt(r, nil)))
		}
		return CmpNode(n.Op, l, r)

	case And, Or:
		kids := simplifyChildren(n.Children, ctx)
		counts := make(map[string]int)
		return flattenNary(n.Kind, kids, counts)

	case Not:
		c := Simplify(n.Children[0], ctx)
		if c.Kind == BoolLit {
			return Bool(!c.BoolVal)
		}
		return Unary(Not, c)

	case UpperBound:
		return n

	default:
		// Temporal operators: simplify the body/bodies but do not attempt to resolve the
		// modality itself — that is the CTL/LTL engines' job.
		kids := simplifyChildren(n.Children, ctx)
		cp := &Node{Kind: n.Kind, Op: n.Op, Name: n.Name, Names: n.Names, Children: kids}
		return cp
	}
}

func simplifyExpr(n *Node, ctx SimplifyContext) *Node { return Simplify(n, ctx) }

func simplifyChildren(children []*Node, ctx SimplifyContext) []*Node {
	out := make([]*Node, len(children))
	for i, c := range children {
		out[i] = Simplify(c, ctx)
	}
	return out
}

// isPlaceFree reports whether the integer expression n contains no PlaceExpr, i.e. it can be
// constant-folded without reference to any marking (spec.md §4.1(d)).
func isPlaceFree(n *Node) bool {
	switch n.Kind {
	case IntLit:
		return true
	case PlaceExpr:
		return false
	case Sum, Diff, Product:
		return isPlaceFree(n.Children[0]) && isPlaceFree(n.Children[1])
	case Negate:
		return isPlaceFree(n.Children[0])
	default:
		return false
	}
}
