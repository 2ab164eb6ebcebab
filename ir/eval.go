package ir

import "github.com/pncheck/pncheck/net"

// NetView is the subset of *net.Net that evaluation needs: token counts come directly from the
// Marking, but deadlock and fireability predicates need the net's enabledness rule.
type NetView interface {
	Enabled(m net.Marking, t int) bool
	Deadlocked(m net.Marking) bool
}

// EvalInt evaluates an integer-valued node (IntLit/PlaceExpr/Sum/Diff/Product/Negate) against m.
// It panics if n is not an integer expression; callers should only invoke it on children known
// (by construction or prior Analyze) to be integer-typed.
func EvalInt(n *Node, m net.Marking) int64 {
	switch n.Kind {
	case IntLit:
		return n.IntVal
	case PlaceExpr:
		return int64(m[n.PlaceIdx])
	case Sum:
		return EvalInt(n.Children[0], m) + EvalInt(n.Children[1], m)
	case Diff:
		return EvalInt(n.Children[0], m) - EvalInt(n.Children[1], m)
	case Product:
		return EvalInt(n.Children[0], m) * EvalInt(n.Children[1], m)
	case Negate:
		return -EvalInt(n.Children[0], m)
	default:
		panic("ir: EvalInt called on non-integer node kind")
	}
}

// evalCmp applies op to the two sides of a Cmp node.
func evalCmp(op CmpOp, l, r int64) bool {
	switch op {
	case Lt:
		return l < r
	case Le:
		return l <= r
	case Eq:
		return l == r
	case Ne:
		return l != r
	case Ge:
		return l >= r
	case Gt:
		return l > r
	default:
		return false
	}
}

func boolResult(b bool) Result {
	if b {
		return RTrue
	}
	return RFalse
}

// Evaluate performs bottom-up tri-valued boolean evaluation of n against marking m under view,
// caching the outcome on each visited node's LastResult field (spec.md §3/§4.1). Path-quantified
// nodes return RUnknown unless their body can short-circuit the quantifier, per the rules in
// spec.md §4.1 (e.g. EF φ is RTrue if φ holds now; AG φ is RFalse if φ fails now).
func Evaluate(n *Node, m net.Marking, view NetView) Result {
	r := evaluate(n, m, view)
	n.LastResult = r
	return r
}

func evaluate(n *Node, m net.Marking, view NetView) Result {
	switch n.Kind {
	case BoolLit:
		return boolResult(n.BoolVal)
	case Deadlock:
		return boolResult(view.Deadlocked(m))
	case Fireable:
		return boolResult(view.Enabled(m, n.TransitionIdx))
	case Cmp:
		l := EvalInt(n.Children[0], m)
		r := EvalInt(n.Children[1], m)
		return boolResult(evalCmp(n.Op, l, r))
	case UpperBound:
		// upper_bound is a structural LP-class predicate that the engine cannot decide by
		// direct evaluation of a single marking; it is only ever resolved by Simplify's LP
		// oracle. Direct evaluation conservatively reports RUnknown.
		return RUnknown
	case CompareConjunction:
		return evalCompareConjunction(n, m)
	case And:
		res := RTrue
		for _, c := range n.Children {
			cr := Evaluate(c, m, view)
			if cr == RFalse {
				return RFalse
			}
			if cr == RUnknown {
				res = RUnknown
			}
		}
		return res
	case Or:
		res := RFalse
		for _, c := range n.Children {
			cr := Evaluate(c, m, view)
			if cr == RTrue {
				return RTrue
			}
			if cr == RUnknown {
				res = RUnknown
			}
		}
		return res
	case Not:
		return Evaluate(n.Children[0], m, view).Negate3()
	case EF, PathF:
		if Evaluate(n.Children[0], m, view) == RTrue {
			return RTrue
		}
		return RUnknown
	case AG, PathG:
		if Evaluate(n.Children[0], m, view) == RFalse {
			return RFalse
		}
		return RUnknown
	case EX, AX, EG, AF, EU, AU, PathX, PathU:
		// These require successor exploration to resolve even partially and are the
		// responsibility of the CTL/LTL engines (C8/C9, C6/C7), not direct evaluation.
		return RUnknown
	default:
		return RUnknown
	}
}

func evalCompareConjunction(n *Node, m net.Marking) Result {
	allHold := true
	for _, b := range n.Bounds {
		v := m[b.Place]
		if v < b.Lower || v > b.Upper {
			allHold = false
			break
		}
	}
	if n.Negated {
		allHold = !allHold
	}
	return boolResult(allHold)
}
