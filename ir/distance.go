package ir

import "github.com/pncheck/pncheck/net"

// Distance returns a non-negative heuristic that is 0 iff n holds in m, used by best-first
// searches (spec.md §4.1(f)). negated flips conjunction/disjunction composition, matching the
// context-negation rule spec.md specifies ("composed as sum over conjunction and min over
// disjunction, with context negation swapping conj/disj").
func Distance(n *Node, m net.Marking, view NetView, negated bool) uint64 {
	switch n.Kind {
	case BoolLit:
		if n.BoolVal != negated {
			return 0
		}
		return 1

	case Deadlock:
		holds := view.Deadlocked(m)
		if holds != negated {
			return 0
		}
		return 1

	case Fireable:
		holds := view.Enabled(m, n.TransitionIdx)
		if holds != negated {
			return 0
		}
		return 1

	case Cmp:
		l := EvalInt(n.Children[0], m)
		r := EvalInt(n.Children[1], m)
		op := n.Op
		if negated {
			op = negateOp(op)
		}
		return distanceCmp(op, l, r)

	case CompareConjunction:
		return distanceCompareConjunction(n, m, negated)

	case And:
		if negated {
			return minDistance(n.Children, m, view, negated)
		}
		return sumDistance(n.Children, m, view, negated)

	case Or:
		if negated {
			return sumDistance(n.Children, m, view, negated)
		}
		return minDistance(n.Children, m, view, negated)

	case Not:
		return Distance(n.Children[0], m, view, !negated)

	default:
		// Temporal operators are resolved by the search engines; as a heuristic fallback when
		// a distance is still requested (e.g. a best-first CTL/LTL expansion order), treat an
		// unresolved modality's distance as that of its immediate body.
		if len(n.Children) > 0 {
			return Distance(n.Children[0], m, view, negated)
		}
		return 0
	}
}

func sumDistance(children []*Node, m net.Marking, view NetView, negated bool) uint64 {
	var sum uint64
	for _, c := range children {
		sum += Distance(c, m, view, negated)
	}
	return sum
}

func minDistance(children []*Node, m net.Marking, view NetView, negated bool) uint64 {
	var best uint64
	for i, c := range children {
		d := Distance(c, m, view, negated)
		if i == 0 || d < best {
			best = d
		}
	}
	return best
}

// distanceCmp implements the per-comparator distance rules from spec.md §4.1(f), e.g.
// dist_{<}(v1,v2) = max(0, v1-v2+1).
func distanceCmp(op CmpOp, l, r int64) uint64 {
	diff := func(v int64) uint64 {
		if v < 0 {
			return 0
		}
		return uint64(v)
	}
	switch op {
	case Lt:
		return diff(l - r + 1)
	case Le:
		return diff(l - r)
	case Gt:
		return diff(r - l + 1)
	case Ge:
		return diff(r - l)
	case Eq:
		if l == r {
			return 0
		}
		d := l - r
		if d < 0 {
			d = -d
		}
		return uint64(d)
	case Ne:
		if l != r {
			return 0
		}
		return 1
	default:
		return 0
	}
}

func distanceCompareConjunction(n *Node, m net.Marking, negated bool) uint64 {
	var sum uint64
	for _, b := range n.Bounds {
		v := int64(m[b.Place])
		switch {
		case v < int64(b.Lower):
			sum += distanceCmp(Ge, v, int64(b.Lower))
		case v > int64(b.Upper):
			sum += distanceCmp(Le, v, int64(b.Upper))
		}
	}
	// effectiveNegated combines the conjunction's own Negated flag with the evaluation
	// context's negation (context negation swaps conj/disj per spec.md §4.1(f)).
	effectiveNegated := negated != n.Negated
	if !effectiveNegated {
		return sum
	}
	if sum == 0 {
		return 1
	}
	return 0
}
