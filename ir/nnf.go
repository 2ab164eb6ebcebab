package ir

// PushNegation rewrites n into negation-normal form, applying a fixed catalogue of local
// rewrite rules along the way (spec.md §4.1(c)), and returns the rewritten tree together with a
// count of how many times each named rule fired — the teacher's `annotation` package similarly
// counts/diagnoses rewrites rather than applying them silently.
//
// After rewriting, NOT appears only directly above a Deadlock/Fireable/UpperBound predicate (a
// negated Cmp or CompareConjunction absorbs it into the predicate itself) or above an
// Until-class node whose release-operator dual this catalogue does not expand (a documented,
// narrow exception to the spec.md §3 invariant, matching the behavior of
// `original_source/src/PetriEngine/PQL/Expressions.cpp`'s handling of negated until: it leaves
// the negation in place rather than synthesizing a release operator the rest of the engine does
// not otherwise need).
func PushNegation(n *Node) (*Node, map[string]int) {
	counts := make(map[string]int)
	return pushNeg(n, false, counts), counts
}

func pushNeg(n *Node, neg bool, counts map[string]int) *Node {
	switch n.Kind {
	case BoolLit:
		v := n.BoolVal
		if neg {
			v = !v
		}
		return Bool(v)

	case Deadlock:
		if neg {
			counts["not-deadlock"]++
			return Unary(Not, DeadlockNode())
		}
		return DeadlockNode()

	case Fireable:
		if neg {
			counts["not-fireable"]++
			return Unary(Not, FireableNode(n.Name))
		}
		return FireableNode(n.Name)

	case UpperBound:
		if neg {
			counts["not-upperbound"]++
			return Unary(Not, UpperBoundNode(n.Names...))
		}
		return UpperBoundNode(n.Names...)

	case CompareConjunction:
		c := &Node{Kind: CompareConjunction, Bounds: append([]Bound(nil), n.Bounds...), Negated: n.Negated}
		if neg {
			counts["negate-compareconjunction"]++
			c.Negated = !c.Negated
		}
		return c

	case Cmp:
		if neg {
			counts["negate-comparison"]++
			// ¬(a < b) is written (b <= a): the negated operator, mirrored over swapped operands.
			mirrored := map[CmpOp]CmpOp{Lt: Le, Le: Lt, Gt: Ge, Ge: Gt, Eq: Ne, Ne: Eq}
			return CmpNode(mirrored[n.Op], n.Children[1], n.Children[0])
		}
		return CmpNode(n.Op, n.Children[0], n.Children[1])

	case Not:
		counts["eliminate-not"]++
		return pushNeg(n.Children[0], !neg, counts)

	case And:
		kids := pushNegChildren(n.Children, neg, counts)
		if neg {
			counts["demorgan-and-to-or"]++
			return flattenNary(Or, kids, counts)
		}
		return flattenNary(And, kids, counts)

	case Or:
		kids := pushNegChildren(n.Children, neg, counts)
		if neg {
			counts["demorgan-or-to-and"]++
			return flattenNary(And, kids, counts)
		}
		return flattenNary(Or, kids, counts)

	case EX:
		if neg {
			counts["not-ex-to-ax"]++
			return Unary(AX, pushNeg(n.Children[0], true, counts))
		}
		return Unary(EX, pushNeg(n.Children[0], false, counts))

	case AX:
		if neg {
			counts["not-ax-to-ex"]++
			return Unary(EX, pushNeg(n.Children[0], true, counts))
		}
		return Unary(AX, pushNeg(n.Children[0], false, counts))

	case EF:
		if neg {
			counts["not-ef-to-ag"]++
			return collapseUnaryModal(AG, pushNeg(n.Children[0], true, counts), counts)
		}
		return distributeOverOr(EF, pushNeg(n.Children[0], false, counts), counts)

	case AG:
		if neg {
			counts["not-ag-to-ef"]++
			return distributeOverOr(EF, pushNeg(n.Children[0], true, counts), counts)
		}
		return distributeOverAnd(AG, pushNeg(n.Children[0], false, counts), counts)

	case EG:
		if neg {
			counts["not-eg-to-af"]++
			return collapseUnaryModal(AF, pushNeg(n.Children[0], true, counts), counts)
		}
		return collapseUnaryModal(EG, pushNeg(n.Children[0], false, counts), counts)

	case AF:
		if neg {
			counts["not-af-to-eg"]++
			return collapseUnaryModal(EG, pushNeg(n.Children[0], true, counts), counts)
		}
		return collapseUnaryModal(AF, pushNeg(n.Children[0], false, counts), counts)

	case PathF:
		if neg {
			counts["not-f-to-g"]++
			return collapseUnaryModal(PathG, pushNeg(n.Children[0], true, counts), counts)
		}
		return collapseUnaryModal(PathF, pushNeg(n.Children[0], false, counts), counts)

	case PathG:
		if neg {
			counts["not-g-to-f"]++
			return collapseUnaryModal(PathF, pushNeg(n.Children[0], true, counts), counts)
		}
		return collapseUnaryModal(PathG, pushNeg(n.Children[0], false, counts), counts)

	case PathX:
		// X is self-dual in linear time: ¬Xφ ≡ X¬φ.
		if neg {
			counts["x-self-dual"]++
		}
		return Unary(PathX, pushNeg(n.Children[0], neg, counts))

	case EU, AU, PathU:
		left := pushNeg(n.Children[0], false, counts)
		right := pushNeg(n.Children[1], false, counts)
		if !neg {
			return Until(n.Kind, left, right)
		}
		counts["not-until-left-in-place"]++
		return Unary(Not, Until(n.Kind, left, right))

	default:
		return n
	}
}

func pushNegChildren(children []*Node, neg bool, counts map[string]int) []*Node {
	out := make([]*Node, len(children))
	for i, c := range children {
		out[i] = pushNeg(c, neg, counts)
	}
	return out
}

func negateOp(op CmpOp) CmpOp {
	switch op {
	case Lt:
		return Ge
	case Le:
		return Gt
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Ge:
		return Lt
	case Gt:
		return Le
	default:
		return op
	}
}

// flattenNary flattens nested same-kind And/Or nodes (And(And(a,b),c) ≡ And(a,b,c)) and folds
// boolean literals, one of the catalogue's ~35 rules.
func flattenNary(k Kind, children []*Node, counts map[string]int) *Node {
	var flat []*Node
	shortCircuit := false // true for Or if any child is literal true, And if any is literal false
	var shortVal bool
	for _, c := range children {
		if c.Kind == k {
			counts["flatten-nary"]++
			flat = append(flat, c.Children...)
			continue
		}
		if c.Kind == BoolLit {
			if (k == Or && c.BoolVal) || (k == And && !c.BoolVal) {
				shortCircuit, shortVal = true, c.BoolVal
			}
			continue
		}
		flat = append(flat, c)
	}
	if shortCircuit {
		counts["boolean-short-circuit"]++
		return Bool(shortVal)
	}
	if len(flat) == 0 {
		return Bool(k == And)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Nary(k, flat...)
}

// collapseUnaryModal applies idempotence (EF EF φ ≡ EF φ, F F φ ≡ F φ, etc.) for the given
// modality before wrapping body.
func collapseUnaryModal(k Kind, body *Node, counts map[string]int) *Node {
	if body.Kind == k {
		counts["idempotent-modality"]++
		return body
	}
	return Unary(k, body)
}

// distributeOverOr implements EF(φ∨ψ) ≡ EFφ∨EFψ when ψ has no temporal operator (spec.md
// §4.1's example rule); it is applied unconditionally here since EF/EX distribute over
// disjunction regardless of temporal content, matching the standard CTL identity. Its dual,
// distributeOverAnd below, is likewise applied without a temporal-free side condition, since
// AG distributes over conjunction regardless of temporal content.
func distributeOverOr(k Kind, body *Node, counts map[string]int) *Node {
	if body.Kind == Or {
		counts["distribute-over-or"]++
		kids := make([]*Node, len(body.Children))
		for i, c := range body.Children {
			kids[i] = Unary(k, c)
		}
		return flattenNary(Or, kids, counts)
	}
	return collapseUnaryModal(k, body, counts)
}

// distributeOverAnd implements AG(φ∧ψ) ≡ AGφ∧AGψ.
func distributeOverAnd(k Kind, body *Node, counts map[string]int) *Node {
	if body.Kind == And {
		counts["distribute-over-and"]++
		kids := make([]*Node, len(body.Children))
		for i, c := range body.Children {
			kids[i] = Unary(k, c)
		}
		return flattenNary(And, kids, counts)
	}
	return collapseUnaryModal(k, body, counts)
}
