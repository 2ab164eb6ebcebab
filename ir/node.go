// Package ir implements the query intermediate representation (spec.md §3/§4.1, component C2):
// a tagged tree of CTL/LTL formulae and integer expressions, with evaluation, negation-normal-
// form rewriting, LP-backed simplification, a search-heuristic distance function, and a binary
// codec.
//
// The teacher's deep virtual-visitor hierarchy over produce/consume triggers
// (annotation/produce_trigger.go, annotation/consume_trigger.go) is replaced here, per the
// design notes' "deep virtual visitor hierarchy" guidance (§9), by a single Kind-tagged sum type
// and one dispatch function per operation (Evaluate, PushNegation, Simplify, Distance) — the
// same structural move the notes prescribe, applied to a different tagged tree.
package ir

import "fmt"

// Kind tags the variant of a Node.
type Kind uint8

const (
	// Boolean / propositional leaves and connectives.
	BoolLit Kind = iota
	Deadlock
	Fireable
	UpperBound
	CompareConjunction
	And
	Or
	Not

	// Integer expression nodes.
	IntLit
	PlaceExpr
	Sum
	Diff
	Product
	Negate

	// Comparison of two integer expressions, tagged with CmpOp.
	Cmp

	// Bare path operators (no E/A quantifier) for LTL use.
	PathX
	PathF
	PathG
	PathU

	// E/A-quantified specializations for CTL use.
	EX
	AX
	EF
	AF
	EG
	AG
	EU
	AU
)

// CmpOp is the relational operator carried by a Cmp node.
type CmpOp uint8

const (
	Lt CmpOp = iota
	Le
	Eq
	Ne
	Ge
	Gt
)

// String renders the operator using its mathematical symbol, matching the grammar in spec.md §6.
func (op CmpOp) String() string {
	switch op {
	case Lt:
		return "<"
	case Le:
		return "<="
	case Eq:
		return "="
	case Ne:
		return "!="
	case Ge:
		return ">="
	case Gt:
		return ">"
	default:
		return "?"
	}
}

// Result is the tri-valued outcome of evaluating a node against a marking.
type Result uint8

const (
	RUnknown Result = iota
	RTrue
	RFalse
)

// Negate3 returns the tri-valued logical complement of r; RUnknown negates to RUnknown.
func (r Result) Negate3() Result {
	switch r {
	case RTrue:
		return RFalse
	case RFalse:
		return RTrue
	default:
		return RUnknown
	}
}

func (r Result) String() string {
	switch r {
	case RTrue:
		return "TRUE"
	case RFalse:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Bound is one constraint of a CompareConjunction: place's token count must lie in
// [Lower, Upper].
type Bound struct {
	Place          int
	Lower, Upper   uint64
}

// Node is a single tagged element of the query IR. Only the fields relevant to Kind are
// meaningful; the rest are zero. Node is treated as an immutable, shareable DAG once built by
// Analyze (spec.md §3 invariant): mutation after analysis is limited to the cached LastResult
// field, which exists purely as an evaluation-result cache and carries no semantic content of
// its own.
type Node struct {
	Kind Kind

	// BoolLit / IntLit payloads.
	BoolVal bool
	IntVal  int64

	// PlaceExpr: resolved place index (set by Analyze); Name is the original identifier, kept
	// for diagnostics and for Fireable/UpperBound below prior to analysis.
	PlaceIdx int
	Name     string

	// Fireable: transition name (Name) resolved to TransitionIdx by Analyze.
	TransitionIdx int

	// UpperBound: places whose summed/individual bound is being queried; resolved indices are
	// stored in Places (parallel to Names, set by Analyze).
	Names  []string
	Places []int

	// CompareConjunction payload: sorted by Place, per spec.md §3 invariant "lower <= upper".
	Bounds   []Bound
	Negated  bool // true turns the conjunction into its complement (a disjunction of gaps)

	// CmpOp for Cmp nodes.
	Op CmpOp

	// Children, used by: Sum/Diff/Product (2), Negate (1), Cmp (2), And/Or (n-ary),
	// Not (1), path/quantified operators (1 for X/F/G/EX/AX/EF/AF/EG/AG, 2 for U/EU/AU where
	// Children[0] is the "until" left operand and Children[1] the right operand).
	Children []*Node

	// LastResult caches the most recent Evaluate outcome for this node, as spec.md §3 allows
	// ("each node carries optionally its most recent evaluation result").
	LastResult Result
}

// Bool constructs a boolean literal node.
func Bool(v bool) *Node { return &Node{Kind: BoolLit, BoolVal: v} }

// Int constructs an integer literal node.
func Int(v int64) *Node { return &Node{Kind: IntLit, IntVal: v} }

// Place constructs an unresolved place-token-count expression by name; Analyze resolves it.
func Place(name string) *Node { return &Node{Kind: PlaceExpr, Name: name} }

// DeadlockNode constructs the deadlock predicate.
func DeadlockNode() *Node { return &Node{Kind: Deadlock} }

// FireableNode constructs an is_fireable(name) predicate; Analyze resolves name to a
// TransitionIdx.
func FireableNode(name string) *Node { return &Node{Kind: Fireable, Name: name} }

// UpperBoundNode constructs an upper_bound(places...) expression.
func UpperBoundNode(names ...string) *Node { return &Node{Kind: UpperBound, Names: names} }

// BinOp constructs a Sum/Diff/Product/Cmp node from two operands.
func BinOp(k Kind, l, r *Node) *Node { return &Node{Kind: k, Children: []*Node{l, r}} }

// CmpNode constructs a comparison node.
func CmpNode(op CmpOp, l, r *Node) *Node { return &Node{Kind: Cmp, Op: op, Children: []*Node{l, r}} }

// Unary constructs a Negate/Not/unary-path-operator node.
func Unary(k Kind, child *Node) *Node { return &Node{Kind: k, Children: []*Node{child}} }

// Nary constructs an And/Or node over children.
func Nary(k Kind, children ...*Node) *Node { return &Node{Kind: k, Children: append([]*Node(nil), children...)} }

// Until constructs a PathU/EU/AU node.
func Until(k Kind, left, right *Node) *Node { return &Node{Kind: k, Children: []*Node{left, right}} }

// String renders a Node back into the textual grammar of spec.md §6, for diagnostics and traces.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case BoolLit:
		if n.BoolVal {
			return "true"
		}
		return "false"
	case IntLit:
		return fmt.Sprintf("%d", n.IntVal)
	case PlaceExpr:
		return n.Name
	case Deadlock:
		return "deadlock"
	case Fireable:
		return fmt.Sprintf("is_fireable(%s)", n.Name)
	case UpperBound:
		return fmt.Sprintf("upper_bound(%v)", n.Names)
	case CompareConjunction:
		if n.Negated {
			return fmt.Sprintf("!compconj(%v)", n.Bounds)
		}
		return fmt.Sprintf("compconj(%v)", n.Bounds)
	case Sum:
		return fmt.Sprintf("(%s + %s)", n.Children[0], n.Children[1])
	case Diff:
		return fmt.Sprintf("(%s - %s)", n.Children[0], n.Children[1])
	case Product:
		return fmt.Sprintf("(%s * %s)", n.Children[0], n.Children[1])
	case Negate:
		return fmt.Sprintf("(-%s)", n.Children[0])
	case Cmp:
		return fmt.Sprintf("(%s %s %s)", n.Children[0], n.Op, n.Children[1])
	case And:
		return joinChildren(n.Children, " && ")
	case Or:
		return joinChildren(n.Children, " || ")
	case Not:
		return fmt.Sprintf("!%s", n.Children[0])
	case PathX:
		return fmt.Sprintf("X %s", n.Children[0])
	case PathF:
		return fmt.Sprintf("F %s", n.Children[0])
	case PathG:
		return fmt.Sprintf("G %s", n.Children[0])
	case PathU:
		return fmt.Sprintf("(%s U %s)", n.Children[0], n.Children[1])
	case EX:
		return fmt.Sprintf("EX %s", n.Children[0])
	case AX:
		return fmt.Sprintf("AX %s", n.Children[0])
	case EF:
		return fmt.Sprintf("EF %s", n.Children[0])
	case AF:
		return fmt.Sprintf("AF %s", n.Children[0])
	case EG:
		return fmt.Sprintf("EG %s", n.Children[0])
	case AG:
		return fmt.Sprintf("AG %s", n.Children[0])
	case EU:
		return fmt.Sprintf("E(%s U %s)", n.Children[0], n.Children[1])
	case AU:
		return fmt.Sprintf("A(%s U %s)", n.Children[0], n.Children[1])
	default:
		return "<?>"
	}
}

func joinChildren(children []*Node, sep string) string {
	s := "("
	for i, c := range children {
		if i > 0 {
			s += sep
		}
		s += c.String()
	}
	return s + ")"
}

// IsTemporal reports whether n contains any path/quantified temporal operator, used by the NNF
// rewrite catalogue's side conditions (e.g. "EF (φ∨ψ) ≡ EFφ∨EFψ when ψ contains no temporal
// operator").
func (n *Node) IsTemporal() bool {
	switch n.Kind {
	case PathX, PathF, PathG, PathU, EX, AX, EF, AF, EG, AG, EU, AU:
		return true
	}
	for _, c := range n.Children {
		if c.IsTemporal() {
			return true
		}
	}
	return false
}

// IsPropositional reports whether n is built purely from boolean/integer/comparison/deadlock/
// fireable/upper-bound/compare-conjunction nodes with no temporal operator — the condition
// spec.md §4.1 requires of the body ψ in a reachability-class query EF ψ / AG ψ.
func (n *Node) IsPropositional() bool { return !n.IsTemporal() }
