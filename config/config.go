// Package config holds engine-tunable parameters: the per-run Options a caller selects (spec.md
// §6) and a handful of non-CLI-surfaced constants used internally by iterative algorithms,
// following the teacher's convention of keeping development-only constants in their own file
// (config/const.go) separate from the typed, caller-facing options struct.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Algorithm selects which verification procedure the driver dispatches a CTL or LTL query to.
type Algorithm uint8

const (
	// CTLCertainZero runs the certain-zero fixed-point algorithm over the dependency graph.
	CTLCertainZero Algorithm = iota
	// CTLLocal runs the local (work-list) fixed-point algorithm over the dependency graph.
	CTLLocal
	// LTLNestedDFS runs the nested depth-first search for an accepting lasso.
	LTLNestedDFS
	// LTLTarjan runs the Tarjan SCC search for an accepting lasso.
	LTLTarjan
)

// SearchStrategy names an exploration order. It is carried in Options and loaded from config
// files, but no search reads it: reach explores breadth-first, the CTL worklist is first-in
// first-out, and the LTL searches are depth-first.
type SearchStrategy uint8

const (
	// DFS names depth-first order.
	DFS SearchStrategy = iota
	// BFS names breadth-first order.
	BFS
	// BestFirst names best-first order by the IR's heuristic Distance function.
	BestFirst
)

// Options are the per-run choices spec.md §6 lists as belonging to the (out-of-scope) CLI:
// the engine itself must accept them as plain data regardless of how a caller obtained them.
type Options struct {
	Algorithm      Algorithm
	SearchStrategy SearchStrategy
	UseStubborn    bool
	ComputeTrace   bool
	// KBound caps the sum of tokens across all places in any discovered marking; zero means
	// unbounded. Exceeding it yields a terminal overflow result for the query (spec.md §7).
	KBound uint64
	// TimeoutSeconds is the wall-clock budget for a single query; zero means no timeout. The
	// reachability and LTL searches poll it cooperatively at the head of each search loop
	// (spec.md §5); the CTL fixed point does not poll it.
	TimeoutSeconds float64
	// Seed is a tie-breaking seed for heuristic (best-first) orderings; like SearchStrategy, no
	// search reads it.
	Seed int64
}

// DefaultOptions returns the engine's out-of-the-box choices.
func DefaultOptions() Options {
	return Options{
		Algorithm:      CTLCertainZero,
		SearchStrategy: DFS,
		UseStubborn:    true,
		ComputeTrace:   false,
		KBound:         0,
		TimeoutSeconds: 0,
		Seed:           0,
	}
}

// LoadOptionsFile reads YAML-encoded Options overrides from path, starting from
// DefaultOptions(). This is an ambient configuration convenience — the CLI/option surface
// itself remains out of scope per spec.md §1 — the same way the teacher's config package exists
// independently of any particular driver.
func LoadOptionsFile(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}
	return opts, nil
}
