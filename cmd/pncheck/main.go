// pncheck is a minimal example driver: it builds the dining-philosophers net from spec.md §8
// scenario 1 and a couple of companion queries, wires them to engine.Run, and prints the
// spec.md §6 result lines. It exists to exercise net.Builder + engine.Run end to end; a real
// net/query file parser and full CLI option surface are out of scope (spec.md §1) and are left to
// the external driver this package stands in for, the same way the teacher's cmd/nilaway is a
// thin driver over the go.uber.org/nilaway library.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pncheck/pncheck/config"
	"github.com/pncheck/pncheck/engine"
	"github.com/pncheck/pncheck/ir"
	"github.com/pncheck/pncheck/net"
)

var (
	_configFile   = flag.String("config", "", "path to a YAML config.Options override file")
	_computeTrace = flag.Bool("trace", false, "emit a <trace> witness/counter-example document per query")
	_noStubborn   = flag.Bool("no-stubborn", false, "disable stubborn-set reduction")
)

func main() {
	flag.Parse()

	opts := config.DefaultOptions()
	if *_configFile != "" {
		loaded, err := config.LoadOptionsFile(*_configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pncheck: loading config: %v\n", err)
			os.Exit(1)
		}
		opts = loaded
	}
	if *_computeTrace {
		opts.ComputeTrace = true
	}
	if *_noStubborn {
		opts.UseStubborn = false
	}

	n, err := philosophers(3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pncheck: building net: %v\n", err)
		os.Exit(1)
	}

	queries, err := sampleQueries(n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pncheck: analyzing queries: %v\n", err)
		os.Exit(1)
	}

	for _, r := range engine.Run(n, queries, opts) {
		fmt.Println(r.String())
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "pncheck: %s: %v\n", r.ID, r.Err)
		}
		if r.Trace != "" {
			fmt.Println(r.Trace)
		}
	}
}

// philosophers builds the dining-philosophers(n) net of spec.md §8 scenario 1.
func philosophers(n int) (*net.Net, error) {
	b := net.NewBuilder()
	for i := 0; i < n; i++ {
		b.AddPlace(fmt.Sprintf("f%d", i), 1)
		b.AddPlace(fmt.Sprintf("held%d", i), 0)
	}
	for i := 0; i < n; i++ {
		left, right := i, (i+1)%n
		takeLeft := fmt.Sprintf("take-left-%d", i)
		takeRight := fmt.Sprintf("take-right-%d", i)
		release := fmt.Sprintf("release-%d", i)

		b.AddTransition(takeLeft)
		b.AddTransition(takeRight)
		b.AddTransition(release)

		b.AddInputArc(fmt.Sprintf("f%d", left), takeLeft, false, 1)
		b.AddOutputArc(takeLeft, fmt.Sprintf("held%d", i), 1)

		b.AddInputArc(fmt.Sprintf("f%d", right), takeRight, false, 1)
		b.AddInputArc(fmt.Sprintf("held%d", i), takeRight, false, 1)
		b.AddOutputArc(takeRight, fmt.Sprintf("held%d", i), 2)

		b.AddInputArc(fmt.Sprintf("held%d", i), release, false, 2)
		b.AddOutputArc(release, fmt.Sprintf("f%d", left), 1)
		b.AddOutputArc(release, fmt.Sprintf("f%d", right), 1)
	}
	return b.Compile()
}

// sampleQueries builds a couple of illustrative queries against n: deadlock-freedom (spec.md §8
// scenario 1, reachability-class) and a CTL liveness check (scenario 5's AG EF initial).
func sampleQueries(n *net.Net) ([]engine.Query, error) {
	efDeadlock := ir.Unary(ir.EF, ir.DeadlockNode())

	m0 := n.InitialMarking()
	var conjuncts []*ir.Node
	for i := 0; i < n.NumPlaces(); i++ {
		c := ir.CmpNode(ir.Eq, ir.Place(n.PlaceName(i)), ir.Int(int64(m0[i])))
		if err := ir.Analyze(c, n); err != nil {
			return nil, err
		}
		conjuncts = append(conjuncts, c)
	}
	livenessQuery := ir.Unary(ir.AG, ir.Unary(ir.EF, ir.Nary(ir.And, conjuncts...)))

	return []engine.Query{
		{ID: "0", Formula: efDeadlock},
		{ID: "1", Formula: livenessQuery},
	}, nil
}
