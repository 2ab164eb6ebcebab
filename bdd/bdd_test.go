package bdd_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pncheck/pncheck/bdd"
)

func TestEvalCombinators(t *testing.T) {
	v := bdd.MapValuation{true, false, true}

	require.True(t, bdd.Var(0).Eval(v))
	require.False(t, bdd.Var(1).Eval(v))
	require.True(t, bdd.Not{X: bdd.Var(1)}.Eval(v))
	require.True(t, bdd.And{bdd.Var(0), bdd.Var(2)}.Eval(v))
	require.False(t, bdd.And{bdd.Var(0), bdd.Var(1)}.Eval(v))
	require.True(t, bdd.Or{bdd.Var(1), bdd.Var(2)}.Eval(v))
	require.False(t, bdd.Or{bdd.Var(1)}.Eval(v))
}

func TestIdentityElements(t *testing.T) {
	v := bdd.MapValuation{}
	require.True(t, bdd.And(nil).Eval(v))
	require.False(t, bdd.Or(nil).Eval(v))
}

func TestConst(t *testing.T) {
	v := bdd.MapValuation{}
	require.True(t, bdd.Const(true).Eval(v))
	require.False(t, bdd.Const(false).Eval(v))
}

func TestOutOfRangeValueIsFalse(t *testing.T) {
	v := bdd.MapValuation{true}
	require.False(t, v.Value(5))
	require.False(t, v.Value(-1))
}
