package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-tolmachev/stella-type-checker/internal/constraint"
	"github.com/d-tolmachev/stella-type-checker/internal/cst"
	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

func TestUnifyVarWithConcreteType(t *testing.T) {
	fresh := types.NewFresh()
	v := fresh.Var()

	sub, err := constraint.Unify(v, types.Nat, types.Substitution{})
	require.NoError(t, err)
	assert.True(t, v.Substitute(sub).Equals(types.Nat))
}

func TestUnifyOccursCheckFails(t *testing.T) {
	fresh := types.NewFresh()
	v := fresh.Var()
	self := types.NewFun(v, types.Nat)

	_, err := constraint.Unify(v, self, types.Substitution{})
	assert.Error(t, err)
}

func TestUnifyStructuralDecomposition(t *testing.T) {
	fresh := types.NewFresh()
	a := fresh.Var()
	b := fresh.Var()

	left := types.NewFun(a, b)
	right := types.NewFun(types.Nat, types.Bool)

	sub, err := constraint.Unify(left, right, types.Substitution{})
	require.NoError(t, err)
	assert.True(t, a.Substitute(sub).Equals(types.Nat))
	assert.True(t, b.Substitute(sub).Equals(types.Bool))
}

func TestUnifyArityMismatchFails(t *testing.T) {
	left := types.NewTuple(types.Nat, types.Bool)
	right := types.NewTuple(types.Nat)

	_, err := constraint.Unify(left, right, types.Substitution{})
	assert.Error(t, err)
}

func TestStoreSolveReportsMismatchKindForStructuralFailure(t *testing.T) {
	store := constraint.NewStore()
	store.Add(types.Nat, types.Bool, cst.Pos{})

	_, failures := store.Solve()
	require.Len(t, failures, 1)
	assert.Equal(t, constraint.FailureMismatch, failures[0].Kind)
}

func TestStoreSolveReportsOccursKindForInfiniteType(t *testing.T) {
	fresh := types.NewFresh()
	v := fresh.Var()

	store := constraint.NewStore()
	store.Add(v, types.NewFun(v, types.Nat), cst.Pos{})

	_, failures := store.Solve()
	require.Len(t, failures, 1)
	assert.Equal(t, constraint.FailureOccurs, failures[0].Kind)
}

func TestStoreSolveCollectsMultipleFailuresInsteadOfAborting(t *testing.T) {
	store := constraint.NewStore()
	store.Add(types.Nat, types.Bool, cst.Pos{})
	store.Add(types.Unit, types.Bool, cst.Pos{})

	_, failures := store.Solve()
	assert.Len(t, failures, 2)
}

func TestStoreSolveThreadsSubstitutionAcrossConstraints(t *testing.T) {
	fresh := types.NewFresh()
	v := fresh.Var()

	store := constraint.NewStore()
	store.Add(v, types.Nat, cst.Pos{})
	store.Add(v, types.Nat, cst.Pos{})

	sub, failures := store.Solve()
	assert.Empty(t, failures)
	assert.True(t, v.Substitute(sub).Equals(types.Nat))
}
