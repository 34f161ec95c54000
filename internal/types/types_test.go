package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

func TestAtomicEquality(t *testing.T) {
	assert.True(t, types.Bool.Equals(types.Bool))
	assert.False(t, types.Bool.Equals(types.Nat))
	assert.True(t, types.Unit.Equals(types.Unit))
}

func TestSubtypingDisabledFallsBackToEquals(t *testing.T) {
	fn := types.NewFun(types.Nat, types.Bool)
	assert.True(t, fn.IsSubtypeOf(types.NewFun(types.Nat, types.Bool), false))
	assert.False(t, fn.IsSubtypeOf(types.Top, false))
}

func TestEverythingIsSubtypeOfTop(t *testing.T) {
	for _, ty := range []types.Type{
		types.Bool, types.Nat, types.Unit,
		types.NewFun(types.Nat, types.Bool),
		types.NewTuple(types.Nat, types.Bool),
		types.NewList(types.Nat),
		types.NewRef(types.Nat),
	} {
		assert.True(t, ty.IsSubtypeOf(types.Top, true), "%s should be <= Top", ty)
	}
	assert.True(t, types.Top.IsSubtypeOf(types.Top, true))
}

func TestBottomIsSubtypeOfEverythingWhenEnabled(t *testing.T) {
	assert.True(t, types.Bot.IsSubtypeOf(types.Bool, true))
	assert.True(t, types.Bot.IsSubtypeOf(types.NewFun(types.Nat, types.Bool), true))
	assert.False(t, types.Bot.IsSubtypeOf(types.Bool, false))
}

func TestFunctionContravariantParameter(t *testing.T) {
	narrow := types.NewRecord([]string{"x"}, []types.Type{types.Nat})
	wide := types.NewRecord([]string{"x", "y"}, []types.Type{types.Nat, types.Bool})

	// a function accepting the narrower record is a subtype of one accepting
	// the wider record, since it can be used wherever the wider one is
	// expected (contravariance in the parameter position).
	wideParam := types.NewFun(wide, types.Nat)
	narrowParam := types.NewFun(narrow, types.Nat)
	assert.True(t, narrowParam.IsSubtypeOf(wideParam, true))
	assert.False(t, wideParam.IsSubtypeOf(narrowParam, true))
}

func TestRecordWidthAndDepthSubtyping(t *testing.T) {
	wide := types.NewRecord([]string{"x", "y"}, []types.Type{types.Nat, types.Bool})
	narrow := types.NewRecord([]string{"x"}, []types.Type{types.Nat})
	assert.True(t, wide.IsSubtypeOf(narrow, true))
	assert.False(t, narrow.IsSubtypeOf(wide, true))
}

func TestRecordEqualityIsLabelOrderIndependent(t *testing.T) {
	a := types.NewRecord([]string{"x", "y"}, []types.Type{types.Nat, types.Bool})
	b := types.NewRecord([]string{"y", "x"}, []types.Type{types.Bool, types.Nat})
	assert.True(t, a.Equals(b))
}

func TestVariantSubtypingIsDualToRecord(t *testing.T) {
	narrow := types.NewVariant([]string{"A"}, []types.Type{types.Nat})
	wide := types.NewVariant([]string{"A", "B"}, []types.Type{types.Nat, types.Bool})
	// a variant offering fewer alternatives is a subtype of one offering more.
	assert.True(t, narrow.IsSubtypeOf(wide, true))
	assert.False(t, wide.IsSubtypeOf(narrow, true))
}

func TestSumIsCovariantInBothSides(t *testing.T) {
	small := types.NewSum(types.Nat, types.Nat)
	big := types.NewSum(types.Top, types.Top)
	assert.True(t, small.IsSubtypeOf(big, true))
	assert.False(t, big.IsSubtypeOf(small, true))
}

func TestRefIsDepthCovariant(t *testing.T) {
	narrow := types.NewRef(types.Nat)
	wide := types.NewRef(types.Top)
	assert.True(t, narrow.IsSubtypeOf(wide, true))
}

func TestForallSubstituteIsCaptureAvoiding(t *testing.T) {
	// [X](X) -> X  substituted with X -> Nat outside should not touch the
	// bound X inside the body.
	forall := types.NewForall([]string{"X"}, types.NewFun(types.NewGeneric("X"), types.NewGeneric("X")))
	sub := types.Substitution{"X": types.Nat}
	result := forall.Substitute(sub)

	got, ok := result.(*types.ForallType)
	require.True(t, ok)
	assert.True(t, got.Body.Equals(types.NewFun(types.NewGeneric("X"), types.NewGeneric("X"))))
}

func TestGenericSubstituteOutsideForall(t *testing.T) {
	g := types.NewGeneric("X")
	sub := types.Substitution{"X": types.Nat}
	assert.True(t, g.Substitute(sub).Equals(types.Nat))
}

func TestOccursCheck(t *testing.T) {
	fresh := types.NewFresh()
	v := fresh.Var()
	nested := types.NewFun(v, types.Nat)
	assert.True(t, types.Occurs(v, nested))
	assert.False(t, types.Occurs(v, types.NewFun(types.Nat, types.Bool)))
}

func TestFreshVarsAreDistinctAndMonotonic(t *testing.T) {
	fresh := types.NewFresh()
	a := fresh.Var()
	b := fresh.Var()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID)
}

func TestFirstUnresolvedDetectsFreeGeneric(t *testing.T) {
	body := types.NewFun(types.NewGeneric("X"), types.NewGeneric("Y"))
	sub := types.Substitution{"X": types.Nat}
	g := types.FirstUnresolved(body, sub)
	require.NotNil(t, g)
	assert.Equal(t, "Y", g.Name)

	sub["Y"] = types.Bool
	assert.Nil(t, types.FirstUnresolved(body, sub))
}
