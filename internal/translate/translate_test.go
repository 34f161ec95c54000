package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-tolmachev/stella-type-checker/internal/cst"
	"github.com/d-tolmachev/stella-type-checker/internal/translate"
	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

func decodeType(t *testing.T, doc string) *cst.Node {
	t.Helper()
	prog, err := cst.Decode([]byte("decls:\n  - kind: Wrapper\n    type:\n" + indent(doc)))
	require.NoError(t, err)
	return prog.Decls[0].Child("type")
}

func indent(s string) string {
	// naive re-indent helper for inline fixture construction
	out := ""
	for _, line := range splitLines(s) {
		out += "      " + line + "\n"
	}
	return out
}

func splitLines(s string) []string {
	var lines []string
	cur := ""
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func TestTranslateAtomicTypes(t *testing.T) {
	fresh := types.NewFresh()
	assert.True(t, translate.Type(decodeType(t, "kind: TypeNat"), fresh).Equals(types.Nat))
	assert.True(t, translate.Type(decodeType(t, "kind: TypeBool"), fresh).Equals(types.Bool))
	assert.True(t, translate.Type(decodeType(t, "kind: TypeUnit"), fresh).Equals(types.Unit))
}

func TestTranslateCurriesMultiParamFun(t *testing.T) {
	doc := `kind: TypeFun
params:
  - kind: TypeNat
  - kind: TypeBool
ret:
  kind: TypeUnit`
	got := translate.Type(decodeType(t, doc), types.NewFresh())
	want := types.NewFun(types.Nat, types.NewFun(types.Bool, types.Unit))
	assert.True(t, got.Equals(want))
}

func TestTranslateRecord(t *testing.T) {
	doc := `kind: TypeRecord
fields:
  - label: x
    type:
      kind: TypeNat
  - label: y
    type:
      kind: TypeBool`
	got := translate.Type(decodeType(t, doc), types.NewFresh())
	want := types.NewRecord([]string{"x", "y"}, []types.Type{types.Nat, types.Bool})
	assert.True(t, got.Equals(want))
}

func TestTranslateNullaryVariantLabelDefaultsToUnit(t *testing.T) {
	doc := `kind: TypeVariant
labels:
  - label: A
  - label: B
    type:
      kind: TypeNat`
	got := translate.Type(decodeType(t, doc), types.NewFresh()).(*types.VariantType)
	require.Len(t, got.Types, 2)
	assert.True(t, got.Types[0].Equals(types.Unit))
	assert.True(t, got.Types[1].Equals(types.Nat))
}

func TestTranslateAutoProducesFreshTypeVar(t *testing.T) {
	fresh := types.NewFresh()
	got := translate.Type(decodeType(t, "kind: TypeAuto"), fresh)
	_, ok := got.(*types.TypeVar)
	assert.True(t, ok, "expected TypeAuto to translate to a fresh TypeVar")
}

func TestTranslateUnrecognizedKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		translate.Type(decodeType(t, "kind: TypeDoesNotExist"), types.NewFresh())
	})
}
