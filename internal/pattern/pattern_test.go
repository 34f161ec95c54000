package pattern_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-tolmachev/stella-type-checker/internal/cst"
	"github.com/d-tolmachev/stella-type-checker/internal/pattern"
	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

func decodePatterns(t *testing.T, yamlList string) []*cst.Node {
	t.Helper()
	doc := "decls:\n  - kind: Wrapper\n    patterns:\n" + reindent(yamlList, "      ")
	prog, err := cst.Decode([]byte(doc))
	require.NoError(t, err)
	return prog.Decls[0].Children("patterns")
}

func reindent(s, prefix string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.Trim(s, "\n"), "\n") {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func TestBoolExhaustivenessNeedsBothArms(t *testing.T) {
	onlyTrue := decodePatterns(t, `- kind: PatternTrue`)
	assert.False(t, pattern.Covers(onlyTrue, types.Bool))

	both := decodePatterns(t, `- kind: PatternTrue
- kind: PatternFalse`)
	assert.True(t, pattern.Covers(both, types.Bool))

	justVar := decodePatterns(t, `- kind: PatternVar`)
	assert.True(t, pattern.Covers(justVar, types.Bool))
}

func TestNatExhaustivenessNeedsZeroAndSucc(t *testing.T) {
	incomplete := decodePatterns(t, `- kind: PatternInt`)
	assert.False(t, pattern.Covers(incomplete, types.Nat))

	complete := decodePatterns(t, `- kind: PatternInt
- kind: PatternSucc
  pattern:
    kind: PatternVar`)
	assert.True(t, pattern.Covers(complete, types.Nat))
}

func TestVariantExhaustivenessNeedsAllLabels(t *testing.T) {
	ty := types.NewVariant([]string{"A", "B"}, []types.Type{types.Nat, types.Bool})

	onlyA := decodePatterns(t, `- kind: PatternVariant
  label: A`)
	assert.False(t, pattern.Covers(onlyA, ty))

	both := decodePatterns(t, `- kind: PatternVariant
  label: A
- kind: PatternVariant
  label: B`)
	assert.True(t, pattern.Covers(both, ty))
}

func TestRefIsAlwaysCovered(t *testing.T) {
	empty := decodePatterns(t, `- kind: PatternUnit`)
	assert.True(t, pattern.Covers(empty, types.NewRef(types.Nat)))
}

func TestWellFormedRejectsShapeMismatch(t *testing.T) {
	pats := decodePatterns(t, `- kind: PatternTrue`)
	assert.True(t, pattern.IsWellFormed(pats[0], types.Bool))
	assert.False(t, pattern.IsWellFormed(pats[0], types.Nat))
}

func TestWellFormedTupleRecursesIntoElements(t *testing.T) {
	pats := decodePatterns(t, `- kind: PatternTuple
  elems:
    - kind: PatternTrue
    - kind: PatternVar`)
	ty := types.NewTuple(types.Bool, types.Nat)
	assert.True(t, pattern.IsWellFormed(pats[0], ty))

	badTy := types.NewTuple(types.Nat, types.Nat)
	assert.False(t, pattern.IsWellFormed(pats[0], badTy))
}

func TestAscriptionAndParenAreStrippedBeforeDispatch(t *testing.T) {
	pats := decodePatterns(t, `- kind: PatternAsc
  pattern:
    kind: PatternTrue
  type:
    kind: TypeBool`)
	assert.True(t, pattern.IsWellFormed(pats[0], types.Bool))
}
