package cst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-tolmachev/stella-type-checker/internal/cst"
)

const sampleProgram = `
decls:
  - kind: DeclFun
    pos: {line: 1, column: 1}
    name: main
    params:
      - kind: Param
        name: x
        type:
          kind: TypeNat
    returnType:
      kind: TypeNat
    body:
      kind: Var
      pos: {line: 1, column: 30}
      text: x
      name: x
`

func TestDecodeTopLevelDecls(t *testing.T) {
	prog, err := cst.Decode([]byte(sampleProgram))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 1)

	decl := prog.Decls[0]
	assert.Equal(t, "DeclFun", decl.Kind)
	assert.Equal(t, "main", decl.Str("name"))
	assert.Equal(t, 1, decl.Pos.Line)
}

func TestChildAndChildrenAccessors(t *testing.T) {
	prog, err := cst.Decode([]byte(sampleProgram))
	require.NoError(t, err)
	decl := prog.Decls[0]

	params := decl.Children("params")
	require.Len(t, params, 1)
	assert.Equal(t, "Param", params[0].Kind)
	assert.Equal(t, "x", params[0].Str("name"))

	paramType := params[0].Child("type")
	assert.Equal(t, "TypeNat", paramType.Kind)

	body := decl.Child("body")
	assert.Equal(t, "Var", body.Kind)
	assert.Equal(t, "x", body.SourceText())
}

func TestMissingFieldPanics(t *testing.T) {
	prog, err := cst.Decode([]byte(sampleProgram))
	require.NoError(t, err)
	decl := prog.Decls[0]

	assert.Panics(t, func() {
		decl.Str("doesNotExist")
	})
}

func TestNormalizeRewritesNestedStrings(t *testing.T) {
	prog, err := cst.Decode([]byte(sampleProgram))
	require.NoError(t, err)
	cst.Normalize(prog)

	decl := prog.Decls[0]
	assert.Equal(t, "main", decl.Str("name"))
	body := decl.Child("body")
	assert.Equal(t, "x", body.Str("name"))
}

func TestOptChildAbsentIsNil(t *testing.T) {
	prog, err := cst.Decode([]byte(sampleProgram))
	require.NoError(t, err)
	decl := prog.Decls[0]
	assert.Nil(t, decl.OptChild("nope"))
}
