package driver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-tolmachev/stella-type-checker/internal/cst"
	"github.com/d-tolmachev/stella-type-checker/internal/diag"
	"github.com/d-tolmachev/stella-type-checker/internal/driver"
	"github.com/d-tolmachev/stella-type-checker/internal/flags"
)

func decode(t *testing.T, doc string) *cst.Program {
	t.Helper()
	prog, err := cst.Decode([]byte(doc))
	require.NoError(t, err)
	return prog
}

func TestWellTypedMainHasNoDiagnostics(t *testing.T) {
	prog := decode(t, `
decls:
  - kind: DeclFun
    pos: {line: 1, column: 1}
    name: main
    params:
      - kind: Param
        name: x
        type: {kind: TypeNat}
    returnType: {kind: TypeNat}
    body: {kind: Var, name: x}
`)
	result := driver.Run(prog, flags.NewSet())
	assert.Empty(t, result.Diagnostics)
}

func TestMissingMainIsReported(t *testing.T) {
	prog := decode(t, `
decls:
  - kind: DeclFun
    pos: {line: 1, column: 1}
    name: helper
    params:
      - kind: Param
        name: x
        type: {kind: TypeNat}
    returnType: {kind: TypeNat}
    body: {kind: Var, name: x}
`)
	result := driver.Run(prog, flags.NewSet())
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, diag.MissingMain, result.Diagnostics[0].Kind)
}

func TestIncorrectMainArityIsReported(t *testing.T) {
	prog := decode(t, `
decls:
  - kind: DeclFun
    pos: {line: 1, column: 1}
    name: main
    params:
      - kind: Param
        name: x
        type: {kind: TypeNat}
      - kind: Param
        name: y
        type: {kind: TypeNat}
    returnType: {kind: TypeNat}
    body: {kind: Var, name: x}
`)
	result := driver.Run(prog, flags.NewSet())
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, diag.IncorrectArityOfMain, result.Diagnostics[0].Kind)
}

func TestMutualTopLevelReferencesResolveAcrossPasses(t *testing.T) {
	prog := decode(t, `
decls:
  - kind: DeclFun
    pos: {line: 1, column: 1}
    name: main
    params:
      - kind: Param
        name: x
        type: {kind: TypeNat}
    returnType: {kind: TypeBool}
    body:
      kind: Application
      fun: {kind: Var, name: helper}
      args:
        - {kind: Var, name: x}
  - kind: DeclFun
    pos: {line: 5, column: 1}
    name: helper
    params:
      - kind: Param
        name: n
        type: {kind: TypeNat}
    returnType: {kind: TypeBool}
    body: {kind: True}
`)
	result := driver.Run(prog, flags.NewSet())
	assert.Empty(t, result.Diagnostics)
}

func TestAutoReturnTypeInfersFromBody(t *testing.T) {
	prog := decode(t, `
decls:
  - kind: DeclFun
    pos: {line: 1, column: 1}
    name: main
    params:
      - kind: Param
        name: x
        type: {kind: TypeNat}
    returnType: {kind: TypeAuto}
    body: {kind: Var, name: x}
`)
	result := driver.Run(prog, flags.NewSet())
	assert.Empty(t, result.Diagnostics)
}

func TestOccursCheckFailureReportedUnderReconstruction(t *testing.T) {
	prog := decode(t, `
decls:
  - kind: DeclFun
    pos: {line: 1, column: 1}
    name: main
    params:
      - kind: Param
        name: f
        type: {kind: TypeAuto}
    returnType: {kind: TypeNat}
    body:
      kind: Application
      fun: {kind: Var, name: f}
      args:
        - {kind: Var, name: f}
`)
	result := driver.Run(prog, flags.NewSet(flags.TypeReconstruction))
	found := false
	for _, d := range result.Diagnostics {
		if d.Kind == diag.OccursCheckInfiniteType {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBodyTypeMismatchAgainstDeclaredReturnType(t *testing.T) {
	prog := decode(t, `
decls:
  - kind: DeclFun
    pos: {line: 1, column: 1}
    name: main
    params:
      - kind: Param
        name: x
        type: {kind: TypeNat}
    returnType: {kind: TypeBool}
    body: {kind: Var, name: x}
`)
	result := driver.Run(prog, flags.NewSet())
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, diag.UnexpectedTypeForExpression, result.Diagnostics[0].Kind)
}
