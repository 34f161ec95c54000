package driver_test

import (
	"testing"

	"github.com/d-tolmachev/stella-type-checker/internal/diag"
	"github.com/d-tolmachev/stella-type-checker/internal/driver"
	"github.com/d-tolmachev/stella-type-checker/internal/flags"
	"github.com/d-tolmachev/stella-type-checker/testutil"
)

// TestNonexhaustiveNatMatchGolden pins the exact rendered diagnostic text
// for a non-exhaustive Nat match against a checked-in fixture, the way the
// teacher's feature tests pin rendered output rather than just checking an
// error occurred.
func TestNonexhaustiveNatMatchGolden(t *testing.T) {
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
      kind: Match
      pos: {line: 5, column: 3}
      expr: {kind: Var, name: x}
      cases:
        - pattern: {kind: PatternInt}
          expr: {kind: True}
`)
	result := driver.Run(prog, flags.NewSet())
	rendered := diag.Render(result.Diagnostics)

	testutil.CompareWithGolden(t, "driver", "nonexhaustive_nat_match", rendered)
}
