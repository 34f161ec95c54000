package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-tolmachev/stella-type-checker/internal/diag"
	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

func TestSinkIsAppendOnlyAndOrdered(t *testing.T) {
	sink := diag.NewSink()
	assert.False(t, sink.HasErrors())

	sink.Report(diag.UndefinedVariable, diag.Pos{Line: 1, Column: 2}, diag.PrimitiveArg("x"))
	sink.Report(diag.MissingMain, diag.Pos{})

	require.True(t, sink.HasErrors())
	require.Len(t, sink.Diagnostics(), 2)
	assert.Equal(t, diag.UndefinedVariable, sink.Diagnostics()[0].Kind)
	assert.Equal(t, diag.MissingMain, sink.Diagnostics()[1].Kind)
}

func TestMessageRendersTypeArgsViaString(t *testing.T) {
	d := diag.Diagnostic{
		Kind: diag.UnexpectedTypeForExpression,
		Args: []diag.Arg{
			diag.TypeArg(types.Nat),
			diag.TypeArg(types.Bool),
			diag.NodeRefArg("true"),
		},
	}
	msg := d.Message()
	assert.Contains(t, msg, "Nat")
	assert.Contains(t, msg, "Bool")
	assert.Contains(t, msg, "true")
}

func TestRenderProducesOneLinePerDiagnostic(t *testing.T) {
	sink := diag.NewSink()
	sink.Report(diag.MissingMain, diag.Pos{})
	sink.Report(diag.IllegalEmptyMatching, diag.Pos{Line: 3, Column: 1}, diag.PrimitiveArg("match x {}"))

	out := diag.Render(sink.Diagnostics())
	assert.Contains(t, out, "MISSING_MAIN")
	assert.Contains(t, out, "ILLEGAL_EMPTY_MATCHING")
	assert.Contains(t, out, "3:1")
}

func TestUnknownKindStillRendersSafely(t *testing.T) {
	var bogus diag.ErrorKind = 9999
	assert.Contains(t, bogus.String(), "UNKNOWN_ERROR_KIND")
}
