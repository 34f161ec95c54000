package flags_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-tolmachev/stella-type-checker/internal/flags"
)

func TestDecodeEnablesListedExtensions(t *testing.T) {
	doc := []byte(`
extensions:
  - structural-subtyping
  - type-reconstruction
`)
	set, err := flags.Decode(doc)
	require.NoError(t, err)
	assert.True(t, set.Has(flags.StructuralSubtyping))
	assert.True(t, set.Has(flags.TypeReconstruction))
	assert.False(t, set.Has(flags.TopType))
}

func TestDecodeUnknownNameDoesNotError(t *testing.T) {
	doc := []byte(`
extensions:
  - structural-subtyping
  - this-name-does-not-exist-yet
`)
	set, err := flags.Decode(doc)
	require.NoError(t, err)
	assert.True(t, set.Has(flags.StructuralSubtyping))
	assert.False(t, set.Has(flags.Name("this-name-does-not-exist-yet")))
}

func TestNilSetHasIsFalse(t *testing.T) {
	var set *flags.Set
	assert.False(t, set.Has(flags.Lists))
}

func TestNewSetFromExplicitNames(t *testing.T) {
	set := flags.NewSet(flags.Lists, flags.References)
	assert.True(t, set.Has(flags.Lists))
	assert.True(t, set.Has(flags.References))
	assert.False(t, set.Has(flags.Panic))
}
