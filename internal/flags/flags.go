// Package flags implements the read-only extension flag set. Of its names,
// internal/checker and internal/driver read structural subtyping and type
// reconstruction; the others are decoded and answered by Has but gate no
// checker or driver behaviour. The flag-name vocabulary is grounded verbatim on
// original_source/src/extension/extensionKind.py's str_name values.
package flags

import (
	"gopkg.in/yaml.v3"
)

// Name is one extension flag, by its exact source-language name.
type Name string

const (
	Predecessor                 Name = "predecessor"
	NaturalLiterals              Name = "natural-literals"
	NestedFunctionDeclarations   Name = "nested-function-declarations"
	NullaryFunctions             Name = "nullary-functions"
	MultiparameterFunctions      Name = "multiparameter-functions"
	UnitType                     Name = "unit-type"
	UnitTypes                    Name = "unit-types"
	Sequencing                   Name = "sequencing"
	TypeAscriptions              Name = "type-ascriptions"
	LetBindings                  Name = "let-bindings"
	LetManyBindings              Name = "let-many-bindings"
	Pairs                        Name = "pairs"
	Tuples                       Name = "tuples"
	Records                      Name = "records"
	StructuralPatterns           Name = "structural-patterns"
	PatternAscriptions           Name = "pattern-ascriptions"
	LetPatterns                  Name = "let-patterns"
	SumTypes                     Name = "sum-types"
	Variants                     Name = "variants"
	NullaryVariantLabels         Name = "nullary-variant-labels"
	FixpointCombinator           Name = "fixpoint-combinator"
	LetrecBindings               Name = "letrec-bindings"
	LetrecManyBindings           Name = "letrec-many-bindings"
	Lists                        Name = "lists"
	References                   Name = "references"
	Panic                        Name = "panic"
	Exceptions                   Name = "exceptions"
	ExceptionTypeDeclaration     Name = "exception-type-declaration"
	OpenVariantExceptions        Name = "open-variant-exceptions"
	StructuralSubtyping          Name = "structural-subtyping"
	TopType                      Name = "top-type"
	BottomType                   Name = "bottom-type"
	AmbiguousTypeAsBottom        Name = "ambiguous-type-as-bottom"
	TypeCast                     Name = "type-cast"
	TryCastAs                    Name = "try-cast-as"
	TypeCastPatterns             Name = "type-cast-patterns"

	// TypeReconstruction is this implementation's own name for turning on
	// the constraint store / unifier (HM-style inference). It has no
	// counterpart in extensionKind.py's enum — the original typechecker
	// has no bidirectional/inference mode switch — but spec.md requires
	// it as a first-class flag, so it's added here rather than smuggled
	// in under an existing name.
	TypeReconstruction Name = "type-reconstruction"
)

// Set is a read-only collection of enabled extension names. Zero value is
// the empty set (no extensions enabled).
type Set struct {
	enabled map[Name]bool
}

// NewSet builds a Set from an explicit list of enabled names, useful for
// tests and for callers that already have a parsed list.
func NewSet(names ...Name) *Set {
	s := &Set{enabled: make(map[Name]bool, len(names))}
	for _, n := range names {
		s.enabled[n] = true
	}
	return s
}

// Has reports whether name is enabled. Names this Set never heard of
// (including ones decoded from YAML that don't match any constant above)
// simply report false — they are not errors, per spec.md's forward-
// compatibility requirement.
func (s *Set) Has(name Name) bool {
	if s == nil {
		return false
	}
	return s.enabled[name]
}

// document is the on-disk YAML shape: a flat list of extension names.
//
//	extensions:
//	  - structural-subtyping
//	  - type-reconstruction
type document struct {
	Extensions []string `yaml:"extensions"`
}

// Decode parses a YAML document into a Set. Unlike
// extensionKind.py's from_str (which raises ValueError on an unrecognized
// name), unknown names decode silently and are simply never Has()-true —
// spec.md requires forward compatibility here rather than the original's
// strictness.
func Decode(data []byte) (*Set, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	known := NewSet(
		Predecessor, NaturalLiterals, NestedFunctionDeclarations, NullaryFunctions,
		MultiparameterFunctions, UnitType, UnitTypes, Sequencing, TypeAscriptions,
		LetBindings, LetManyBindings, Pairs, Tuples, Records, StructuralPatterns,
		PatternAscriptions, LetPatterns, SumTypes, Variants, NullaryVariantLabels,
		FixpointCombinator, LetrecBindings, LetrecManyBindings, Lists, References,
		Panic, Exceptions, ExceptionTypeDeclaration, OpenVariantExceptions,
		StructuralSubtyping, TopType, BottomType, AmbiguousTypeAsBottom, TypeCast,
		TryCastAs, TypeCastPatterns, TypeReconstruction,
	)
	s := &Set{enabled: make(map[Name]bool, len(doc.Extensions))}
	for _, raw := range doc.Extensions {
		if name := Name(raw); known.Has(name) {
			s.enabled[name] = true
		}
	}
	return s, nil
}
