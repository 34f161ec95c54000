// Package pattern implements the two pattern-matching analyses the checker
// needs for `match` expressions: well-formedness (does this pattern's shape
// even make sense against the scrutinee's type?) and exhaustiveness (do
// these patterns, taken together, cover every value of that type?).
//
// The exhaustiveness rules are grounded line-for-line on
// original_source/src/type/exhaustivenessValidator.py's per-type-shape
// validators.
package pattern

import (
	"github.com/d-tolmachev/stella-type-checker/internal/cst"
	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

// strip peels off ascription and parenthesis wrapper patterns, mirroring
// exhaustivenessValidator.py's __preprocess_pattern.
func strip(p *cst.Node) *cst.Node {
	for {
		switch p.Kind {
		case "PatternAsc":
			p = p.Child("pattern")
		case "PatternParen":
			p = p.Child("pattern")
		default:
			return p
		}
	}
}

func isVar(p *cst.Node) bool {
	return strip(p).Kind == "PatternVar"
}

// IsWellFormed reports whether pattern p's shape is legal to match against
// a scrutinee of type ty — independent of whether a whole pattern list is
// exhaustive. A variable or wildcard pattern is always well-formed against
// any type; otherwise the pattern's constructor shape must agree with ty's
// shape (e.g. a tuple pattern needs a tuple type, an Inl/Inr pattern needs
// a Sum type).
func IsWellFormed(p *cst.Node, ty types.Type) bool {
	p = strip(p)
	switch p.Kind {
	case "PatternVar", "PatternWildcard":
		return true
	}

	switch t := ty.(type) {
	case *types.BoolType:
		return p.Kind == "PatternTrue" || p.Kind == "PatternFalse"
	case *types.NatType:
		switch p.Kind {
		case "PatternInt":
			return true
		case "PatternSucc":
			return IsWellFormed(p.Child("pattern"), ty)
		}
		return false
	case *types.UnitType:
		return p.Kind == "PatternUnit"
	case *types.TupleType:
		if p.Kind != "PatternTuple" {
			return false
		}
		elems := p.Children("elems")
		if len(elems) != len(t.Elems) {
			return false
		}
		for i, e := range elems {
			if !IsWellFormed(e, t.Elems[i]) {
				return false
			}
		}
		return true
	case *types.RecordType:
		if p.Kind != "PatternRecord" {
			return false
		}
		fields := p.Children("fields")
		index := make(map[string]types.Type, len(t.Labels))
		for i, l := range t.Labels {
			index[l] = t.Types[i]
		}
		for _, f := range fields {
			label := f.Str("label")
			fieldTy, ok := index[label]
			if !ok {
				return false
			}
			if !IsWellFormed(f.Child("pattern"), fieldTy) {
				return false
			}
		}
		return true
	case *types.SumType:
		switch p.Kind {
		case "PatternInl":
			return IsWellFormed(p.Child("pattern"), t.Left)
		case "PatternInr":
			return IsWellFormed(p.Child("pattern"), t.Right)
		}
		return false
	case *types.VariantType:
		if p.Kind != "PatternVariant" {
			return false
		}
		label := p.Str("label")
		for i, l := range t.Labels {
			if l == label {
				if inner := p.OptChild("pattern"); inner != nil {
					return IsWellFormed(inner, t.Types[i])
				}
				return true
			}
		}
		return false
	case *types.ListType:
		switch p.Kind {
		case "PatternListNil":
			return true
		case "PatternListCons":
			return IsWellFormed(p.Child("head"), t.Elem) && IsWellFormed(p.Child("tail"), ty)
		}
		return false
	case *types.RefType:
		// every pattern shape is well-formed against a reference type;
		// the original validator never restricts this case.
		return true
	case *types.TopType:
		return p.Kind == "PatternTop"
	case *types.BottomType:
		return p.Kind == "PatternBottom"
	case *types.TypeVar:
		// under reconstruction the scrutinee's type is still unresolved;
		// well-formedness cannot reject any shape yet.
		return true
	default:
		return false
	}
}

// Covers reports whether patterns, taken together, exhaustively cover every
// value of ty. Ported from exhaustivenessValidator.py's
// validate_patterns_exhaustiveness.
func Covers(patterns []*cst.Node, ty types.Type) bool {
	for _, p := range patterns {
		if isVar(p) {
			return true
		}
	}

	switch t := ty.(type) {
	case *types.BoolType:
		hasTrue, hasFalse := false, false
		for _, p := range patterns {
			switch strip(p).Kind {
			case "PatternTrue":
				hasTrue = true
			case "PatternFalse":
				hasFalse = true
			}
		}
		return hasTrue && hasFalse

	case *types.NatType:
		hasZero, hasSucc := false, false
		for _, p := range patterns {
			sp := strip(p)
			switch sp.Kind {
			case "PatternInt":
				hasZero = true
			case "PatternSucc":
				if isVar(sp.Child("pattern")) {
					hasSucc = true
				}
			}
		}
		return hasZero && hasSucc

	case *types.FunType:
		// a var pattern is the only way to cover a function type; already
		// handled by the loop above.
		return false

	case *types.UnitType:
		for _, p := range patterns {
			if strip(p).Kind == "PatternUnit" {
				return true
			}
		}
		return false

	case *types.TupleType:
		for _, p := range patterns {
			sp := strip(p)
			if sp.Kind != "PatternTuple" {
				continue
			}
			elems := sp.Children("elems")
			if len(elems) != len(t.Elems) {
				continue
			}
			allVars := true
			for _, e := range elems {
				if !isVar(e) {
					allVars = false
					break
				}
			}
			if allVars {
				return true
			}
		}
		return false

	case *types.RecordType:
		for _, p := range patterns {
			sp := strip(p)
			if sp.Kind != "PatternRecord" {
				continue
			}
			fields := sp.Children("fields")
			allVars := true
			for _, f := range fields {
				if !isVar(f.Child("pattern")) {
					allVars = false
					break
				}
			}
			if allVars {
				return true
			}
		}
		return false

	case *types.SumType:
		hasInl, hasInr := false, false
		for _, p := range patterns {
			sp := strip(p)
			switch sp.Kind {
			case "PatternInl":
				if isVar(sp.Child("pattern")) {
					hasInl = true
				}
			case "PatternInr":
				if isVar(sp.Child("pattern")) {
					hasInr = true
				}
			}
		}
		return hasInl && hasInr

	case *types.VariantType:
		seen := make(map[string]bool)
		for _, p := range patterns {
			sp := strip(p)
			if sp.Kind != "PatternVariant" {
				continue
			}
			seen[sp.Str("label")] = true
		}
		for _, l := range t.Labels {
			if !seen[l] {
				return false
			}
		}
		return true

	case *types.ListType:
		for _, p := range patterns {
			sp := strip(p)
			if sp.Kind != "PatternListCons" {
				continue
			}
			if isVar(sp.Child("head")) && isVar(sp.Child("tail")) {
				return true
			}
		}
		return false

	case *types.RefType:
		// the original validator always treats a reference scrutinee as
		// covered, regardless of patterns present.
		return true

	case *types.TopType:
		for _, p := range patterns {
			if strip(p).Kind == "PatternTop" {
				return true
			}
		}
		return false

	case *types.BottomType:
		for _, p := range patterns {
			if strip(p).Kind == "PatternBottom" {
				return true
			}
		}
		return false

	case *types.TypeVar:
		// redispatch based on whichever concrete pattern shape appears
		// first, mirroring the original's TypeVariable case; if nothing
		// recognizable is present the loop falls through and — as in the
		// original — we default to considering it exhaustive.
		for _, p := range patterns {
			switch strip(p).Kind {
			case "PatternTrue", "PatternFalse":
				return Covers(patterns, types.Bool)
			case "PatternInt", "PatternSucc":
				return Covers(patterns, types.Nat)
			case "PatternUnit":
				return Covers(patterns, types.Unit)
			case "PatternTuple":
				return coversUnknownTuple(patterns, strip(p))
			case "PatternInl", "PatternInr":
				return Covers(patterns, types.NewSum(&types.TypeVar{}, &types.TypeVar{}))
			case "PatternListNil", "PatternListCons":
				return Covers(patterns, types.NewList(&types.TypeVar{}))
			}
		}
		return true

	default:
		return false
	}
}

// coversUnknownTuple handles the TypeVariable redispatch case for tuples,
// where the element types aren't known yet; it only needs arity agreement
// plus all-vars, same as the concrete TupleType case.
func coversUnknownTuple(patterns []*cst.Node, sample *cst.Node) bool {
	arity := len(sample.Children("elems"))
	for _, p := range patterns {
		sp := strip(p)
		if sp.Kind != "PatternTuple" {
			continue
		}
		elems := sp.Children("elems")
		if len(elems) != arity {
			continue
		}
		allVars := true
		for _, e := range elems {
			if !isVar(e) {
				allVars = false
				break
			}
		}
		if allVars {
			return true
		}
	}
	return false
}
