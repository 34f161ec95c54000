// Package types implements the closed type algebra for the Stella family of
// languages: structural equality, subtyping, substitution, and the
// "occurs" query used by the reconstruction unifier.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the base interface every type-algebra constructor implements.
type Type interface {
	// String renders the type in its canonical surface syntax. Used only
	// for diagnostics; never semantically significant.
	String() string
	// Equals is structural equality. Record/variant field order never
	// matters, only the label set and label->type mapping.
	Equals(other Type) bool
	// IsSubtypeOf decides self <= other. When subtypingEnabled is false
	// this must agree with Equals.
	IsSubtypeOf(other Type, subtypingEnabled bool) bool
	// Substitute applies a Generic->Type map throughout the structure,
	// respecting Forall's binder.
	Substitute(sub Substitution) Type
}

// Substitution maps a Generic's name to the type it stands for.
type Substitution map[string]Type

// Bool, Nat and Unit are atomic and unique: there is exactly one value of
// each, shared by every caller.
var (
	Bool = &BoolType{}
	Nat  = &NatType{}
	Unit = &UnitType{}
	Top  = &TopType{}
	Bot  = &BottomType{}
)

type BoolType struct{}

func (t *BoolType) String() string { return "Bool" }
func (t *BoolType) Equals(other Type) bool {
	_, ok := other.(*BoolType)
	return ok
}
func (t *BoolType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *BoolType) Substitute(Substitution) Type { return t }

type NatType struct{}

func (t *NatType) String() string { return "Nat" }
func (t *NatType) Equals(other Type) bool {
	_, ok := other.(*NatType)
	return ok
}
func (t *NatType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *NatType) Substitute(Substitution) Type { return t }

type UnitType struct{}

func (t *UnitType) String() string { return "Unit" }
func (t *UnitType) Equals(other Type) bool {
	_, ok := other.(*UnitType)
	return ok
}
func (t *UnitType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *UnitType) Substitute(Substitution) Type { return t }

// TopType is only inhabited as a subtyping target.
type TopType struct{}

func (t *TopType) String() string { return "Top" }
func (t *TopType) Equals(other Type) bool {
	_, ok := other.(*TopType)
	return ok
}
func (t *TopType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if !subtypingEnabled {
		_, ok := other.(*TopType)
		return ok
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *TopType) Substitute(Substitution) Type { return t }

// BottomType is what a TypeBottom node translates to. The checker also
// returns it as the placeholder type of an expression after reporting a
// diagnostic for it.
type BottomType struct{}

func (t *BottomType) String() string { return "Bottom" }
func (t *BottomType) Equals(other Type) bool {
	_, ok := other.(*BottomType)
	return ok
}
func (t *BottomType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if !subtypingEnabled {
		_, ok := other.(*BottomType)
		return ok
	}
	return true
}
func (t *BottomType) Substitute(Substitution) Type { return t }

// FunType is contravariant in its parameter, covariant in its return.
type FunType struct {
	Param Type
	Ret   Type
}

func NewFun(param, ret Type) *FunType { return &FunType{Param: param, Ret: ret} }

func (t *FunType) String() string {
	return fmt.Sprintf("(%s) -> (%s)", t.Param.String(), t.Ret.String())
}
func (t *FunType) Equals(other Type) bool {
	o, ok := other.(*FunType)
	return ok && t.Param.Equals(o.Param) && t.Ret.Equals(o.Ret)
}
func (t *FunType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	if o, ok := other.(*FunType); ok {
		return o.Param.IsSubtypeOf(t.Param, subtypingEnabled) && t.Ret.IsSubtypeOf(o.Ret, subtypingEnabled)
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *FunType) Substitute(sub Substitution) Type {
	return &FunType{Param: t.Param.Substitute(sub), Ret: t.Ret.Substitute(sub)}
}

// TupleType is an ordered, positional product.
type TupleType struct {
	Elems []Type
}

func NewTuple(elems ...Type) *TupleType { return &TupleType{Elems: elems} }

func (t *TupleType) Arity() int { return len(t.Elems) }

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}
func (t *TupleType) Equals(other Type) bool {
	o, ok := other.(*TupleType)
	if !ok || len(t.Elems) != len(o.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equals(o.Elems[i]) {
			return false
		}
	}
	return true
}
func (t *TupleType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	if o, ok := other.(*TupleType); ok {
		if len(t.Elems) != len(o.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].IsSubtypeOf(o.Elems[i], subtypingEnabled) {
				return false
			}
		}
		return true
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *TupleType) Substitute(sub Substitution) Type {
	elems := make([]Type, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = e.Substitute(sub)
	}
	return &TupleType{Elems: elems}
}

// RecordType is an ordered list of (label, type) pairs, but equality and
// subtyping are by label, not position. Iteration order is preserved only
// for rendering.
type RecordType struct {
	Labels []string
	Types  []Type
}

func NewRecord(labels []string, types []Type) *RecordType {
	return &RecordType{Labels: labels, Types: types}
}

func (t *RecordType) indices() map[string]int {
	m := make(map[string]int, len(t.Labels))
	for i, l := range t.Labels {
		m[l] = i
	}
	return m
}

func (t *RecordType) String() string {
	parts := make([]string, len(t.Labels))
	for i, l := range t.Labels {
		parts[i] = fmt.Sprintf("%s:%s", l, t.Types[i].String())
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

func (t *RecordType) Equals(other Type) bool {
	o, ok := other.(*RecordType)
	if !ok || len(t.Labels) != len(o.Labels) {
		return false
	}
	self := t.indices()
	for i, l := range o.Labels {
		si, found := self[l]
		if !found || !t.Types[si].Equals(o.Types[i]) {
			return false
		}
	}
	return true
}

// IsSubtypeOf: width+depth — a record with more fields is a subtype of one
// with fewer, as long as every field of other is present (by label) in t
// with a depth-subtype value.
func (t *RecordType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	if o, ok := other.(*RecordType); ok {
		if len(t.Labels) < len(o.Labels) {
			return false
		}
		self := t.indices()
		for i, l := range o.Labels {
			si, found := self[l]
			if !found || !t.Types[si].IsSubtypeOf(o.Types[i], subtypingEnabled) {
				return false
			}
		}
		return true
	}
	_, ok := other.(*TopType)
	return ok
}

func (t *RecordType) Substitute(sub Substitution) Type {
	types := make([]Type, len(t.Types))
	for i, ty := range t.Types {
		types[i] = ty.Substitute(sub)
	}
	return &RecordType{Labels: append([]string(nil), t.Labels...), Types: types}
}

// sortedLabels returns labels sorted for label-order-independent comparison
// helpers elsewhere (diagnostics want deterministic missing/extra lists).
func sortedLabels(labels []string) []string {
	out := append([]string(nil), labels...)
	sort.Strings(out)
	return out
}

// SumType: left/right injections. Per spec.md's open question, Sum is
// treated as covariant in both sides (the original source's unconditional
// `return True` in SumType.is_subtype_of is a bug we do not reproduce).
type SumType struct {
	Left  Type
	Right Type
}

func NewSum(left, right Type) *SumType { return &SumType{Left: left, Right: right} }

func (t *SumType) String() string {
	return fmt.Sprintf("(%s + %s)", t.Left.String(), t.Right.String())
}
func (t *SumType) Equals(other Type) bool {
	o, ok := other.(*SumType)
	return ok && t.Left.Equals(o.Left) && t.Right.Equals(o.Right)
}
func (t *SumType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	if o, ok := other.(*SumType); ok {
		return t.Left.IsSubtypeOf(o.Left, subtypingEnabled) && t.Right.IsSubtypeOf(o.Right, subtypingEnabled)
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *SumType) Substitute(sub Substitution) Type {
	return &SumType{Left: t.Left.Substitute(sub), Right: t.Right.Substitute(sub)}
}

// VariantType: labeled sum. Subtyping direction is the dual of records — a
// variant with fewer labels is a subtype of one with more (you can always
// widen the set of alternatives a consumer must handle).
type VariantType struct {
	Labels []string
	Types  []Type
}

func NewVariant(labels []string, types []Type) *VariantType {
	return &VariantType{Labels: labels, Types: types}
}

func (t *VariantType) indices() map[string]int {
	m := make(map[string]int, len(t.Labels))
	for i, l := range t.Labels {
		m[l] = i
	}
	return m
}

func (t *VariantType) String() string {
	parts := make([]string, len(t.Labels))
	for i, l := range t.Labels {
		parts[i] = fmt.Sprintf("%s:%s", l, t.Types[i].String())
	}
	return fmt.Sprintf("<|%s|>", strings.Join(parts, ", "))
}

func (t *VariantType) Equals(other Type) bool {
	o, ok := other.(*VariantType)
	if !ok || len(t.Labels) != len(o.Labels) {
		return false
	}
	oi := o.indices()
	for i, l := range t.Labels {
		j, found := oi[l]
		if !found || !t.Types[i].Equals(o.Types[j]) {
			return false
		}
	}
	return true
}

func (t *VariantType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	if o, ok := other.(*VariantType); ok {
		if len(t.Labels) > len(o.Labels) {
			return false
		}
		oi := o.indices()
		for i, l := range t.Labels {
			j, found := oi[l]
			if !found || !t.Types[i].IsSubtypeOf(o.Types[j], subtypingEnabled) {
				return false
			}
		}
		return true
	}
	_, ok := other.(*TopType)
	return ok
}

func (t *VariantType) Substitute(sub Substitution) Type {
	types := make([]Type, len(t.Types))
	for i, ty := range t.Types {
		types[i] = ty.Substitute(sub)
	}
	return &VariantType{Labels: append([]string(nil), t.Labels...), Types: types}
}

// ListType is covariant.
type ListType struct {
	Elem Type
}

func NewList(elem Type) *ListType { return &ListType{Elem: elem} }

func (t *ListType) String() string { return fmt.Sprintf("List[%s]", t.Elem.String()) }
func (t *ListType) Equals(other Type) bool {
	o, ok := other.(*ListType)
	return ok && t.Elem.Equals(o.Elem)
}
func (t *ListType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	if o, ok := other.(*ListType); ok {
		return t.Elem.IsSubtypeOf(o.Elem, subtypingEnabled)
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *ListType) Substitute(sub Substitution) Type {
	return &ListType{Elem: t.Elem.Substitute(sub)}
}

// RefType. The algebra implements depth-covariance, following
// original_source/src/type/type.py literally (see SPEC_FULL.md §6 and
// DESIGN.md's Open Question #1) — the typer, not the algebra, is
// responsible for rejecting unsound assignment through a widened ref.
type RefType struct {
	Inner Type
}

func NewRef(inner Type) *RefType { return &RefType{Inner: inner} }

func (t *RefType) String() string { return fmt.Sprintf("&%s", t.Inner.String()) }
func (t *RefType) Equals(other Type) bool {
	o, ok := other.(*RefType)
	return ok && t.Inner.Equals(o.Inner)
}
func (t *RefType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	if o, ok := other.(*RefType); ok {
		return t.Inner.IsSubtypeOf(o.Inner, subtypingEnabled)
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *RefType) Substitute(sub Substitution) Type {
	return &RefType{Inner: t.Inner.Substitute(sub)}
}

// GenericType is a free universal-type parameter, e.g. the `X` in `[X]X -> X`.
type GenericType struct {
	Name string
}

func NewGeneric(name string) *GenericType { return &GenericType{Name: name} }

func (t *GenericType) String() string { return t.Name }
func (t *GenericType) Equals(other Type) bool {
	o, ok := other.(*GenericType)
	return ok && t.Name == o.Name
}
func (t *GenericType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if t.Equals(other) {
		return true
	}
	if !subtypingEnabled {
		return false
	}
	_, ok := other.(*TopType)
	return ok
}
func (t *GenericType) Substitute(sub Substitution) Type {
	if repl, ok := sub[t.Name]; ok {
		return repl
	}
	return t
}

// ForallType is prenex: it never nests inside another Forall.
type ForallType struct {
	Params []string
	Body   Type
}

func NewForall(params []string, body Type) *ForallType {
	return &ForallType{Params: params, Body: body}
}

func (t *ForallType) String() string {
	return fmt.Sprintf("[%s]%s", strings.Join(t.Params, ", "), t.Body.String())
}
func (t *ForallType) Equals(other Type) bool {
	o, ok := other.(*ForallType)
	if !ok || len(t.Params) != len(o.Params) {
		return false
	}
	for i := range t.Params {
		if t.Params[i] != o.Params[i] {
			return false
		}
	}
	return t.Body.Equals(o.Body)
}
func (t *ForallType) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	if !subtypingEnabled {
		return t.Equals(other)
	}
	if o, ok := other.(*ForallType); ok {
		if len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if t.Params[i] != o.Params[i] {
				return false
			}
		}
		return t.Body.IsSubtypeOf(o.Body, subtypingEnabled)
	}
	_, ok := other.(*TopType)
	return ok
}

// Substitute removes its own bound names from sub before recursing into the
// body — this is what makes substitution capture-avoiding for Forall.
func (t *ForallType) Substitute(sub Substitution) Type {
	inner := make(Substitution, len(sub))
	for k, v := range sub {
		inner[k] = v
	}
	for _, p := range t.Params {
		delete(inner, p)
	}
	return &ForallType{Params: t.Params, Body: t.Body.Substitute(inner)}
}

// FirstUnresolved returns the first Generic reachable in t for which sub has
// no binding — used after instantiating a Forall's body to detect free type
// parameters left unresolved by a type-application.
func FirstUnresolved(t Type, sub Substitution) *GenericType {
	switch v := t.(type) {
	case *GenericType:
		if _, ok := sub[v.Name]; !ok {
			return v
		}
		return nil
	case *FunType:
		if g := FirstUnresolved(v.Param, sub); g != nil {
			return g
		}
		return FirstUnresolved(v.Ret, sub)
	case *TupleType:
		for _, e := range v.Elems {
			if g := FirstUnresolved(e, sub); g != nil {
				return g
			}
		}
		return nil
	case *RecordType:
		for _, e := range v.Types {
			if g := FirstUnresolved(e, sub); g != nil {
				return g
			}
		}
		return nil
	case *SumType:
		if g := FirstUnresolved(v.Left, sub); g != nil {
			return g
		}
		return FirstUnresolved(v.Right, sub)
	case *VariantType:
		for _, e := range v.Types {
			if g := FirstUnresolved(e, sub); g != nil {
				return g
			}
		}
		return nil
	case *ListType:
		return FirstUnresolved(v.Elem, sub)
	case *RefType:
		return FirstUnresolved(v.Inner, sub)
	case *ForallType:
		inner := make(Substitution, len(sub))
		for k, val := range sub {
			inner[k] = val
		}
		for _, p := range v.Params {
			delete(inner, p)
		}
		return FirstUnresolved(v.Body, inner)
	default:
		return nil
	}
}

// TypeVar is an inference unknown, produced and consumed only under
// type-reconstruction.
type TypeVar struct {
	ID int
}

func (t *TypeVar) String() string { return fmt.Sprintf("?T%d", t.ID) }
func (t *TypeVar) Equals(other Type) bool {
	o, ok := other.(*TypeVar)
	return ok && t.ID == o.ID
}

// IsSubtypeOf on a bare TypeVar is equals-only. Under reconstruction the
// checker emits constraints instead of asking subtype queries, so this is
// reached only when reconstruction is off (e.g. for an auto-typed spot).
func (t *TypeVar) IsSubtypeOf(other Type, subtypingEnabled bool) bool {
	return t.Equals(other)
}
func (t *TypeVar) Substitute(sub Substitution) Type {
	if repl, ok := sub[fmt.Sprintf("$%d", t.ID)]; ok {
		return repl
	}
	return t
}

// Occurs is the standard occurs-check: does v appear anywhere inside t?
func Occurs(v *TypeVar, t Type) bool {
	switch x := t.(type) {
	case *TypeVar:
		return x.ID == v.ID
	case *FunType:
		return Occurs(v, x.Param) || Occurs(v, x.Ret)
	case *TupleType:
		for _, e := range x.Elems {
			if Occurs(v, e) {
				return true
			}
		}
		return false
	case *RecordType:
		for _, e := range x.Types {
			if Occurs(v, e) {
				return true
			}
		}
		return false
	case *SumType:
		return Occurs(v, x.Left) || Occurs(v, x.Right)
	case *VariantType:
		for _, e := range x.Types {
			if Occurs(v, e) {
				return true
			}
		}
		return false
	case *ListType:
		return Occurs(v, x.Elem)
	case *RefType:
		return Occurs(v, x.Inner)
	case *ForallType:
		return Occurs(v, x.Body)
	default:
		return false
	}
}

// freshCounter is not read by any code: TypeVar identifiers are minted by a
// *Fresh instance (below), one per program check.
var freshCounter int

// Fresh mints fresh TypeVars for one program check. The driver owns one
// instance and threads it through the checker and constraint store so the
// counter is never a hidden global shared across unrelated programs.
type Fresh struct {
	next int
}

// NewFresh creates a counter starting at 1.
func NewFresh() *Fresh { return &Fresh{next: 1} }

// Var mints the next TypeVar.
func (f *Fresh) Var() *TypeVar {
	id := f.next
	f.next++
	return &TypeVar{ID: id}
}
