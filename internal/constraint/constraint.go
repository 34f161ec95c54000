// Package constraint implements the constraint store and Robinson-style
// unifier used only when type reconstruction is enabled: the checker emits
// equality constraints between types (some containing TypeVars) as it
// walks the program, and this package solves them into one substitution
// (or collects the unification failures that prevented that).
//
// The unifier's control flow — apply the running substitution first, check
// structural equality, then type-switch on the left operand, binding a
// TypeVar after an occurs-check or decomposing structurally with an arity/
// label check — mirrors the teacher's internal/types/unification.go.
package constraint

import (
	"errors"
	"fmt"

	"github.com/d-tolmachev/stella-type-checker/internal/cst"
	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

// Constraint is one equality obligation collected by the checker: Left must
// equal Right once reconstruction is solved. Pos is carried through purely
// for diagnostic attribution.
type Constraint struct {
	Left  types.Type
	Right types.Type
	Pos   cst.Pos
}

// Store accumulates constraints in the order the checker discovers them.
// spec.md's design notes call out that this order can matter for which
// unification failure surfaces first — Solve processes the store strictly
// in insertion order.
type Store struct {
	constraints []Constraint
}

// NewStore returns an empty constraint store.
func NewStore() *Store { return &Store{} }

// Add records one equality constraint.
func (s *Store) Add(left, right types.Type, pos cst.Pos) {
	s.constraints = append(s.constraints, Constraint{Left: left, Right: right, Pos: pos})
}

// FailureKind discriminates why a constraint failed to unify, matching
// spec.md's two solve()-failure outcomes (`Failed` vs. `FailedInfinite`):
// a plain structural/shape mismatch maps to UNEXPECTED_TYPE_FOR_EXPRESSION,
// while an occurs-check violation maps to the distinct
// OCCURS_CHECK_INFINITE_TYPE diagnostic.
type FailureKind int

const (
	FailureMismatch FailureKind = iota
	FailureOccurs
)

// Failure is one constraint that could not be unified against the running
// substitution, carrying enough detail for internal/diag to render it.
type Failure struct {
	Constraint Constraint
	Kind       FailureKind
	Err        error
}

// occursError is returned by bind when the occurs-check rejects a binding,
// so Solve can discriminate it from an ordinary structural mismatch without
// parsing error text.
type occursError struct {
	Var  *types.TypeVar
	Type types.Type
}

func (e *occursError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.Type)
}

// Solve walks every constraint in insertion order, threading a single
// running substitution through Unify. A constraint that fails to unify is
// recorded as a Failure and solving continues with the substitution as it
// stood before that constraint — consistent with "collect, don't abort".
func (s *Store) Solve() (types.Substitution, []Failure) {
	sub := types.Substitution{}
	var failures []Failure
	for _, c := range s.constraints {
		next, err := Unify(c.Left, c.Right, sub)
		if err != nil {
			kind := FailureMismatch
			var oe *occursError
			if errors.As(err, &oe) {
				kind = FailureOccurs
			}
			failures = append(failures, Failure{Constraint: c, Kind: kind, Err: err})
			continue
		}
		sub = next
	}
	return sub, failures
}

// key is the substitution key a TypeVar is addressed by; matches
// types.TypeVar.Substitute's own convention.
func key(v *types.TypeVar) string { return fmt.Sprintf("$%d", v.ID) }

// apply resolves t through sub to a fixed point: every TypeVar bound
// (possibly transitively, through a chain of other TypeVars) in sub is
// replaced.
func apply(t types.Type, sub types.Substitution) types.Type {
	for {
		next := t.Substitute(sub)
		if next.Equals(t) {
			return next
		}
		t = next
	}
}

// Unify attempts to make t1 and t2 equal under sub, returning an extended
// substitution on success.
func Unify(t1, t2 types.Type, sub types.Substitution) (types.Substitution, error) {
	t1 = apply(t1, sub)
	t2 = apply(t2, sub)

	if t1.Equals(t2) {
		return sub, nil
	}

	if v, ok := t1.(*types.TypeVar); ok {
		return bind(v, t2, sub)
	}
	if v, ok := t2.(*types.TypeVar); ok {
		return bind(v, t1, sub)
	}

	switch a := t1.(type) {
	case *types.FunType:
		b, ok := t2.(*types.FunType)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		sub, err := Unify(a.Param, b.Param, sub)
		if err != nil {
			return nil, err
		}
		return Unify(a.Ret, b.Ret, sub)

	case *types.TupleType:
		b, ok := t2.(*types.TupleType)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		if len(a.Elems) != len(b.Elems) {
			return nil, fmt.Errorf("arity mismatch: %s vs %s", t1, t2)
		}
		var err error
		for i := range a.Elems {
			sub, err = Unify(a.Elems[i], b.Elems[i], sub)
			if err != nil {
				return nil, err
			}
		}
		return sub, nil

	case *types.RecordType:
		b, ok := t2.(*types.RecordType)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		if len(a.Labels) != len(b.Labels) {
			return nil, fmt.Errorf("record shape mismatch: %s vs %s", t1, t2)
		}
		bIndex := make(map[string]types.Type, len(b.Labels))
		for i, l := range b.Labels {
			bIndex[l] = b.Types[i]
		}
		var err error
		for i, l := range a.Labels {
			bt, ok := bIndex[l]
			if !ok {
				return nil, fmt.Errorf("record field %s missing in %s", l, t2)
			}
			sub, err = Unify(a.Types[i], bt, sub)
			if err != nil {
				return nil, err
			}
		}
		return sub, nil

	case *types.SumType:
		b, ok := t2.(*types.SumType)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		sub, err := Unify(a.Left, b.Left, sub)
		if err != nil {
			return nil, err
		}
		return Unify(a.Right, b.Right, sub)

	case *types.VariantType:
		b, ok := t2.(*types.VariantType)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		if len(a.Labels) != len(b.Labels) {
			return nil, fmt.Errorf("variant shape mismatch: %s vs %s", t1, t2)
		}
		bIndex := make(map[string]types.Type, len(b.Labels))
		for i, l := range b.Labels {
			bIndex[l] = b.Types[i]
		}
		var err error
		for i, l := range a.Labels {
			bt, ok := bIndex[l]
			if !ok {
				return nil, fmt.Errorf("variant label %s missing in %s", l, t2)
			}
			sub, err = Unify(a.Types[i], bt, sub)
			if err != nil {
				return nil, err
			}
		}
		return sub, nil

	case *types.ListType:
		b, ok := t2.(*types.ListType)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		return Unify(a.Elem, b.Elem, sub)

	case *types.RefType:
		b, ok := t2.(*types.RefType)
		if !ok {
			return nil, mismatch(t1, t2)
		}
		return Unify(a.Inner, b.Inner, sub)

	default:
		return nil, mismatch(t1, t2)
	}
}

func bind(v *types.TypeVar, t types.Type, sub types.Substitution) (types.Substitution, error) {
	if other, ok := t.(*types.TypeVar); ok && other.ID == v.ID {
		return sub, nil
	}
	if types.Occurs(v, t) {
		return nil, &occursError{Var: v, Type: t}
	}
	next := make(types.Substitution, len(sub)+1)
	for k, val := range sub {
		next[k] = val
	}
	next[key(v)] = t
	return next, nil
}

func mismatch(t1, t2 types.Type) error {
	return fmt.Errorf("cannot unify %s with %s", t1, t2)
}
