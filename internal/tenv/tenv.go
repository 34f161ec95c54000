// Package tenv implements the persistent, lexically-nested type context:
// a chain of scopes linked by parent pointer only. A child scope never
// mutates its parent; it allocates its own maps on first write.
package tenv

import (
	"fmt"

	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

// TypeContext binds term variables, function signatures and in-scope
// generic names, plus one ambient exception type shared by throw,
// try-catch and try-with.
// Grounded on original_source/src/type/typeContext.py: a scope holds its
// own bindings and only reads upward through parent on a miss.
type TypeContext struct {
	parent *TypeContext

	variableTypes  map[string]types.Type
	functionalTypes map[string]types.Type
	generics       map[string]bool

	exceptionType    types.Type
	hasExceptionType bool
}

// New creates a root context with no parent.
func New() *TypeContext {
	return &TypeContext{}
}

// Child allocates a new scope whose parent is ctx. ctx itself is never
// mutated by writes through the child.
func (ctx *TypeContext) Child() *TypeContext {
	return &TypeContext{parent: ctx}
}

// SaveVariableType binds name to ty in this scope. Rebinding a name already
// present in THIS scope (not a parent scope — shadowing a parent is fine)
// is a checker bug, not a user error, and panics.
func (ctx *TypeContext) SaveVariableType(name string, ty types.Type) {
	if ctx.variableTypes == nil {
		ctx.variableTypes = make(map[string]types.Type)
	}
	if _, exists := ctx.variableTypes[name]; exists {
		panic(fmt.Sprintf("tenv: variable %q already bound in this scope", name))
	}
	ctx.variableTypes[name] = ty
}

// ResolveVariableType walks up the parent chain until name is found.
func (ctx *TypeContext) ResolveVariableType(name string) (types.Type, bool) {
	for c := ctx; c != nil; c = c.parent {
		if c.variableTypes != nil {
			if ty, ok := c.variableTypes[name]; ok {
				return ty, true
			}
		}
	}
	return nil, false
}

// SaveFunctionalType binds a top-level function's declared signature.
func (ctx *TypeContext) SaveFunctionalType(name string, ty types.Type) {
	if ctx.functionalTypes == nil {
		ctx.functionalTypes = make(map[string]types.Type)
	}
	if _, exists := ctx.functionalTypes[name]; exists {
		panic(fmt.Sprintf("tenv: function %q already bound in this scope", name))
	}
	ctx.functionalTypes[name] = ty
}

// ResolveFunctionalType walks up the parent chain until name is found.
func (ctx *TypeContext) ResolveFunctionalType(name string) (types.Type, bool) {
	for c := ctx; c != nil; c = c.parent {
		if c.functionalTypes != nil {
			if ty, ok := c.functionalTypes[name]; ok {
				return ty, true
			}
		}
	}
	return nil, false
}

// SaveGeneric records that name is a universally-quantified type parameter
// in scope (e.g. under a Forall / generic function body).
func (ctx *TypeContext) SaveGeneric(name string) {
	if ctx.generics == nil {
		ctx.generics = make(map[string]bool)
	}
	if ctx.generics[name] {
		panic(fmt.Sprintf("tenv: generic %q already bound in this scope", name))
	}
	ctx.generics[name] = true
}

// IsGeneric reports whether name is an in-scope generic, walking to parent.
func (ctx *TypeContext) IsGeneric(name string) bool {
	for c := ctx; c != nil; c = c.parent {
		if c.generics != nil && c.generics[name] {
			return true
		}
	}
	return false
}

// SaveExceptionType sets the ambient exception payload type for this scope.
// Unlike variable/function bindings, setting it again in the same scope
// (in any scope) replaces the earlier value; a scope with none set resolves
// to its parent's, matching the original's save/resolve split.
func (ctx *TypeContext) SaveExceptionType(ty types.Type) {
	ctx.exceptionType = ty
	ctx.hasExceptionType = true
}

// ResolveExceptionType walks up the parent chain for the declared exception
// type, used by throw, try-catch and try-with.
func (ctx *TypeContext) ResolveExceptionType() (types.Type, bool) {
	for c := ctx; c != nil; c = c.parent {
		if c.hasExceptionType {
			return c.exceptionType, true
		}
	}
	return nil, false
}
