// Package translate implements the total CST type-node -> types.Type
// translator: every well-formed type node in the external CST surface maps
// to exactly one types.Type value. An unrecognized node Kind reaching this
// package is a parser/checker mismatch, not a user error, and panics.
package translate

import (
	"fmt"

	"github.com/d-tolmachev/stella-type-checker/internal/cst"
	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

// Type translates one CST type node into the internal type algebra. fresh
// mints the TypeVar for an "auto"/inferred type spot (spec.md §4.3):
// translation always produces a fresh variable there, independent of
// whether type reconstruction is enabled.
func Type(n *cst.Node, fresh *types.Fresh) types.Type {
	switch n.Kind {
	case "TypeNat":
		return types.Nat
	case "TypeBool":
		return types.Bool
	case "TypeUnit":
		return types.Unit
	case "TypeTop":
		return types.Top
	case "TypeBottom":
		return types.Bot
	case "TypeAuto":
		return fresh.Var()
	case "TypeFun":
		return translateFun(n, fresh)
	case "TypeTuple":
		return translateTuple(n, fresh)
	case "TypeRecord":
		return translateRecord(n, fresh)
	case "TypeSum":
		left := Type(n.Child("left"), fresh)
		right := Type(n.Child("right"), fresh)
		return types.NewSum(left, right)
	case "TypeVariant":
		return translateVariant(n, fresh)
	case "TypeList":
		return types.NewList(Type(n.Child("elem"), fresh))
	case "TypeRef":
		return types.NewRef(Type(n.Child("inner"), fresh))
	case "TypeVar":
		return types.NewGeneric(n.Str("name"))
	case "TypeForall":
		return translateForall(n, fresh)
	default:
		panic(fmt.Sprintf("translate: unrecognized type node kind %q", n.Kind))
	}
}

// translateFun curries a multi-parameter function type right-to-left:
// fn(T1, T2) -> T3 becomes Fun(T1, Fun(T2, T3)), matching the checker's
// single-argument FunType representation.
func translateFun(n *cst.Node, fresh *types.Fresh) types.Type {
	params := n.Children("params")
	ret := Type(n.Child("ret"), fresh)
	result := ret
	for i := len(params) - 1; i >= 0; i-- {
		result = types.NewFun(Type(params[i], fresh), result)
	}
	return result
}

func translateTuple(n *cst.Node, fresh *types.Fresh) types.Type {
	elemNodes := n.Children("elems")
	elems := make([]types.Type, len(elemNodes))
	for i, e := range elemNodes {
		elems[i] = Type(e, fresh)
	}
	return types.NewTuple(elems...)
}

func translateRecord(n *cst.Node, fresh *types.Fresh) types.Type {
	fieldNodes := n.Children("fields")
	labels := make([]string, len(fieldNodes))
	fieldTypes := make([]types.Type, len(fieldNodes))
	for i, f := range fieldNodes {
		labels[i] = f.Str("label")
		fieldTypes[i] = Type(f.Child("type"), fresh)
	}
	return types.NewRecord(labels, fieldTypes)
}

func translateVariant(n *cst.Node, fresh *types.Fresh) types.Type {
	fieldNodes := n.Children("labels")
	labels := make([]string, len(fieldNodes))
	fieldTypes := make([]types.Type, len(fieldNodes))
	for i, f := range fieldNodes {
		labels[i] = f.Str("label")
		if typeNode := f.OptChild("type"); typeNode != nil {
			fieldTypes[i] = Type(typeNode, fresh)
		} else {
			// nullary variant label: carries no payload type. Represented
			// as Unit, matching the nullary-variant-labels extension's
			// treatment of a label with no declared payload.
			fieldTypes[i] = types.Unit
		}
	}
	return types.NewVariant(labels, fieldTypes)
}

func translateForall(n *cst.Node, fresh *types.Fresh) types.Type {
	paramNodes := n.Children("params")
	params := make([]string, len(paramNodes))
	for i, p := range paramNodes {
		params[i] = p.Str("name")
	}
	body := Type(n.Child("body"), fresh)
	return types.NewForall(params, body)
}
