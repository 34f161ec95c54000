// Package driver ties the checker, constraint store and diagnostic sink
// together into the two-pass top-level driver: a first pass collects every
// top-level function's declared signature (so forward references and
// mutual recursion between top-level functions work without a fixpoint),
// and a second pass checks every function body against its own declared
// signature. The driver also owns the single Fresh TypeVar counter and the
// post-pass constraint solve used only when type reconstruction is on.
package driver

import (
	"github.com/d-tolmachev/stella-type-checker/internal/checker"
	"github.com/d-tolmachev/stella-type-checker/internal/constraint"
	"github.com/d-tolmachev/stella-type-checker/internal/cst"
	"github.com/d-tolmachev/stella-type-checker/internal/diag"
	"github.com/d-tolmachev/stella-type-checker/internal/flags"
	"github.com/d-tolmachev/stella-type-checker/internal/tenv"
	"github.com/d-tolmachev/stella-type-checker/internal/translate"
	"github.com/d-tolmachev/stella-type-checker/internal/types"
)

// Result is the outcome of checking one program: every diagnostic
// collected, in report order.
type Result struct {
	Diagnostics []diag.Diagnostic
}

// Run checks prog under the given extension flags and returns every
// diagnostic collected. It never returns an error itself — a Go error
// return is reserved for things outside the checked program's control
// (there are none here); program-level problems are all Diagnostics.
func Run(prog *cst.Program, flagSet *flags.Set) Result {
	sink := diag.NewSink()
	fresh := types.NewFresh()
	store := constraint.NewStore()
	c := checker.New(sink, flagSet, fresh, store)

	root := tenv.New()

	// Pass 1: collect every top-level function signature and the ambient
	// exception type declaration (if any) before checking any body, so
	// mutually- and forward-referencing top-level functions resolve.
	funcs := make([]*cst.Node, 0, len(prog.Decls))
	for _, decl := range prog.Decls {
		switch decl.Kind {
		case "DeclFun":
			sig := functionSignature(decl, fresh)
			root.SaveFunctionalType(decl.Str("name"), sig)
			funcs = append(funcs, decl)
		case "DeclExceptionType":
			root.SaveExceptionType(translate.Type(decl.Child("type"), fresh))
		case "DeclExceptionVariant":
			// an exception variant declaration folds its labels into the
			// ambient exception type as an (open) variant; modeled as a
			// plain VariantType, matching spec.md's treatment of
			// open-variant-exceptions as a flat label set.
			ty := translate.Type(decl.Child("type"), fresh)
			if prev, ok := root.ResolveExceptionType(); ok {
				pv, prevIsVariant := prev.(*types.VariantType)
				nv, newIsVariant := ty.(*types.VariantType)
				if prevIsVariant && newIsVariant {
					labels := append(append([]string(nil), pv.Labels...), nv.Labels...)
					tys := append(append([]types.Type(nil), pv.Types...), nv.Types...)
					ty = types.NewVariant(labels, tys)
				}
			}
			root.SaveExceptionType(ty)
		}
	}

	checkMain(sink, funcs)

	// Pass 2: check every function body against its own declared
	// signature, in declaration order.
	for _, decl := range funcs {
		checkFunctionBody(c, root, decl, fresh)
	}

	if flagSet.Has(flags.TypeReconstruction) {
		_, failures := store.Solve()
		for _, f := range failures {
			pos := diag.Pos{Line: f.Constraint.Pos.Line, Column: f.Constraint.Pos.Column}
			switch f.Kind {
			case constraint.FailureOccurs:
				sink.Report(diag.OccursCheckInfiniteType, pos,
					diag.TypeArg(f.Constraint.Left), diag.TypeArg(f.Constraint.Right))
			default:
				// no originating expression survives into the constraint
				// store, only the two types that failed to unify; render
				// the constraint itself in the message's expression slot.
				sink.Report(diag.UnexpectedTypeForExpression, pos,
					diag.TypeArg(f.Constraint.Left), diag.TypeArg(f.Constraint.Right), diag.NodeRefArg("<constraint>"))
			}
		}
	}

	return Result{Diagnostics: sink.Diagnostics()}
}

// functionSignature builds the curried FunType for a DeclFun node's
// parameter list and declared return type.
func functionSignature(decl *cst.Node, fresh *types.Fresh) types.Type {
	params := decl.Children("params")
	ret := translate.Type(decl.Child("returnType"), fresh)
	result := ret
	for i := len(params) - 1; i >= 0; i-- {
		paramTy := translate.Type(params[i].Child("type"), fresh)
		result = types.NewFun(paramTy, result)
	}
	return result
}

// checkMain enforces spec.md's entry-point contract: exactly one
// declaration named "main", taking exactly one parameter.
func checkMain(sink *diag.Sink, funcs []*cst.Node) {
	for _, decl := range funcs {
		if decl.Str("name") != "main" {
			continue
		}
		params := decl.Children("params")
		if len(params) != 1 {
			sink.Report(diag.IncorrectArityOfMain, diag.Pos{Line: decl.Pos.Line, Column: decl.Pos.Column},
				diag.PrimitiveArg(len(params)))
		}
		return
	}
	sink.Report(diag.MissingMain, diag.Pos{})
}

func checkFunctionBody(c *checker.Checker, root *tenv.TypeContext, decl *cst.Node, fresh *types.Fresh) {
	child := root.Child()
	for _, p := range decl.Children("params") {
		child.SaveVariableType(p.Str("name"), translate.Type(p.Child("type"), fresh))
	}
	returnTy := translate.Type(decl.Child("returnType"), fresh)
	c.Check(child, decl.Child("body"), returnTy)
}
