// Package diag implements the append-only diagnostic sink: a closed
// ErrorKind enumeration, a Diagnostic record carrying typed Arg payloads,
// and a registry of message templates in the teacher's codes.go style.
//
// Diagnostics are collected, never thrown: every ErrorKind here is a user-
// facing finding about the checked program. Internal invariant violations
// (duplicate scope binding, an unrecognized CST shape) are not diagnostics
// — those are Go panics raised directly by the offending package.
package diag

import (
	"fmt"
	"strings"
)

// ErrorKind is the closed set of user-facing diagnostic kinds, grounded on
// original_source/src/error/error.py's ErrorKind enum.
type ErrorKind int

const (
	_ ErrorKind = iota

	// Declaration-level.
	MissingMain
	IncorrectArityOfMain

	// Variable / scope.
	UndefinedVariable
	DuplicateVariableBinding

	// Shape mismatches: "expected one shape, the expression is another".
	UnexpectedTypeForExpression
	NotAFunction
	NotATuple
	NotARecord
	NotAList
	NotAReference
	NotAGenericFunction

	// Unexpected construct for expected non-matching type: "expected is
	// present but has the wrong shape for this construct".
	UnexpectedLambda
	UnexpectedTuple
	UnexpectedRecord
	UnexpectedVariant
	UnexpectedList
	UnexpectedReference
	UnexpectedInjection
	UnexpectedMemoryAddress

	// Lambda / function parameter mismatches.
	UnexpectedTypeForParameter
	UnexpectedNumberOfParametersInLambda
	IncorrectNumberOfArguments

	// Tuple / record / variant field mismatches.
	TupleIndexOutOfBounds
	UnexpectedTupleLength
	MissingRecordFields
	UnexpectedRecordFields
	DuplicateRecordFields
	UnexpectedFieldAccess
	UnexpectedVariantLabel
	MissingDataForLabel
	UnexpectedDataForNullaryLabel

	// Ambiguity: type reconstruction could not pin down a unique answer
	// and reconstruction is unavailable or still undetermined.
	AmbiguousSumType
	AmbiguousVariantType
	AmbiguousList
	AmbiguousThrowType
	AmbiguousPanicType
	AmbiguousReferenceType
	AmbiguousTypeCast
	AmbiguousLetRecBindingType

	// Pattern matching.
	IllegalEmptyMatching
	NonexhaustiveMatchPatterns
	UnexpectedPatternForType

	// Exceptions.
	ExceptionTypeNotDeclared

	// Type application / generics.
	UndefinedTypeVariable
	IncorrectArityOfTypeApplication

	// Unification (only reachable when type reconstruction is enabled).
	OccursCheckInfiniteType
	NotASubtype
)

var kindNames = map[ErrorKind]string{
	MissingMain:                          "MISSING_MAIN",
	IncorrectArityOfMain:                 "INCORRECT_ARITY_OF_MAIN",
	UndefinedVariable:                    "UNDEFINED_VARIABLE",
	DuplicateVariableBinding:             "DUPLICATE_VARIABLE_BINDING",
	UnexpectedTypeForExpression:          "UNEXPECTED_TYPE_FOR_EXPRESSION",
	NotAFunction:                         "NOT_A_FUNCTION",
	NotATuple:                            "NOT_A_TUPLE",
	NotARecord:                           "NOT_A_RECORD",
	NotAList:                             "NOT_A_LIST",
	NotAReference:                        "NOT_A_REFERENCE",
	NotAGenericFunction:                  "NOT_A_GENERIC_FUNCTION",
	UnexpectedLambda:                     "UNEXPECTED_LAMBDA",
	UnexpectedTuple:                      "UNEXPECTED_TUPLE",
	UnexpectedRecord:                     "UNEXPECTED_RECORD",
	UnexpectedVariant:                    "UNEXPECTED_VARIANT",
	UnexpectedList:                       "UNEXPECTED_LIST",
	UnexpectedReference:                  "UNEXPECTED_REFERENCE",
	UnexpectedInjection:                  "UNEXPECTED_INJECTION",
	UnexpectedMemoryAddress:              "UNEXPECTED_MEMORY_ADDRESS",
	UnexpectedTypeForParameter:           "UNEXPECTED_TYPE_FOR_PARAMETER",
	UnexpectedNumberOfParametersInLambda: "UNEXPECTED_NUMBER_OF_PARAMETERS_IN_LAMBDA",
	IncorrectNumberOfArguments:           "INCORRECT_NUMBER_OF_ARGUMENTS",
	TupleIndexOutOfBounds:                "TUPLE_INDEX_OUT_OF_BOUNDS",
	UnexpectedTupleLength:                "UNEXPECTED_TUPLE_LENGTH",
	MissingRecordFields:                  "MISSING_RECORD_FIELDS",
	UnexpectedRecordFields:               "UNEXPECTED_RECORD_FIELDS",
	DuplicateRecordFields:                "DUPLICATE_RECORD_FIELDS",
	UnexpectedFieldAccess:                "UNEXPECTED_FIELD_ACCESS",
	UnexpectedVariantLabel:               "UNEXPECTED_VARIANT_LABEL",
	MissingDataForLabel:                  "MISSING_DATA_FOR_LABEL",
	UnexpectedDataForNullaryLabel:        "UNEXPECTED_DATA_FOR_NULLARY_LABEL",
	AmbiguousSumType:                     "AMBIGUOUS_SUM_TYPE",
	AmbiguousVariantType:                 "AMBIGUOUS_VARIANT_TYPE",
	AmbiguousList:                        "AMBIGUOUS_LIST",
	AmbiguousThrowType:                   "AMBIGUOUS_THROW_TYPE",
	AmbiguousPanicType:                   "AMBIGUOUS_PANIC_TYPE",
	AmbiguousReferenceType:               "AMBIGUOUS_REFERENCE_TYPE",
	AmbiguousTypeCast:                    "AMBIGUOUS_TYPE_CAST",
	AmbiguousLetRecBindingType:           "AMBIGUOUS_LETREC_BINDING_TYPE",
	IllegalEmptyMatching:                 "ILLEGAL_EMPTY_MATCHING",
	NonexhaustiveMatchPatterns:           "NONEXHAUSTIVE_MATCH_PATTERNS",
	UnexpectedPatternForType:             "UNEXPECTED_PATTERN_FOR_TYPE",
	ExceptionTypeNotDeclared:             "EXCEPTION_TYPE_NOT_DECLARED",
	UndefinedTypeVariable:                "UNDEFINED_TYPE_VARIABLE",
	IncorrectArityOfTypeApplication:      "INCORRECT_ARITY_OF_TYPE_APPLICATION",
	OccursCheckInfiniteType:              "OCCURS_CHECK_INFINITE_TYPE",
	NotASubtype:                          "NOT_A_SUBTYPE",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_ERROR_KIND(%d)", int(k))
}

// ArgKind distinguishes how an Arg should be rendered downstream: a type
// renders via its String(), a node reference renders via the source text
// a real renderer would fetch from the token stream, and a plain value
// renders via its own String/fmt form. Grounded on error.py's `_format`,
// which branches the same way on the Python side (ParserRuleContext vs.
// Type vs. everything else).
type ArgKind int

const (
	ArgType ArgKind = iota
	ArgNodeRef
	ArgPrimitive
)

// Arg is one positional payload value in a Diagnostic, matching error.py's
// `args: list[object]` plus the kind tag our renderer needs since Go has no
// runtime isinstance dispatch.
type Arg struct {
	Kind  ArgKind
	Type  fmt.Stringer // set when Kind == ArgType
	Ref   string       // set when Kind == ArgNodeRef: source text of the node
	Value interface{}  // set when Kind == ArgPrimitive
}

func TypeArg(t fmt.Stringer) Arg    { return Arg{Kind: ArgType, Type: t} }
func NodeRefArg(src string) Arg     { return Arg{Kind: ArgNodeRef, Ref: src} }
func PrimitiveArg(v interface{}) Arg { return Arg{Kind: ArgPrimitive, Value: v} }

func (a Arg) String() string {
	switch a.Kind {
	case ArgType:
		return a.Type.String()
	case ArgNodeRef:
		return a.Ref
	default:
		return fmt.Sprintf("%v", a.Value)
	}
}

// Pos is the minimal source position a collaborating parser is expected to
// attach to every CST node; the checker only ever threads it through.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.Line == 0 && p.Column == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Diagnostic is one collected finding.
type Diagnostic struct {
	Kind ErrorKind
	Args []Arg
	Pos  Pos
}

// Message renders the diagnostic's message template filled in with Args,
// in the style of error.py's error_message property.
func (d Diagnostic) Message() string {
	tmpl, ok := templates[d.Kind]
	if !ok {
		return d.Kind.String()
	}
	rendered := make([]interface{}, len(d.Args))
	for i, a := range d.Args {
		rendered[i] = a.String()
	}
	return fmt.Sprintf(tmpl, rendered...)
}

// templates mirrors error.py's per-kind format strings. Argument order and
// count must match the constructor call sites in internal/checker exactly.
var templates = map[ErrorKind]string{
	MissingMain:                          "no main function declared",
	IncorrectArityOfMain:                 "main must take exactly one parameter, found %s",
	UndefinedVariable:                    "undefined variable %s",
	DuplicateVariableBinding:             "variable %s is already bound in this scope",
	UnexpectedTypeForExpression:          "expected type %s but got %s for expression %s",
	NotAFunction:                         "expected a function type, got %s for expression %s",
	NotATuple:                            "expected a tuple type, got %s for expression %s",
	NotARecord:                           "expected a record type, got %s for expression %s",
	NotAList:                             "expected a list type, got %s for expression %s",
	NotAReference:                        "expected a reference type, got %s for expression %s",
	NotAGenericFunction:                  "expected a generic (universally quantified) type, got %s for expression %s",
	UnexpectedLambda:                     "expected an expression of a non-function type %s but got function type for expression %s",
	UnexpectedTuple:                      "expected an expression of a non-tuple type %s but got tuple type for expression %s",
	UnexpectedRecord:                     "expected an expression of a non-record type %s but got record type for expression %s",
	UnexpectedVariant:                    "expected an expression of a non-variant type %s but got variant type for expression %s",
	UnexpectedList:                       "expected an expression of a non-list type %s but got list type for expression %s",
	UnexpectedReference:                  "expected an expression of a non-reference type %s but got reference type for expression %s",
	UnexpectedInjection:                  "expected sum-type but got %s",
	UnexpectedMemoryAddress:              "unexpected memory address %s while %s is expected",
	UnexpectedTypeForParameter:           "expected parameter type %s but got %s",
	UnexpectedNumberOfParametersInLambda: "expected %s parameters but lambda has %s",
	IncorrectNumberOfArguments:           "expected %s arguments but got %s for expression %s",
	TupleIndexOutOfBounds:                "tuple index %s out of bounds for type %s",
	UnexpectedTupleLength:                "expected tuple of length %s but got %s for expression %s",
	MissingRecordFields:                  "missing record fields %s for type %s",
	UnexpectedRecordFields:               "unexpected record fields %s for type %s",
	DuplicateRecordFields:                "duplicate record field %s in expression %s",
	UnexpectedFieldAccess:                "no field %s on record type %s",
	UnexpectedVariantLabel:               "unexpected variant label %s for type %s",
	MissingDataForLabel:                  "missing data for variant label %s",
	UnexpectedDataForNullaryLabel:        "unexpected data for nullary variant label %s",
	AmbiguousSumType:                     "cannot infer a type for sum injection %s without an expected type",
	AmbiguousVariantType:                 "cannot infer a type for variant %s without an expected type",
	AmbiguousList:                        "cannot infer an element type for empty list %s without an expected type",
	AmbiguousThrowType:                   "cannot infer a type for throw %s without an expected type",
	AmbiguousPanicType:                   "cannot infer a type for panic %s without an expected type",
	AmbiguousReferenceType:               "cannot infer a type for reference %s without an expected type",
	AmbiguousTypeCast:                    "cannot resolve type cast %s without an expected type",
	AmbiguousLetRecBindingType:           "cannot infer a type for letrec binding %s without an annotation",
	IllegalEmptyMatching:                 "match expression %s has no cases",
	NonexhaustiveMatchPatterns:           "patterns in match %s do not cover type %s",
	UnexpectedPatternForType:             "pattern %s is not well-formed for type %s",
	ExceptionTypeNotDeclared:             "no exception type declared, needed by %s",
	UndefinedTypeVariable:                "undefined type variable %s",
	IncorrectArityOfTypeApplication:      "expected %s type arguments but got %s for expression %s",
	OccursCheckInfiniteType:              "cannot construct infinite type: %s occurs in %s",
	NotASubtype:                          "type %s is not a subtype of %s",
}

// Sink is an append-only collector of Diagnostics. It is never reset or
// truncated mid-run: the driver appends to one Sink for the lifetime of a
// single program check, consistent with spec.md's "no error-recovery
// beyond collection" non-goal.
type Sink struct {
	diagnostics []Diagnostic
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Report appends one diagnostic. Never panics, never drops entries.
func (s *Sink) Report(kind ErrorKind, pos Pos, args ...Arg) {
	s.diagnostics = append(s.diagnostics, Diagnostic{Kind: kind, Args: args, Pos: pos})
}

// Diagnostics returns every collected diagnostic in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diagnostics
}

// HasErrors reports whether any diagnostic was collected. Every ErrorKind
// in this package is error-severity; there is no separate warning tier.
func (s *Sink) HasErrors() bool {
	return len(s.diagnostics) > 0
}

// Render produces the human-readable multi-line report, one diagnostic per
// line, in the thin, template-driven style of
// original_source/src/error/error.py's format_errors — deliberately kept
// out of the checker itself.
func Render(diags []Diagnostic) string {
	var b strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&b, "[%s] %s: %s\n", d.Pos, d.Kind, d.Message())
	}
	return b.String()
}
