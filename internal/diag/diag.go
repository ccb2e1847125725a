// Package diag defines the diagnostic record shape emitted by the parser,
// signature analyzer, and dataflow solver, following the teacher's
// CompilerError: a position-anchored message with source context, but
// generalized to a {range, code, args} record so callers can localize or
// machine-filter by Code rather than parsing rendered text.
package diag

import (
	"fmt"

	"github.com/gscls/analyzer/pkg/token"
)

// Severity classifies a Diagnostic for editor presentation.
type Severity int

const (
	Error Severity = iota
	Warning
	Information
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Information:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Code enumerates the diagnostic codes of spec §4.7, plus the
// SPEC_FULL.md §13 supplement (UnreachableStatement).
type Code string

const (
	ExpectedToken                 Code = "ExpectedToken"
	ExpectedSemiColon             Code = "ExpectedSemiColon"
	ExpectedScriptDefn            Code = "ExpectedScriptDefn"
	ReservedSymbol                Code = "ReservedSymbol"
	RedefinitionOfSymbol          Code = "RedefinitionOfSymbol"
	UnusedParameter               Code = "UnusedParameter"
	UnusedVariable                Code = "UnusedVariable"
	UnusedUsing                   Code = "UnusedUsing"
	DuplicateCaseLabel            Code = "DuplicateCaseLabel"
	UnreachableCase               Code = "UnreachableCase"
	UnreachableStatement          Code = "UnreachableStatement"
	MultipleDefaultLabels         Code = "MultipleDefaultLabels"
	NoImplicitConversionExists    Code = "NoImplicitConversionExists"
	OperatorNotSupportedOnTypes   Code = "OperatorNotSupportedOnTypes"
	CannotAssignToConstant        Code = "CannotAssignToConstant"
	CannotAssignToReadOnlyProperty Code = "CannotAssignToReadOnlyProperty"
	CannotAssignToImmutableEntity Code = "CannotAssignToImmutableEntity"
	DoesNotContainMember          Code = "DoesNotContainMember"
	PredefinedFieldTypeMismatch   Code = "PredefinedFieldTypeMismatch"
	InvalidAssignmentTarget       Code = "InvalidAssignmentTarget"
	TooFewArguments               Code = "TooFewArguments"
	TooManyArguments               Code = "TooManyArguments"
	// TooFewArgumentsUnverified/TooManyArgumentsUnverified are the same
	// arity check against an autogenerated built-in's overload list (spec
	// §4.6: "tag autogenerated built-ins with an 'unverified' variant"),
	// since that overload list was not hand-verified against the engine.
	TooFewArgumentsUnverified  Code = "TooFewArgumentsUnverified"
	TooManyArgumentsUnverified Code = "TooManyArgumentsUnverified"
	FunctionDoesNotExist          Code = "FunctionDoesNotExist"
	ExpectedFunction              Code = "ExpectedFunction"
	UnknownNamespace              Code = "UnknownNamespace"
	DivisionByZero                Code = "DivisionByZero"
	PossibleUndefinedComparison   Code = "PossibleUndefinedComparison"
	StoreFunctionAsPointer        Code = "StoreFunctionAsPointer"
	AssignOnThreadedFunction      Code = "AssignOnThreadedFunction"
	InvalidExpressionStatement    Code = "InvalidExpressionStatement"
	CannotEnumerateType           Code = "CannotEnumerateType"
	InvalidVectorComponent        Code = "InvalidVectorComponent"
	ExpectedConstantExpression    Code = "ExpectedConstantExpression"

	// InvalidBreakContext/InvalidContinueContext enforce the parser-level
	// context-flag invariant of spec §4.1: `break` requires loop-or-switch,
	// `continue` requires loop.
	InvalidBreakContext    Code = "InvalidBreakContext"
	InvalidContinueContext Code = "InvalidContinueContext"

	// InternalFault tags a fatal internal error (§7 tier 3).
	InternalFault Code = "InternalFault"
)

// FaultKind categorizes an InternalFault by pipeline stage, per §7: lex,
// pre(processing), ast (parse), sa (signature analysis), spa (solver/pass
// analysis).
type FaultKind string

const (
	FaultLex FaultKind = "lex"
	FaultPre FaultKind = "pre"
	FaultAST FaultKind = "ast"
	FaultSA  FaultKind = "sa"
	FaultSPA FaultKind = "spa"
)

// Diagnostic is one emitted finding.
type Diagnostic struct {
	Range    token.Range
	Severity Severity
	Code     Code
	Args     []any
	// File optionally identifies the originating buffer for multi-file
	// callers (the workspace manager); empty for single-buffer analysis.
	File string
}

// Message renders Args into the code's human-readable template. Unknown
// codes fall back to a generic "code(args)" rendering.
func (d Diagnostic) Message() string {
	if tmpl, ok := templates[d.Code]; ok {
		return fmt.Sprintf(tmpl, d.Args...)
	}
	return fmt.Sprintf("%s%v", d.Code, d.Args)
}

var templates = map[Code]string{
	ExpectedToken:                  "expected %s, found %s",
	ExpectedSemiColon:              "expected ';'",
	ExpectedScriptDefn:             "expected a function, class, or namespace definition",
	ReservedSymbol:                 "%q is a reserved symbol",
	RedefinitionOfSymbol:           "%q is already defined",
	UnusedParameter:                "parameter %q is never used",
	UnusedVariable:                 "variable %q is never used",
	UnusedUsing:                    "dependency %q is never used",
	DuplicateCaseLabel:             "duplicate case label %v",
	UnreachableCase:                "unreachable case label %v",
	UnreachableStatement:           "unreachable statement",
	MultipleDefaultLabels:          "multiple default labels in switch",
	NoImplicitConversionExists:     "no implicit conversion from %s to %s",
	OperatorNotSupportedOnTypes:    "operator %q not supported on types %s and %s",
	CannotAssignToConstant:         "cannot assign to constant %q",
	CannotAssignToReadOnlyProperty: "cannot assign to read-only property %q",
	CannotAssignToImmutableEntity:  "cannot assign to field %q on an immutable entity",
	DoesNotContainMember:           "type %s does not contain a member named %q",
	PredefinedFieldTypeMismatch:    "field %q expects type %s, got %s",
	InvalidAssignmentTarget:        "invalid assignment target",
	TooFewArguments:                "too few arguments to %q: expected at least %d, got %d",
	TooManyArguments:               "too many arguments to %q: expected at most %d, got %d",
	TooFewArgumentsUnverified:      "too few arguments to %q: expected at least %d, got %d (unverified: autogenerated signature)",
	TooManyArgumentsUnverified:     "too many arguments to %q: expected at most %d, got %d (unverified: autogenerated signature)",
	FunctionDoesNotExist:           "function %q does not exist",
	ExpectedFunction:               "expected a function, got %s",
	UnknownNamespace:               "unknown namespace %q",
	DivisionByZero:                 "division by zero",
	PossibleUndefinedComparison:    "comparing a possibly undefined value; use IsDefined() first",
	StoreFunctionAsPointer:         "storing a threaded call result as a function pointer has no effect",
	AssignOnThreadedFunction:       "assigning the result of a threaded call always yields undefined",
	InvalidExpressionStatement:     "expression result is unused",
	CannotEnumerateType:            "cannot enumerate a value of type %s",
	InvalidVectorComponent:         "vector component must be a number",
	ExpectedConstantExpression:     "expected a constant expression",
	InvalidBreakContext:            "'break' is only valid inside a loop or switch",
	InvalidContinueContext:         "'continue' is only valid inside a loop",
	InternalFault:                  "internal error (%s): %v",
}

// New builds a Diagnostic.
func New(r token.Range, sev Severity, code Code, args ...any) Diagnostic {
	return Diagnostic{Range: r, Severity: sev, Code: code, Args: args}
}

// Internal builds the single top-level diagnostic surfaced for a fatal
// internal error, anchored at (0,0)-(0,1) per §7.
func Internal(kind FaultKind, err error) Diagnostic {
	zero := token.Position{Line: 0, Character: 0}
	one := token.Position{Line: 0, Character: 1}
	return New(token.Range{Start: zero, End: one}, Error, InternalFault, string(kind), err)
}
