package cic

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes kernel failures.
type ErrorKind int

const (
	ErrUnboundVariable ErrorKind = iota
	ErrTypeMismatch
	ErrUniverse
	ErrReduction
	ErrNonExhaustiveMatch
	ErrDuplicateDeclaration
	ErrNotImplemented
)

// String returns the string representation of an ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnboundVariable:
		return "unbound-variable"
	case ErrTypeMismatch:
		return "type-mismatch"
	case ErrUniverse:
		return "universe"
	case ErrReduction:
		return "reduction"
	case ErrNonExhaustiveMatch:
		return "non-exhaustive-match"
	case ErrDuplicateDeclaration:
		return "duplicate-declaration"
	case ErrNotImplemented:
		return "not-implemented"
	default:
		return "unknown"
	}
}

// TypeError is the kernel's error type. Every checking and reduction rule
// that can fail returns the first failure unchanged; nothing panics.
type TypeError struct {
	Kind     ErrorKind
	Name     string
	Expected *Type
	Found    *Type
	Missing  []string
	Message  string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	switch e.Kind {
	case ErrUnboundVariable:
		return fmt.Sprintf("unbound variable: %s", e.Name)
	case ErrTypeMismatch:
		if e.Expected != nil && e.Found != nil {
			return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected.String(), e.Found.String())
		}

		return fmt.Sprintf("type mismatch: %s", e.Message)
	case ErrUniverse:
		return fmt.Sprintf("universe error: %s", e.Message)
	case ErrReduction:
		return fmt.Sprintf("reduction error: %s", e.Message)
	case ErrNonExhaustiveMatch:
		return fmt.Sprintf("non-exhaustive match on %s: missing %s", e.Name, strings.Join(e.Missing, ", "))
	case ErrDuplicateDeclaration:
		return fmt.Sprintf("duplicate declaration: %s", e.Name)
	case ErrNotImplemented:
		return fmt.Sprintf("not implemented: %s", e.Message)
	default:
		return e.Message
	}
}

// NewUnboundVariable reports a lookup of an undeclared name.
func NewUnboundVariable(name string) *TypeError {
	return &TypeError{Kind: ErrUnboundVariable, Name: name}
}

// NewTypeMismatch reports that found is not convertible to expected.
func NewTypeMismatch(expected, found *Type) *TypeError {
	return &TypeError{Kind: ErrTypeMismatch, Expected: expected, Found: found}
}

// NewTypeMismatchMessage reports a shape mismatch that has no single
// expected classifier, such as applying a non-function.
func NewTypeMismatchMessage(format string, args ...any) *TypeError {
	return &TypeError{Kind: ErrTypeMismatch, Message: fmt.Sprintf(format, args...)}
}

// NewUniverseError reports an inconsistent or unsatisfiable constraint set.
func NewUniverseError(format string, args ...any) *TypeError {
	return &TypeError{Kind: ErrUniverse, Message: fmt.Sprintf(format, args...)}
}

// NewReductionError reports a reduction that exhausted its step budget.
func NewReductionError(format string, args ...any) *TypeError {
	return &TypeError{Kind: ErrReduction, Message: fmt.Sprintf(format, args...)}
}

// NewNonExhaustiveMatch reports uncovered constructors of an inductive type.
func NewNonExhaustiveMatch(inductive string, missing []string) *TypeError {
	return &TypeError{Kind: ErrNonExhaustiveMatch, Name: inductive, Missing: missing}
}

// NewDuplicateDeclaration reports a redeclared inductive or constructor name.
func NewDuplicateDeclaration(name string) *TypeError {
	return &TypeError{Kind: ErrDuplicateDeclaration, Name: name}
}

// NewNotImplemented marks a calculus feature under construction. It must be
// a distinguishable error, never a silent success.
func NewNotImplemented(format string, args ...any) *TypeError {
	return &TypeError{Kind: ErrNotImplemented, Message: fmt.Sprintf(format, args...)}
}
