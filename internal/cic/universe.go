// Package cic implements the Calculus of Inductive Constructions kernel:
// a dependently-typed core language with a stratified universe hierarchy,
// user-declared inductive types, pattern-matching elimination, and the
// type-checking and reduction algorithms that give the calculus its meaning.
package cic

import "fmt"

// Level is a non-negative universe rank.
type Level int

// Succ returns the next level.
func (l Level) Succ() Level {
	return l + 1
}

// LevelMax returns the larger of two levels.
func LevelMax(a, b Level) Level {
	if a > b {
		return a
	}

	return b
}

// LevelIMax returns the impredicative maximum: a dependent product into
// level 0 stays at level 0 regardless of the domain's level.
func LevelIMax(a, b Level) Level {
	if b == 0 {
		return 0
	}

	return LevelMax(a, b)
}

// UniverseKind distinguishes the two sorts of the hierarchy.
type UniverseKind int

const (
	UniverseKindProp UniverseKind = iota
	UniverseKindType
)

// String returns a string representation of the universe kind.
func (uk UniverseKind) String() string {
	switch uk {
	case UniverseKindProp:
		return "Prop"
	case UniverseKindType:
		return "Type"
	default:
		return "unknown"
	}
}

// Universe is a sort: either Prop or Type at a numbered level.
type Universe struct {
	Kind  UniverseKind
	Level Level
}

// Prop is the impredicative universe of propositions.
var Prop = Universe{Kind: UniverseKindProp}

// TypeAt returns the predicative universe at the given level.
func TypeAt(l Level) Universe {
	return Universe{Kind: UniverseKindType, Level: l}
}

// IsProp reports whether the universe is Prop.
func (u Universe) IsProp() bool {
	return u.Kind == UniverseKindProp
}

// IsType reports whether the universe is a Type level.
func (u Universe) IsType() bool {
	return u.Kind == UniverseKindType
}

// Succ returns the universe one step up the hierarchy.
// succ(Prop) = Type1 and succ(Type_l) = Type_{l+1}, so no level is skipped.
func (u Universe) Succ() Universe {
	if u.IsProp() {
		return TypeAt(1)
	}

	if u.Level == 0 {
		return TypeAt(1)
	}

	return TypeAt(u.Level.Succ())
}

// UniverseMax lifts LevelMax to universes; Prop acts as the bottom element.
func UniverseMax(a, b Universe) Universe {
	if a.IsProp() {
		return b
	}

	if b.IsProp() {
		return a
	}

	return TypeAt(LevelMax(a.Level, b.Level))
}

// UniverseIMax lifts LevelIMax to universes; Prop is absorbing on the
// right, which keeps dependent products into Prop inside Prop.
func UniverseIMax(a, b Universe) Universe {
	if b.IsProp() {
		return Prop
	}

	if a.IsProp() {
		return b
	}

	return TypeAt(LevelIMax(a.Level, b.Level))
}

// String returns a string representation of the universe.
func (u Universe) String() string {
	if u.IsProp() {
		return "Prop"
	}

	return fmt.Sprintf("Type%d", u.Level)
}

// ConstraintKind identifies the relation recorded by a universe constraint.
type ConstraintKind int

const (
	// ConstraintLessThan records Left < Right between two levels.
	ConstraintLessThan ConstraintKind = iota
)

// String returns a string representation of the constraint kind.
func (ck ConstraintKind) String() string {
	switch ck {
	case ConstraintLessThan:
		return "<"
	default:
		return "unknown"
	}
}

// UniverseConstraint is an ordered pair of levels with a relation kind.
// The constraint set, viewed as a directed graph over levels, must stay
// acyclic; Context.CheckConsistency enforces that.
type UniverseConstraint struct {
	Left  Level
	Right Level
	Kind  ConstraintKind
}

// String returns a string representation of the constraint.
func (uc UniverseConstraint) String() string {
	return fmt.Sprintf("%d %s %d", uc.Left, uc.Kind.String(), uc.Right)
}
