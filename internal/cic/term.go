package cic

import (
	"fmt"
	"strings"
)

// TermKind represents the kind of a term in the expression language.
type TermKind int

const (
	TermKindVar TermKind = iota
	TermKindLambda
	TermKindApp
	TermKindPi
	TermKindSort
	TermKindConstructor
	TermKindMatch
	TermKindAnnotated
	TermKindLet
)

// String returns the string representation of a TermKind.
func (tk TermKind) String() string {
	switch tk {
	case TermKindVar:
		return "var"
	case TermKindLambda:
		return "lambda"
	case TermKindApp:
		return "app"
	case TermKindPi:
		return "pi"
	case TermKindSort:
		return "sort"
	case TermKindConstructor:
		return "constructor"
	case TermKindMatch:
		return "match"
	case TermKindAnnotated:
		return "annotated"
	case TermKindLet:
		return "let"
	default:
		return "unknown"
	}
}

// Term is an expression of the calculus. Terms are immutable; substitution
// and reduction always build new terms, sharing unchanged sub-terms by
// pointer.
type Term struct {
	Kind TermKind
	Data any
}

// VarTerm is a named variable occurrence.
type VarTerm struct {
	Name string
}

// LambdaTerm is an abstraction binding Param at Domain over Body.
type LambdaTerm struct {
	Param  string
	Domain *Type
	Body   *Term
}

// AppTerm applies Fn to Arg.
type AppTerm struct {
	Fn  *Term
	Arg *Term
}

// PiTerm is dependent-product formation as a term; a Pi is itself
// classified by a universe, so it can appear in term position.
type PiTerm struct {
	Param    string
	Domain   *Type
	Codomain *Type
}

// SortTerm is a universe used as a value.
type SortTerm struct {
	Universe Universe
}

// ConstructorTerm applies a declared inductive constructor to arguments.
type ConstructorTerm struct {
	Name string
	Args []*Term
}

// Pattern names a constructor and the variables bound to its arguments.
type Pattern struct {
	Constructor string
	Binders     []string
}

// MatchBranch pairs a pattern with the body elected when it matches.
type MatchBranch struct {
	Pattern Pattern
	Body    *Term
}

// MatchTerm eliminates an inductive scrutinee over a set of branches.
// Checking requires the branches to cover every constructor of the
// scrutinee's inductive type.
type MatchTerm struct {
	Scrutinee *Term
	Branches  []MatchBranch
}

// AnnotatedTerm ascribes a type to a term; the ascription guides checking
// and is erased by reduction.
type AnnotatedTerm struct {
	Term *Term
	Type *Type
}

// LetTerm binds Value to Name inside Body; eliminated by zeta reduction.
type LetTerm struct {
	Name  string
	Value *Term
	Body  *Term
}

// NewVar creates a variable term.
func NewVar(name string) *Term {
	return &Term{Kind: TermKindVar, Data: &VarTerm{Name: name}}
}

// NewLambda creates an abstraction.
func NewLambda(param string, domain *Type, body *Term) *Term {
	return &Term{Kind: TermKindLambda, Data: &LambdaTerm{Param: param, Domain: domain, Body: body}}
}

// NewApp creates an application.
func NewApp(fn, arg *Term) *Term {
	return &Term{Kind: TermKindApp, Data: &AppTerm{Fn: fn, Arg: arg}}
}

// NewPiTerm creates dependent-product formation in term position.
func NewPiTerm(param string, domain, codomain *Type) *Term {
	return &Term{Kind: TermKindPi, Data: &PiTerm{Param: param, Domain: domain, Codomain: codomain}}
}

// NewSort creates a universe literal.
func NewSort(u Universe) *Term {
	return &Term{Kind: TermKindSort, Data: &SortTerm{Universe: u}}
}

// NewConstructor creates a constructor application.
func NewConstructor(name string, args ...*Term) *Term {
	return &Term{Kind: TermKindConstructor, Data: &ConstructorTerm{Name: name, Args: args}}
}

// NewMatch creates a pattern match.
func NewMatch(scrutinee *Term, branches ...MatchBranch) *Term {
	return &Term{Kind: TermKindMatch, Data: &MatchTerm{Scrutinee: scrutinee, Branches: branches}}
}

// NewAnnotated creates a type-ascribed term.
func NewAnnotated(t *Term, ty *Type) *Term {
	return &Term{Kind: TermKindAnnotated, Data: &AnnotatedTerm{Term: t, Type: ty}}
}

// NewLet creates a let binding.
func NewLet(name string, value, body *Term) *Term {
	return &Term{Kind: TermKindLet, Data: &LetTerm{Name: name, Value: value, Body: body}}
}

// String returns a string representation of the term.
func (t *Term) String() string {
	switch t.Kind {
	case TermKindVar:
		return t.Data.(*VarTerm).Name
	case TermKindLambda:
		d := t.Data.(*LambdaTerm)

		return fmt.Sprintf("λ%s:%s. %s", d.Param, d.Domain.String(), d.Body.String())
	case TermKindApp:
		d := t.Data.(*AppTerm)

		return fmt.Sprintf("(%s %s)", d.Fn.String(), d.Arg.String())
	case TermKindPi:
		d := t.Data.(*PiTerm)

		return fmt.Sprintf("Π(%s:%s). %s", d.Param, d.Domain.String(), d.Codomain.String())
	case TermKindSort:
		return t.Data.(*SortTerm).Universe.String()
	case TermKindConstructor:
		d := t.Data.(*ConstructorTerm)
		if len(d.Args) == 0 {
			return d.Name
		}

		argStrs := make([]string, len(d.Args))
		for i, arg := range d.Args {
			argStrs[i] = arg.String()
		}

		return fmt.Sprintf("%s(%s)", d.Name, strings.Join(argStrs, ", "))
	case TermKindMatch:
		d := t.Data.(*MatchTerm)

		var branchStrs []string
		for _, br := range d.Branches {
			pat := br.Pattern.Constructor
			if len(br.Pattern.Binders) > 0 {
				pat = fmt.Sprintf("%s(%s)", pat, strings.Join(br.Pattern.Binders, ", "))
			}

			branchStrs = append(branchStrs, fmt.Sprintf("| %s => %s", pat, br.Body.String()))
		}

		return fmt.Sprintf("match %s with %s", d.Scrutinee.String(), strings.Join(branchStrs, " "))
	case TermKindAnnotated:
		d := t.Data.(*AnnotatedTerm)

		return fmt.Sprintf("(%s : %s)", d.Term.String(), d.Type.String())
	case TermKindLet:
		d := t.Data.(*LetTerm)

		return fmt.Sprintf("let %s := %s in %s", d.Name, d.Value.String(), d.Body.String())
	default:
		return "unknown"
	}
}

// FreeVars returns the set of variable names occurring free in the term.
func (t *Term) FreeVars() map[string]struct{} {
	out := make(map[string]struct{})
	t.freeVars(make(map[string]int), out)

	return out
}

// ContainsVar reports whether name occurs free in the term.
func (t *Term) ContainsVar(name string) bool {
	_, ok := t.FreeVars()[name]

	return ok
}

func (t *Term) freeVars(bound map[string]int, out map[string]struct{}) {
	switch t.Kind {
	case TermKindVar:
		d := t.Data.(*VarTerm)
		if bound[d.Name] == 0 {
			out[d.Name] = struct{}{}
		}
	case TermKindLambda:
		d := t.Data.(*LambdaTerm)
		d.Domain.freeVars(bound, out)
		bound[d.Param]++
		d.Body.freeVars(bound, out)
		bound[d.Param]--
	case TermKindApp:
		d := t.Data.(*AppTerm)
		d.Fn.freeVars(bound, out)
		d.Arg.freeVars(bound, out)
	case TermKindPi:
		d := t.Data.(*PiTerm)
		d.Domain.freeVars(bound, out)
		bound[d.Param]++
		d.Codomain.freeVars(bound, out)
		bound[d.Param]--
	case TermKindSort:
	case TermKindConstructor:
		d := t.Data.(*ConstructorTerm)
		for _, arg := range d.Args {
			arg.freeVars(bound, out)
		}
	case TermKindMatch:
		d := t.Data.(*MatchTerm)
		d.Scrutinee.freeVars(bound, out)

		for _, br := range d.Branches {
			for _, b := range br.Pattern.Binders {
				bound[b]++
			}

			br.Body.freeVars(bound, out)

			for _, b := range br.Pattern.Binders {
				bound[b]--
			}
		}
	case TermKindAnnotated:
		d := t.Data.(*AnnotatedTerm)
		d.Term.freeVars(bound, out)
		d.Type.freeVars(bound, out)
	case TermKindLet:
		d := t.Data.(*LetTerm)
		d.Value.freeVars(bound, out)
		bound[d.Name]++
		d.Body.freeVars(bound, out)
		bound[d.Name]--
	}
}

// Equal reports structural equality up to alpha-conversion of binders.
func (t *Term) Equal(other *Term) bool {
	if t == other {
		return true
	}

	if t == nil || other == nil || t.Kind != other.Kind {
		return false
	}

	switch t.Kind {
	case TermKindVar:
		return t.Data.(*VarTerm).Name == other.Data.(*VarTerm).Name
	case TermKindLambda:
		a := t.Data.(*LambdaTerm)
		b := other.Data.(*LambdaTerm)

		return a.Domain.Equal(b.Domain) && alphaBodyEqual(a.Param, a.Body, b.Param, b.Body)
	case TermKindApp:
		a := t.Data.(*AppTerm)
		b := other.Data.(*AppTerm)

		return a.Fn.Equal(b.Fn) && a.Arg.Equal(b.Arg)
	case TermKindPi:
		a := t.Data.(*PiTerm)
		b := other.Data.(*PiTerm)

		return a.Domain.Equal(b.Domain) && alphaCodomainEqual(a.Param, a.Codomain, b.Param, b.Codomain)
	case TermKindSort:
		return t.Data.(*SortTerm).Universe == other.Data.(*SortTerm).Universe
	case TermKindConstructor:
		a := t.Data.(*ConstructorTerm)
		b := other.Data.(*ConstructorTerm)

		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}

		for i := range a.Args {
			if !a.Args[i].Equal(b.Args[i]) {
				return false
			}
		}

		return true
	case TermKindMatch:
		a := t.Data.(*MatchTerm)
		b := other.Data.(*MatchTerm)

		if !a.Scrutinee.Equal(b.Scrutinee) || len(a.Branches) != len(b.Branches) {
			return false
		}

		for i := range a.Branches {
			if !branchEqual(a.Branches[i], b.Branches[i]) {
				return false
			}
		}

		return true
	case TermKindAnnotated:
		a := t.Data.(*AnnotatedTerm)
		b := other.Data.(*AnnotatedTerm)

		return a.Term.Equal(b.Term) && a.Type.Equal(b.Type)
	case TermKindLet:
		a := t.Data.(*LetTerm)
		b := other.Data.(*LetTerm)

		return a.Value.Equal(b.Value) && alphaBodyEqual(a.Name, a.Body, b.Name, b.Body)
	default:
		return false
	}
}

// alphaBodyEqual compares two binder bodies, renaming both binders to a
// common fresh name when they differ.
func alphaBodyEqual(x string, a *Term, y string, b *Term) bool {
	if x == y {
		return a.Equal(b)
	}

	avoid := a.FreeVars()
	for v := range b.FreeVars() {
		avoid[v] = struct{}{}
	}

	fresh := NewVar(freshName(x, avoid))

	return a.Substitute(x, fresh).Equal(b.Substitute(y, fresh))
}

func branchEqual(a, b MatchBranch) bool {
	if a.Pattern.Constructor != b.Pattern.Constructor || len(a.Pattern.Binders) != len(b.Pattern.Binders) {
		return false
	}

	sameBinders := true

	for i := range a.Pattern.Binders {
		if a.Pattern.Binders[i] != b.Pattern.Binders[i] {
			sameBinders = false

			break
		}
	}

	if sameBinders {
		return a.Body.Equal(b.Body)
	}

	avoid := a.Body.FreeVars()
	for v := range b.Body.FreeVars() {
		avoid[v] = struct{}{}
	}

	subsA := make(map[string]*Term, len(a.Pattern.Binders))
	subsB := make(map[string]*Term, len(b.Pattern.Binders))

	for i := range a.Pattern.Binders {
		fresh := freshName(a.Pattern.Binders[i], avoid)
		avoid[fresh] = struct{}{}
		subsA[a.Pattern.Binders[i]] = NewVar(fresh)
		subsB[b.Pattern.Binders[i]] = NewVar(fresh)
	}

	return a.Body.SubstituteAll(subsA).Equal(b.Body.SubstituteAll(subsB))
}
