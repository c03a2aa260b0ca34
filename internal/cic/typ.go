package cic

import "fmt"

// TypeKind represents the kind of a classifier in the type language.
type TypeKind int

const (
	TypeKindNamed TypeKind = iota
	TypeKindPi
	TypeKindProp
	TypeKindUniverse

	// Structural built-in shapes.
	TypeKindUnit
	TypeKindBool
	TypeKindNumber
	TypeKindBottom
	TypeKindTop
	TypeKindSum
	TypeKindProduct
	TypeKindFunction

	// Type-level application of a classifier to a term.
	TypeKindApp
)

// String returns the string representation of a TypeKind.
func (tk TypeKind) String() string {
	switch tk {
	case TypeKindNamed:
		return "named"
	case TypeKindPi:
		return "pi"
	case TypeKindProp:
		return "prop"
	case TypeKindUniverse:
		return "universe"
	case TypeKindUnit:
		return "unit"
	case TypeKindBool:
		return "bool"
	case TypeKindNumber:
		return "number"
	case TypeKindBottom:
		return "bottom"
	case TypeKindTop:
		return "top"
	case TypeKindSum:
		return "sum"
	case TypeKindProduct:
		return "product"
	case TypeKindFunction:
		return "function"
	case TypeKindApp:
		return "app"
	default:
		return "unknown"
	}
}

// Type is a classifier. Keeping Type distinct from Term lets the kernel
// express type-level computation (TypeKindApp) without conflating it with
// term-level reduction; Sort is the bridge in the other direction.
type Type struct {
	Kind TypeKind
	Data any
}

// NamedType refers to a declared inductive type or definition by name.
type NamedType struct {
	Name string
}

// PiType is the dependent function type Π(x:A). B where B may mention x.
type PiType struct {
	Param    string
	Domain   *Type
	Codomain *Type
}

// UniverseType is the classifier Type at a numbered level.
type UniverseType struct {
	Level Level
}

// SumType is the structural binary sum shape.
type SumType struct {
	Left  *Type
	Right *Type
}

// ProductType is the structural binary product shape.
type ProductType struct {
	Left  *Type
	Right *Type
}

// FunctionType is the non-dependent arrow shape.
type FunctionType struct {
	Domain   *Type
	Codomain *Type
}

// TypeApp applies a classifier to a term argument.
type TypeApp struct {
	Fn  *Type
	Arg *Term
}

// Shared instances of the data-free type shapes.
var (
	TypeProp   = &Type{Kind: TypeKindProp}
	TypeUnit   = &Type{Kind: TypeKindUnit}
	TypeBool   = &Type{Kind: TypeKindBool}
	TypeNumber = &Type{Kind: TypeKindNumber}
	TypeBottom = &Type{Kind: TypeKindBottom}
	TypeTop    = &Type{Kind: TypeKindTop}
)

// NewNamedType creates a named type reference.
func NewNamedType(name string) *Type {
	return &Type{Kind: TypeKindNamed, Data: &NamedType{Name: name}}
}

// NewPiType creates a dependent function type.
func NewPiType(param string, domain, codomain *Type) *Type {
	return &Type{Kind: TypeKindPi, Data: &PiType{Param: param, Domain: domain, Codomain: codomain}}
}

// NewUniverseType creates the classifier of types at the given level.
func NewUniverseType(l Level) *Type {
	return &Type{Kind: TypeKindUniverse, Data: &UniverseType{Level: l}}
}

// NewSumType creates a binary sum.
func NewSumType(left, right *Type) *Type {
	return &Type{Kind: TypeKindSum, Data: &SumType{Left: left, Right: right}}
}

// NewProductType creates a binary product.
func NewProductType(left, right *Type) *Type {
	return &Type{Kind: TypeKindProduct, Data: &ProductType{Left: left, Right: right}}
}

// NewFunctionType creates a non-dependent arrow.
func NewFunctionType(domain, codomain *Type) *Type {
	return &Type{Kind: TypeKindFunction, Data: &FunctionType{Domain: domain, Codomain: codomain}}
}

// NewTypeApp applies a classifier to a term.
func NewTypeApp(fn *Type, arg *Term) *Type {
	return &Type{Kind: TypeKindApp, Data: &TypeApp{Fn: fn, Arg: arg}}
}

// SortType maps a universe to the classifier expressing it.
func SortType(u Universe) *Type {
	if u.IsProp() {
		return TypeProp
	}

	return NewUniverseType(u.Level)
}

// String returns a string representation of the type.
func (t *Type) String() string {
	switch t.Kind {
	case TypeKindNamed:
		return t.Data.(*NamedType).Name
	case TypeKindPi:
		d := t.Data.(*PiType)

		return fmt.Sprintf("Π(%s:%s). %s", d.Param, d.Domain.String(), d.Codomain.String())
	case TypeKindProp:
		return "Prop"
	case TypeKindUniverse:
		return fmt.Sprintf("Type%d", t.Data.(*UniverseType).Level)
	case TypeKindUnit:
		return "Unit"
	case TypeKindBool:
		return "Bool"
	case TypeKindNumber:
		return "Number"
	case TypeKindBottom:
		return "Bottom"
	case TypeKindTop:
		return "Top"
	case TypeKindSum:
		d := t.Data.(*SumType)

		return fmt.Sprintf("(%s + %s)", d.Left.String(), d.Right.String())
	case TypeKindProduct:
		d := t.Data.(*ProductType)

		return fmt.Sprintf("(%s × %s)", d.Left.String(), d.Right.String())
	case TypeKindFunction:
		d := t.Data.(*FunctionType)

		return fmt.Sprintf("(%s → %s)", d.Domain.String(), d.Codomain.String())
	case TypeKindApp:
		d := t.Data.(*TypeApp)

		return fmt.Sprintf("(%s %s)", d.Fn.String(), d.Arg.String())
	default:
		return "unknown"
	}
}

// FreeVars returns the term variables occurring free in embedded terms and
// dependent codomains.
func (t *Type) FreeVars() map[string]struct{} {
	out := make(map[string]struct{})
	t.freeVars(make(map[string]int), out)

	return out
}

// ContainsVar reports whether name occurs free in the type.
func (t *Type) ContainsVar(name string) bool {
	_, ok := t.FreeVars()[name]

	return ok
}

func (t *Type) freeVars(bound map[string]int, out map[string]struct{}) {
	switch t.Kind {
	case TypeKindPi:
		d := t.Data.(*PiType)
		d.Domain.freeVars(bound, out)
		bound[d.Param]++
		d.Codomain.freeVars(bound, out)
		bound[d.Param]--
	case TypeKindSum:
		d := t.Data.(*SumType)
		d.Left.freeVars(bound, out)
		d.Right.freeVars(bound, out)
	case TypeKindProduct:
		d := t.Data.(*ProductType)
		d.Left.freeVars(bound, out)
		d.Right.freeVars(bound, out)
	case TypeKindFunction:
		d := t.Data.(*FunctionType)
		d.Domain.freeVars(bound, out)
		d.Codomain.freeVars(bound, out)
	case TypeKindApp:
		d := t.Data.(*TypeApp)
		d.Fn.freeVars(bound, out)
		d.Arg.freeVars(bound, out)
	}
}

// Equal reports structural equality up to alpha-conversion of Pi binders.
func (t *Type) Equal(other *Type) bool {
	if t == other {
		return true
	}

	if t == nil || other == nil || t.Kind != other.Kind {
		return false
	}

	switch t.Kind {
	case TypeKindNamed:
		return t.Data.(*NamedType).Name == other.Data.(*NamedType).Name
	case TypeKindPi:
		a := t.Data.(*PiType)
		b := other.Data.(*PiType)

		return a.Domain.Equal(b.Domain) && alphaCodomainEqual(a.Param, a.Codomain, b.Param, b.Codomain)
	case TypeKindUniverse:
		return t.Data.(*UniverseType).Level == other.Data.(*UniverseType).Level
	case TypeKindProp, TypeKindUnit, TypeKindBool, TypeKindNumber, TypeKindBottom, TypeKindTop:
		return true
	case TypeKindSum:
		a := t.Data.(*SumType)
		b := other.Data.(*SumType)

		return a.Left.Equal(b.Left) && a.Right.Equal(b.Right)
	case TypeKindProduct:
		a := t.Data.(*ProductType)
		b := other.Data.(*ProductType)

		return a.Left.Equal(b.Left) && a.Right.Equal(b.Right)
	case TypeKindFunction:
		a := t.Data.(*FunctionType)
		b := other.Data.(*FunctionType)

		return a.Domain.Equal(b.Domain) && a.Codomain.Equal(b.Codomain)
	case TypeKindApp:
		a := t.Data.(*TypeApp)
		b := other.Data.(*TypeApp)

		return a.Fn.Equal(b.Fn) && a.Arg.Equal(b.Arg)
	default:
		return false
	}
}

// alphaCodomainEqual compares two dependent codomains, renaming both
// binders to a common fresh name when they differ.
func alphaCodomainEqual(x string, a *Type, y string, b *Type) bool {
	if x == y {
		return a.Equal(b)
	}

	avoid := a.FreeVars()
	for v := range b.FreeVars() {
		avoid[v] = struct{}{}
	}

	fresh := NewVar(freshName(x, avoid))

	return a.SubstituteTerm(x, fresh).Equal(b.SubstituteTerm(y, fresh))
}
