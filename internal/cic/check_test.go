// Test suite for the syntax-directed type checker.

package cic

import (
	"errors"
	"testing"
)

// preludeContext registers the Bool and Nat inductive types used across
// the checking tests.
func preludeContext(t *testing.T) *Context {
	t.Helper()

	ctx := NewContext()

	if err := ctx.RegisterInductive(&InductiveType{
		Name:  "Bool",
		Level: 0,
		Constructors: []Constructor{
			{Name: "true"},
			{Name: "false"},
		},
	}); err != nil {
		t.Fatalf("registering Bool failed: %v", err)
	}

	if err := ctx.RegisterInductive(&InductiveType{
		Name:  "Nat",
		Level: 0,
		Constructors: []Constructor{
			{Name: "zero"},
			{Name: "succ", Params: []ConstructorParam{{Name: "n", Type: NewNamedType("Nat")}}},
		},
	}); err != nil {
		t.Fatalf("registering Nat failed: %v", err)
	}

	return ctx
}

func TestSortSuccessorLaw(t *testing.T) {
	ctx := NewContext()

	for n := Level(0); n < 5; n++ {
		ty, err := NewSort(TypeAt(n)).TypeCheck(ctx)
		if err != nil {
			t.Fatalf("checking Type%d failed: %v", n, err)
		}

		if !ty.Equal(NewUniverseType(n + 1)) {
			t.Errorf("Type%d should be classified by Type%d, got %s", n, n+1, ty.String())
		}
	}
}

func TestPropIsTypedOneLevelUp(t *testing.T) {
	ctx := NewContext()

	ty, err := NewSort(Prop).TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking Prop failed: %v", err)
	}

	if !ty.Equal(NewUniverseType(1)) {
		t.Errorf("Prop should be classified by Type1, got %s", ty.String())
	}
}

func TestIdentityFunctionTyping(t *testing.T) {
	ctx := NewContext()

	id := NewLambda("x", NewUniverseType(0), NewVar("x"))

	ty, err := id.TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking the identity failed: %v", err)
	}

	want := NewPiType("x", NewUniverseType(0), NewUniverseType(0))
	if !ty.Equal(want) {
		t.Errorf("expected %s, got %s", want.String(), ty.String())
	}
}

func TestUnboundVariable(t *testing.T) {
	ctx := NewContext()

	var te *TypeError

	// Term position.
	if _, err := NewVar("undefined").TypeCheck(ctx); !errors.As(err, &te) ||
		te.Kind != ErrUnboundVariable || te.Name != "undefined" {
		t.Errorf("term position: expected unbound variable, got %v", err)
	}

	// Type-annotation position: the domain names an undeclared type.
	lam := NewLambda("x", NewNamedType("undefined"), NewVar("x"))
	if _, err := lam.TypeCheck(ctx); !errors.As(err, &te) ||
		te.Kind != ErrUnboundVariable || te.Name != "undefined" {
		t.Errorf("annotation position: expected unbound variable, got %v", err)
	}
}

func TestApplicationTyping(t *testing.T) {
	ctx := preludeContext(t)

	not := NewLambda("b", NewNamedType("Bool"), NewMatch(NewVar("b"),
		MatchBranch{Pattern: Pattern{Constructor: "true"}, Body: NewConstructor("false")},
		MatchBranch{Pattern: Pattern{Constructor: "false"}, Body: NewConstructor("true")},
	))

	ty, err := NewApp(not, NewConstructor("true")).TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking (not true) failed: %v", err)
	}

	if !ty.Equal(NewNamedType("Bool")) {
		t.Errorf("expected Bool, got %s", ty.String())
	}
}

func TestApplicationRequiresFunctionType(t *testing.T) {
	ctx := preludeContext(t)

	_, err := NewApp(NewConstructor("true"), NewConstructor("false")).TypeCheck(ctx)

	var te *TypeError
	if !errors.As(err, &te) || te.Kind != ErrTypeMismatch {
		t.Errorf("applying a non-function should be a type mismatch, got %v", err)
	}
}

func TestApplicationArgumentMismatch(t *testing.T) {
	ctx := preludeContext(t)

	id := NewLambda("b", NewNamedType("Bool"), NewVar("b"))

	_, err := NewApp(id, NewConstructor("zero")).TypeCheck(ctx)

	var te *TypeError
	if !errors.As(err, &te) || te.Kind != ErrTypeMismatch {
		t.Errorf("a Nat fed to a Bool function should be a mismatch, got %v", err)
	}
}

func TestDependentApplicationSubstitutesCodomain(t *testing.T) {
	ctx := preludeContext(t)

	// f : Π(n:Nat). Vec n — applying f substitutes the argument into the
	// dependent codomain.
	fTy := NewPiType("n", NewNamedType("Nat"), NewTypeApp(NewNamedType("Vec"), NewVar("n")))
	ctx.AddDefinition("f", fTy, nil)

	ty, err := NewApp(NewVar("f"), NewConstructor("zero")).TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking (f zero) failed: %v", err)
	}

	want := NewTypeApp(NewNamedType("Vec"), NewConstructor("zero"))
	if !ty.Equal(want) {
		t.Errorf("expected %s, got %s", want.String(), ty.String())
	}
}

func TestPiFormation(t *testing.T) {
	ctx := NewContext()

	pi := NewPiTerm("x", NewUniverseType(0), NewUniverseType(0))

	ty, err := pi.TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking Π(x:Type0). Type0 failed: %v", err)
	}

	// Both sides sort into Type1.
	if !ty.Equal(NewUniverseType(1)) {
		t.Errorf("expected Type1, got %s", ty.String())
	}
}

func TestPiIntoPropIsImpredicative(t *testing.T) {
	ctx := NewContext()
	ctx.AddDefinition("P", TypeProp, nil)

	// A product into a proposition stays in Prop regardless of the domain.
	pi := NewPiTerm("x", NewUniverseType(3), NewNamedType("P"))

	ty, err := pi.TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking failed: %v", err)
	}

	if !ty.Equal(TypeProp) {
		t.Errorf("expected Prop, got %s", ty.String())
	}
}

func TestPiIntoTypeIsPredicative(t *testing.T) {
	ctx := NewContext()

	// A product quantifying over Type2 lives at Type3 even though the
	// codomain itself sorts into Type0.
	pi := NewPiTerm("x", NewUniverseType(2), TypeBool)

	ty, err := pi.TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking failed: %v", err)
	}

	if !ty.Equal(NewUniverseType(3)) {
		t.Errorf("expected Type3, got %s", ty.String())
	}

	// The same holds when the codomain is itself a product.
	nested := NewPiTerm("x", NewUniverseType(2), NewPiType("y", TypeBool, TypeBool))

	ty, err = nested.TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking the nested product failed: %v", err)
	}

	if !ty.Equal(NewUniverseType(3)) {
		t.Errorf("expected Type3 for the nested product, got %s", ty.String())
	}
}

func TestConstructorTyping(t *testing.T) {
	ctx := preludeContext(t)

	for _, name := range []string{"true", "false"} {
		ty, err := NewConstructor(name).TypeCheck(ctx)
		if err != nil {
			t.Fatalf("checking %s failed: %v", name, err)
		}

		if !ty.Equal(NewNamedType("Bool")) {
			t.Errorf("%s: expected Bool, got %s", name, ty.String())
		}
	}

	one := NewConstructor("succ", NewConstructor("zero"))

	ty, err := one.TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking succ(zero) failed: %v", err)
	}

	if !ty.Equal(NewNamedType("Nat")) {
		t.Errorf("expected Nat, got %s", ty.String())
	}
}

func TestConstructorArgumentErrors(t *testing.T) {
	ctx := preludeContext(t)

	var te *TypeError

	if _, err := NewConstructor("succ").TypeCheck(ctx); !errors.As(err, &te) || te.Kind != ErrTypeMismatch {
		t.Errorf("arity mismatch should fail, got %v", err)
	}

	if _, err := NewConstructor("succ", NewConstructor("true")).TypeCheck(ctx); !errors.As(err, &te) || te.Kind != ErrTypeMismatch {
		t.Errorf("succ(true) should fail, got %v", err)
	}

	if _, err := NewConstructor("nonsense").TypeCheck(ctx); !errors.As(err, &te) || te.Kind != ErrUnboundVariable {
		t.Errorf("an unregistered constructor should be unbound, got %v", err)
	}
}

func TestMatchTyping(t *testing.T) {
	ctx := preludeContext(t)

	neg := NewMatch(NewConstructor("true"),
		MatchBranch{Pattern: Pattern{Constructor: "true"}, Body: NewConstructor("false")},
		MatchBranch{Pattern: Pattern{Constructor: "false"}, Body: NewConstructor("true")},
	)

	ty, err := neg.TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking failed: %v", err)
	}

	if !ty.Equal(NewNamedType("Bool")) {
		t.Errorf("expected Bool, got %s", ty.String())
	}
}

func TestMatchBindsPatternVariables(t *testing.T) {
	ctx := preludeContext(t)

	pred := NewMatch(NewConstructor("succ", NewConstructor("zero")),
		MatchBranch{Pattern: Pattern{Constructor: "zero"}, Body: NewConstructor("zero")},
		MatchBranch{Pattern: Pattern{Constructor: "succ", Binders: []string{"n"}}, Body: NewVar("n")},
	)

	ty, err := pred.TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking failed: %v", err)
	}

	if !ty.Equal(NewNamedType("Nat")) {
		t.Errorf("expected Nat, got %s", ty.String())
	}
}

func TestMatchExhaustiveness(t *testing.T) {
	ctx := preludeContext(t)

	partial := NewMatch(NewConstructor("true"),
		MatchBranch{Pattern: Pattern{Constructor: "true"}, Body: NewConstructor("false")},
	)

	_, err := partial.TypeCheck(ctx)

	var te *TypeError
	if !errors.As(err, &te) || te.Kind != ErrNonExhaustiveMatch {
		t.Fatalf("a partial match must be rejected, got %v", err)
	}

	if len(te.Missing) != 1 || te.Missing[0] != "false" {
		t.Errorf("expected false to be reported missing, got %v", te.Missing)
	}
}

func TestMatchBranchTypesMustAgree(t *testing.T) {
	ctx := preludeContext(t)

	mixed := NewMatch(NewConstructor("true"),
		MatchBranch{Pattern: Pattern{Constructor: "true"}, Body: NewConstructor("false")},
		MatchBranch{Pattern: Pattern{Constructor: "false"}, Body: NewConstructor("zero")},
	)

	_, err := mixed.TypeCheck(ctx)

	var te *TypeError
	if !errors.As(err, &te) || te.Kind != ErrTypeMismatch {
		t.Errorf("disagreeing branch types must be rejected, got %v", err)
	}
}

func TestAnnotatedTerm(t *testing.T) {
	ctx := preludeContext(t)

	ty, err := NewAnnotated(NewConstructor("true"), NewNamedType("Bool")).TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking failed: %v", err)
	}

	if !ty.Equal(NewNamedType("Bool")) {
		t.Errorf("expected Bool, got %s", ty.String())
	}

	_, err = NewAnnotated(NewConstructor("true"), NewNamedType("Nat")).TypeCheck(ctx)

	var te *TypeError
	if !errors.As(err, &te) || te.Kind != ErrTypeMismatch {
		t.Errorf("a wrong ascription must be rejected, got %v", err)
	}
}

func TestLetTyping(t *testing.T) {
	ctx := preludeContext(t)

	let := NewLet("b", NewConstructor("true"), NewVar("b"))

	ty, err := let.TypeCheck(ctx)
	if err != nil {
		t.Fatalf("checking failed: %v", err)
	}

	if !ty.Equal(NewNamedType("Bool")) {
		t.Errorf("expected Bool, got %s", ty.String())
	}
}

func TestCumulativity(t *testing.T) {
	ctx := NewContext()
	ctx.PushConstraint(UniverseConstraint{Left: 0, Right: 1, Kind: ConstraintLessThan})
	ctx.AddDefinition("A", NewUniverseType(0), nil)

	// With 0 < 1 recorded, a Type0 inhabitant fits a Type1 domain.
	f := NewLambda("x", NewUniverseType(1), NewVar("x"))

	if _, err := NewApp(f, NewVar("A")).TypeCheck(ctx); err != nil {
		t.Errorf("cumulativity should admit Type0 where Type1 is expected: %v", err)
	}

	// Without a constraint path the same application is rejected.
	bare := NewContext()
	bare.AddDefinition("A", NewUniverseType(0), nil)

	if _, err := NewApp(f, NewVar("A")).TypeCheck(bare); err == nil {
		t.Error("cumulativity must not be assumed without constraints")
	}
}

func TestCheckingFailsOnInconsistentUniverses(t *testing.T) {
	ctx := NewContext()
	ctx.PushConstraint(UniverseConstraint{Left: 0, Right: 1, Kind: ConstraintLessThan})
	ctx.PushConstraint(UniverseConstraint{Left: 1, Right: 0, Kind: ConstraintLessThan})
	ctx.AddDefinition("A", NewUniverseType(0), nil)

	// The judgment depends on a level comparison, which must surface the
	// inconsistency instead of trusting the store.
	f := NewLambda("x", NewUniverseType(1), NewVar("x"))

	_, err := NewApp(f, NewVar("A")).TypeCheck(ctx)

	var te *TypeError
	if !errors.As(err, &te) || te.Kind != ErrUniverse {
		t.Errorf("expected a universe error, got %v", err)
	}
}
