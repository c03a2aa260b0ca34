// Test suite for the checking context: definitions, shadowing, the
// inductive registry, and universe-constraint consistency.

package cic

import (
	"errors"
	"testing"
)

func TestLookupUnbound(t *testing.T) {
	ctx := NewContext()

	_, err := ctx.Lookup("undefined")
	if err == nil {
		t.Fatal("expected an unbound-variable error")
	}

	var te *TypeError
	if !errors.As(err, &te) || te.Kind != ErrUnboundVariable || te.Name != "undefined" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefinitionShadowing(t *testing.T) {
	ctx := NewContext()
	ctx.AddDefinition("x", TypeBool, nil)
	ctx.AddDefinition("x", TypeNumber, nil)

	def, err := ctx.Lookup("x")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if def.Type != TypeNumber {
		t.Errorf("expected the newer binding to shadow, got %s", def.Type.String())
	}
}

func TestExtendDoesNotMutateParent(t *testing.T) {
	ctx := NewContext()
	ctx.AddDefinition("x", TypeBool, nil)

	child := ctx.Extend("y", TypeNumber, nil)

	if _, err := child.Lookup("y"); err != nil {
		t.Errorf("child should see the extension: %v", err)
	}

	if _, err := ctx.Lookup("y"); err == nil {
		t.Error("parent must not see the child's binding")
	}
}

func TestRegisterInductiveRejectsDuplicates(t *testing.T) {
	ctx := NewContext()

	boolType := &InductiveType{
		Name:  "Bool",
		Level: 0,
		Constructors: []Constructor{
			{Name: "true"},
			{Name: "false"},
		},
	}

	if err := ctx.RegisterInductive(boolType); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	var te *TypeError

	if err := ctx.RegisterInductive(boolType); !errors.As(err, &te) || te.Kind != ErrDuplicateDeclaration {
		t.Errorf("redeclaring Bool should fail, got %v", err)
	}

	// Constructor names are globally unique across inductive types.
	clash := &InductiveType{
		Name:         "Truth",
		Level:        0,
		Constructors: []Constructor{{Name: "true"}},
	}

	if err := ctx.RegisterInductive(clash); !errors.As(err, &te) || te.Kind != ErrDuplicateDeclaration {
		t.Errorf("reusing a constructor name should fail, got %v", err)
	}

	if _, ok := ctx.LookupInductive("Truth"); ok {
		t.Error("a rejected registration must not be recorded")
	}
}

func TestLookupConstructor(t *testing.T) {
	ctx := NewContext()
	if err := ctx.RegisterInductive(&InductiveType{
		Name:  "Nat",
		Level: 0,
		Constructors: []Constructor{
			{Name: "zero"},
			{Name: "succ", Params: []ConstructorParam{{Name: "n", Type: NewNamedType("Nat")}}},
		},
	}); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	ind, ctor, ok := ctx.LookupConstructor("succ")
	if !ok {
		t.Fatal("succ should resolve")
	}

	if ind.Name != "Nat" || ctor.Name != "succ" || len(ctor.Params) != 1 {
		t.Errorf("unexpected resolution: %s.%s", ind.Name, ctor.Name)
	}
}

func TestUniverseConsistency(t *testing.T) {
	ctx := NewContext()
	ctx.PushConstraint(UniverseConstraint{Left: 0, Right: 1, Kind: ConstraintLessThan})
	ctx.PushConstraint(UniverseConstraint{Left: 1, Right: 2, Kind: ConstraintLessThan})

	if err := ctx.CheckConsistency(); err != nil {
		t.Fatalf("acyclic constraints reported inconsistent: %v", err)
	}

	ctx.PushConstraint(UniverseConstraint{Left: 2, Right: 0, Kind: ConstraintLessThan})

	err := ctx.CheckConsistency()
	if err == nil {
		t.Fatal("cyclic constraints must be rejected")
	}

	var te *TypeError
	if !errors.As(err, &te) || te.Kind != ErrUniverse {
		t.Errorf("expected a universe error, got %v", err)
	}
}

func TestLevelLeq(t *testing.T) {
	ctx := NewContext()
	ctx.PushConstraint(UniverseConstraint{Left: 0, Right: 1, Kind: ConstraintLessThan})
	ctx.PushConstraint(UniverseConstraint{Left: 1, Right: 2, Kind: ConstraintLessThan})

	if ok, err := ctx.LevelLeq(0, 2); err != nil || !ok {
		t.Errorf("0 <= 2 should follow transitively (ok=%v, err=%v)", ok, err)
	}

	if ok, err := ctx.LevelLeq(3, 3); err != nil || !ok {
		t.Errorf("levels are reflexively comparable (ok=%v, err=%v)", ok, err)
	}

	if ok, err := ctx.LevelLeq(2, 0); err != nil || ok {
		t.Errorf("2 <= 0 must not hold (ok=%v, err=%v)", ok, err)
	}
}

func TestLevelLeqFailsOnInconsistentStore(t *testing.T) {
	ctx := NewContext()
	ctx.PushConstraint(UniverseConstraint{Left: 0, Right: 1, Kind: ConstraintLessThan})
	ctx.PushConstraint(UniverseConstraint{Left: 1, Right: 0, Kind: ConstraintLessThan})

	_, err := ctx.LevelLeq(0, 1)

	var te *TypeError
	if !errors.As(err, &te) || te.Kind != ErrUniverse {
		t.Errorf("an inconsistent store must fail every comparison, got %v", err)
	}
}
