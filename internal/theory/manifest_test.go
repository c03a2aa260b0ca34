package theory

import (
	"testing"

	"github.com/Turnersoft/turn-formal-sub005/internal/cic"
)

func TestManifestRoundTrip(t *testing.T) {
	m := TheoryManifest{
		Name:     "arith",
		Version:  "0.2.1",
		Requires: []Requirement{{Name: "prelude", Constraint: ">=1.0.0"}},
		Inductives: []InductiveDecl{
			{
				Name:  "Nat",
				Level: 0,
				Constructors: []ConstructorDecl{
					{Name: "zero"},
					{Name: "succ", Params: []ParamDecl{{Name: "n", Type: "Nat"}}},
				},
			},
		},
		Definitions: []DefinitionDecl{{Name: "answer", Type: "Nat"}},
	}

	data, err := m.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := DecodeManifest(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got.Name != m.Name || got.Version != m.Version {
		t.Errorf("identity lost: %+v", got)
	}

	if len(got.Inductives) != 1 || len(got.Inductives[0].Constructors) != 2 {
		t.Errorf("inductives lost: %+v", got.Inductives)
	}

	if len(got.Requires) != 1 || got.Requires[0].Constraint != ">=1.0.0" {
		t.Errorf("requirements lost: %+v", got.Requires)
	}

	if len(got.Definitions) != 1 || got.Definitions[0].Name != "answer" {
		t.Errorf("definitions lost: %+v", got.Definitions)
	}
}

func TestDecodeRejectsInvalidManifests(t *testing.T) {
	if _, err := DecodeManifest([]byte(`{"name":"x","version":"not-semver"}`)); err == nil {
		t.Error("an unparsable version must be rejected")
	}

	if _, err := DecodeManifest([]byte(`{"version":"1.0.0"}`)); err == nil {
		t.Error("a nameless manifest must be rejected")
	}

	if _, err := DecodeManifest([]byte(`{"name":"x","version":"1.0.0","requires":[{"name":"y","constraint":"><"}]}`)); err == nil {
		t.Error("an unparsable constraint must be rejected")
	}

	if _, err := DecodeManifest([]byte(`not json`)); err == nil {
		t.Error("malformed JSON must be rejected")
	}
}

func TestInstallAppliesDefinitionsAndBuiltins(t *testing.T) {
	m := TheoryManifest{
		Name:        "flags",
		Version:     "1.0.0",
		Definitions: []DefinitionDecl{{Name: "flag", Type: "Bool"}},
	}

	ctx := cic.NewContext()
	if err := m.Install(ctx); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	// No inductive Bool is declared, so the built-in shape is used.
	def, err := ctx.Lookup("flag")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if def.Type != cic.TypeBool {
		t.Errorf("expected the built-in Bool shape, got %s", def.Type.String())
	}
}

func TestInstallReportsDuplicates(t *testing.T) {
	m := TheoryManifest{
		Name:    "dup",
		Version: "1.0.0",
		Inductives: []InductiveDecl{
			{Name: "Unit", Level: 0, Constructors: []ConstructorDecl{{Name: "tt"}}},
			{Name: "Unit", Level: 0, Constructors: []ConstructorDecl{{Name: "tt2"}}},
		},
	}

	ctx := cic.NewContext()
	if err := m.Install(ctx); err == nil {
		t.Error("redeclaring an inductive type must fail")
	}
}
