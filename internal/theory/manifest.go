// Package theory provides versioned theory bundles: declarative manifests
// of inductive types and definitions that seed a kernel checking session,
// stored in a content-addressed registry and resolved by semantic version.
package theory

import (
	"encoding/json"
	"fmt"

	semver "github.com/Masterminds/semver/v3"

	"github.com/Turnersoft/turn-formal-sub005/internal/cic"
)

// TheoryID names a theory bundle.
type TheoryID string

// Requirement states a dependency on another theory, optionally narrowed
// by a semver constraint ("" means any version).
type Requirement struct {
	Name       TheoryID `json:"name"`
	Constraint string   `json:"constraint,omitempty"`
}

// ParamDecl declares one constructor parameter. Type names either a
// built-in shape (Unit, Bool, Number, Bottom, Top, Prop) or a declared
// type.
type ParamDecl struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ConstructorDecl declares one constructor of an inductive type.
type ConstructorDecl struct {
	Name   string      `json:"name"`
	Params []ParamDecl `json:"params,omitempty"`
}

// InductiveDecl declares an inductive type at a universe level.
type InductiveDecl struct {
	Name         string            `json:"name"`
	Level        int               `json:"level"`
	Constructors []ConstructorDecl `json:"constructors"`
}

// DefinitionDecl declares a named term of a declared type, without a value.
type DefinitionDecl struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TheoryManifest is the declarable unit published to a registry.
type TheoryManifest struct {
	Name        TheoryID         `json:"name"`
	Version     string           `json:"version"`
	Requires    []Requirement    `json:"requires,omitempty"`
	Inductives  []InductiveDecl  `json:"inductives,omitempty"`
	Definitions []DefinitionDecl `json:"definitions,omitempty"`
}

// DecodeManifest parses and validates a JSON manifest.
func DecodeManifest(data []byte) (TheoryManifest, error) {
	var m TheoryManifest

	if err := json.Unmarshal(data, &m); err != nil {
		return TheoryManifest{}, fmt.Errorf("decoding theory manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return TheoryManifest{}, err
	}

	return m, nil
}

// Encode renders the manifest as canonical JSON.
func (m TheoryManifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Validate checks the fields a registry relies on.
func (m TheoryManifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("theory manifest missing a name")
	}

	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("theory %s has invalid version %q: %w", m.Name, m.Version, err)
	}

	for _, req := range m.Requires {
		if req.Constraint == "" {
			continue
		}

		if _, err := semver.NewConstraint(req.Constraint); err != nil {
			return fmt.Errorf("theory %s has invalid constraint on %s: %w", m.Name, req.Name, err)
		}
	}

	return nil
}

// Install registers the manifest's inductive types and definitions into a
// kernel context. Requirements are the registry's concern; Install only
// applies this manifest.
func (m TheoryManifest) Install(ctx *cic.Context) error {
	for _, decl := range m.Inductives {
		ctors := make([]cic.Constructor, len(decl.Constructors))

		for i, c := range decl.Constructors {
			params := make([]cic.ConstructorParam, len(c.Params))
			for j, p := range c.Params {
				// A recursive occurrence refers to the inductive type being
				// declared, which is not registered yet.
				if p.Type == decl.Name {
					params[j] = cic.ConstructorParam{Name: p.Name, Type: cic.NewNamedType(p.Type)}

					continue
				}

				params[j] = cic.ConstructorParam{Name: p.Name, Type: resolveType(ctx, p.Type)}
			}

			ctors[i] = cic.Constructor{Name: c.Name, Params: params}
		}

		ind := &cic.InductiveType{
			Name:         decl.Name,
			Level:        cic.Level(decl.Level),
			Constructors: ctors,
		}

		if err := ctx.RegisterInductive(ind); err != nil {
			return fmt.Errorf("installing theory %s: %w", m.Name, err)
		}
	}

	for _, def := range m.Definitions {
		ctx.AddDefinition(def.Name, resolveType(ctx, def.Type), nil)
	}

	return nil
}

// resolveType maps a declared type name to a kernel classifier. A declared
// inductive type wins over a built-in shape of the same name, so a theory
// declaring its own Bool refers to the inductive one.
func resolveType(ctx *cic.Context, name string) *cic.Type {
	if _, ok := ctx.LookupInductive(name); ok {
		return cic.NewNamedType(name)
	}

	switch name {
	case "Unit":
		return cic.TypeUnit
	case "Bool":
		return cic.TypeBool
	case "Number":
		return cic.TypeNumber
	case "Bottom":
		return cic.TypeBottom
	case "Top":
		return cic.TypeTop
	case "Prop":
		return cic.TypeProp
	default:
		return cic.NewNamedType(name)
	}
}
