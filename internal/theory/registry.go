package theory

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	semver "github.com/Masterminds/semver/v3"

	"github.com/Turnersoft/turn-formal-sub005/internal/cic"
)

// CID is a content identifier computed from the encoded manifest
// (content-addressed).
type CID string

// ComputeCID calculates a stable content identifier for the given bytes.
func ComputeCID(data []byte) CID {
	sum := sha256.Sum256(data)

	return CID("thy-" + hex.EncodeToString(sum[:]))
}

// ErrNotFound is returned when a theory or blob is absent from the registry.
var ErrNotFound = errors.New("theory not found")

// TheoryBlob bundles a manifest with its canonical encoded bytes.
type TheoryBlob struct {
	Manifest TheoryManifest
	Data     []byte
}

// Registry is a thread-safe, content-addressed store of theory manifests
// with semver resolution. It is built once at startup and consulted
// read-mostly afterwards; checking sessions seed their contexts from it
// instead of from a process-wide global.
type Registry struct {
	mu    sync.RWMutex
	blobs map[CID]TheoryBlob
	// name index for resolving by semver constraint
	index map[TheoryID][]CID
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		blobs: make(map[CID]TheoryBlob),
		index: make(map[TheoryID][]CID),
	}
}

// Publish validates and stores a manifest, returning its content id.
// Republishing identical content is a no-op yielding the same id.
func (r *Registry) Publish(m TheoryManifest) (CID, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	data, err := m.Encode()
	if err != nil {
		return "", err
	}

	id := ComputeCID(data)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blobs[id]; !exists {
		r.blobs[id] = TheoryBlob{Manifest: m, Data: data}
		r.index[m.Name] = append(r.index[m.Name], id)
	}

	return id, nil
}

// Fetch returns a stored blob by content id.
func (r *Registry) Fetch(id CID) (TheoryBlob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.blobs[id]; ok {
		return b, nil
	}

	return TheoryBlob{}, ErrNotFound
}

// Find returns the highest published version of name that satisfies the
// constraint (any version when the constraint is nil).
func (r *Registry) Find(name TheoryID, constraint *semver.Constraints) (CID, TheoryManifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		bestID  CID
		bestVer *semver.Version
		best    TheoryManifest
	)

	for _, id := range r.index[name] {
		m := r.blobs[id].Manifest

		sv, err := semver.NewVersion(m.Version)
		if err != nil {
			continue
		}

		if constraint != nil && !constraint.Check(sv) {
			continue
		}

		if bestVer == nil || sv.GreaterThan(bestVer) {
			bestID, bestVer, best = id, sv, m
		}
	}

	if bestVer == nil {
		return "", TheoryManifest{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	return bestID, best, nil
}

// List returns every published manifest for a name.
func (r *Registry) List(name TheoryID) []TheoryManifest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]TheoryManifest, 0, len(r.index[name]))
	for _, id := range r.index[name] {
		out = append(out, r.blobs[id].Manifest)
	}

	return out
}

// Seed resolves a theory and its requirements transitively and installs
// them into the context, dependencies first. A theory already installed in
// this seeding pass is not installed twice.
func (r *Registry) Seed(ctx *cic.Context, name TheoryID, constraint *semver.Constraints) error {
	installed := make(map[TheoryID]bool)

	return r.seed(ctx, name, constraint, installed)
}

func (r *Registry) seed(ctx *cic.Context, name TheoryID, constraint *semver.Constraints, installed map[TheoryID]bool) error {
	if installed[name] {
		return nil
	}

	installed[name] = true

	_, m, err := r.Find(name, constraint)
	if err != nil {
		return err
	}

	for _, req := range m.Requires {
		var c *semver.Constraints

		if req.Constraint != "" {
			c, err = semver.NewConstraint(req.Constraint)
			if err != nil {
				return fmt.Errorf("theory %s: %w", m.Name, err)
			}
		}

		if err := r.seed(ctx, req.Name, c, installed); err != nil {
			return err
		}
	}

	return m.Install(ctx)
}
