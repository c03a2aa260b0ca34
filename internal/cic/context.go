package cic

// Definition is a named binding carrying a classifier and an optional
// value; definitions with values unfold under delta reduction.
type Definition struct {
	Name  string
	Type  *Type
	Value *Term
}

// ConstructorParam is one parameter of a constructor telescope. Its type
// may mention the names of earlier parameters.
type ConstructorParam struct {
	Name string
	Type *Type
}

// Constructor declares one constructor of an inductive type. ReturnType is
// optional; when nil the constructor returns the owning inductive type.
type Constructor struct {
	Name       string
	Params     []ConstructorParam
	ReturnType *Type
}

// InductiveType declares an inductive type: its name, type parameters, the
// universe level it inhabits, and its ordered constructor list.
type InductiveType struct {
	Name         string
	Params       []string
	Level        Level
	Constructors []Constructor
}

// Context is the environment a checking session runs against: named
// definitions in insertion order, the inductive-type registry, and the
// accumulated universe constraints. A context is owned by a single session;
// the kernel provides no internal locking.
type Context struct {
	defs         []Definition
	inductives   map[string]*InductiveType
	constructors map[string]string
	constraints  []UniverseConstraint
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{
		inductives:   make(map[string]*InductiveType),
		constructors: make(map[string]string),
	}
}

// AddDefinition inserts a binding. A later binding of the same name shadows
// earlier ones; lookups see the newest.
func (c *Context) AddDefinition(name string, ty *Type, value *Term) {
	c.defs = append(c.defs, Definition{Name: name, Type: ty, Value: value})
}

// Lookup returns the newest binding of name.
func (c *Context) Lookup(name string) (Definition, error) {
	for i := len(c.defs) - 1; i >= 0; i-- {
		if c.defs[i].Name == name {
			return c.defs[i], nil
		}
	}

	return Definition{}, NewUnboundVariable(name)
}

// Extend returns a child context with one extra binding. The child shares
// the registries and constraints; the receiver is left untouched, so a
// check never mutates its caller's context.
func (c *Context) Extend(name string, ty *Type, value *Term) *Context {
	return &Context{
		defs:         append(c.defs[:len(c.defs):len(c.defs)], Definition{Name: name, Type: ty, Value: value}),
		inductives:   c.inductives,
		constructors: c.constructors,
		constraints:  c.constraints,
	}
}

// PushConstraint appends a universe constraint to the store.
func (c *Context) PushConstraint(uc UniverseConstraint) {
	c.constraints = append(c.constraints, uc)
}

// Constraints returns the recorded universe constraints.
func (c *Context) Constraints() []UniverseConstraint {
	return c.constraints
}

// RegisterInductive adds an inductive type and its constructors to the
// registry. Inductive and constructor names are globally unique within the
// context; redeclaration is a static error.
func (c *Context) RegisterInductive(ind *InductiveType) error {
	if _, exists := c.inductives[ind.Name]; exists {
		return NewDuplicateDeclaration(ind.Name)
	}

	for _, ctor := range ind.Constructors {
		if _, exists := c.constructors[ctor.Name]; exists {
			return NewDuplicateDeclaration(ctor.Name)
		}
	}

	c.inductives[ind.Name] = ind

	for _, ctor := range ind.Constructors {
		c.constructors[ctor.Name] = ind.Name
	}

	return nil
}

// LookupInductive returns a registered inductive type by name.
func (c *Context) LookupInductive(name string) (*InductiveType, bool) {
	ind, ok := c.inductives[name]

	return ind, ok
}

// LookupConstructor resolves a constructor name to its owning inductive
// type and declaration.
func (c *Context) LookupConstructor(name string) (*InductiveType, *Constructor, bool) {
	indName, ok := c.constructors[name]
	if !ok {
		return nil, nil, false
	}

	ind := c.inductives[indName]
	for i := range ind.Constructors {
		if ind.Constructors[i].Name == name {
			return ind, &ind.Constructors[i], true
		}
	}

	return nil, nil, false
}

// CheckConsistency verifies that the less-than constraint graph is acyclic.
// Any judgment that compares levels must run this first, so circular
// constraint sets are caught rather than silently accepted.
func (c *Context) CheckConsistency() error {
	adj := c.constraintGraph()

	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)

	state := make(map[Level]int, len(adj))

	var visit func(Level) error

	visit = func(n Level) error {
		state[n] = onStack

		for _, next := range adj[n] {
			switch state[next] {
			case onStack:
				return NewUniverseError("cyclic universe constraints involving level %d", next)
			case unvisited:
				if err := visit(next); err != nil {
					return err
				}
			}
		}

		state[n] = done

		return nil
	}

	for n := range adj {
		if state[n] == unvisited {
			if err := visit(n); err != nil {
				return err
			}
		}
	}

	return nil
}

// LevelLeq reports whether a <= b follows from the constraint store: either
// a equals b or a chain of less-than constraints leads from a to b. The
// consistency check runs first; an inconsistent store fails every query.
func (c *Context) LevelLeq(a, b Level) (bool, error) {
	if err := c.CheckConsistency(); err != nil {
		return false, err
	}

	if a == b {
		return true, nil
	}

	adj := c.constraintGraph()
	seen := map[Level]bool{a: true}
	queue := []Level{a}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, next := range adj[n] {
			if next == b {
				return true, nil
			}

			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	return false, nil
}

func (c *Context) constraintGraph() map[Level][]Level {
	adj := make(map[Level][]Level, len(c.constraints))

	for _, uc := range c.constraints {
		if uc.Kind == ConstraintLessThan {
			adj[uc.Left] = append(adj[uc.Left], uc.Right)
		}
	}

	return adj
}
