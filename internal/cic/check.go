package cic

// Syntax-directed type checking: one rule per term kind, each returning the
// term's classifier or the first failure unchanged. Conversion between
// classifiers reduces both sides and compares up to alpha-equivalence, with
// universe cumulativity justified by the context's constraint store.

// TypeCheck returns the classifier of t under ctx.
func (t *Term) TypeCheck(ctx *Context) (*Type, error) {
	switch t.Kind {
	case TermKindVar:
		d := t.Data.(*VarTerm)

		def, err := ctx.Lookup(d.Name)
		if err != nil {
			return nil, err
		}

		return def.Type, nil
	case TermKindSort:
		d := t.Data.(*SortTerm)

		return SortType(d.Universe.Succ()), nil
	case TermKindLambda:
		d := t.Data.(*LambdaTerm)

		if _, err := typeSort(ctx, d.Domain); err != nil {
			return nil, err
		}

		bodyTy, err := d.Body.TypeCheck(ctx.Extend(d.Param, d.Domain, nil))
		if err != nil {
			return nil, err
		}

		return NewPiType(d.Param, d.Domain, bodyTy), nil
	case TermKindApp:
		return checkApp(ctx, t.Data.(*AppTerm))
	case TermKindPi:
		d := t.Data.(*PiTerm)

		u1, err := typeSort(ctx, d.Domain)
		if err != nil {
			return nil, err
		}

		u2, err := typeSort(ctx.Extend(d.Param, d.Domain, nil), d.Codomain)
		if err != nil {
			return nil, err
		}

		return SortType(piSort(u1, u2)), nil
	case TermKindConstructor:
		return checkConstructor(ctx, t.Data.(*ConstructorTerm))
	case TermKindMatch:
		return checkMatch(ctx, t.Data.(*MatchTerm))
	case TermKindAnnotated:
		d := t.Data.(*AnnotatedTerm)

		if _, err := typeSort(ctx, d.Type); err != nil {
			return nil, err
		}

		found, err := d.Term.TypeCheck(ctx)
		if err != nil {
			return nil, err
		}

		ok, err := convertible(ctx, found, d.Type)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, NewTypeMismatch(d.Type, found)
		}

		return d.Type, nil
	case TermKindLet:
		d := t.Data.(*LetTerm)

		valueTy, err := d.Value.TypeCheck(ctx)
		if err != nil {
			return nil, err
		}

		bodyTy, err := d.Body.TypeCheck(ctx.Extend(d.Name, valueTy, d.Value))
		if err != nil {
			return nil, err
		}

		return bodyTy.SubstituteTerm(d.Name, d.Value), nil
	default:
		return nil, NewNotImplemented("type checking for %s terms", t.Kind.String())
	}
}

func checkApp(ctx *Context, d *AppTerm) (*Type, error) {
	fnTy, err := d.Fn.TypeCheck(ctx)
	if err != nil {
		return nil, err
	}

	fnTy = fnTy.ReduceType(ctx)
	if fnTy.Kind != TypeKindPi {
		return nil, NewTypeMismatchMessage("expected function type, got %s", fnTy.String())
	}

	pi := fnTy.Data.(*PiType)

	argTy, err := d.Arg.TypeCheck(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := convertible(ctx, argTy, pi.Domain)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, NewTypeMismatch(pi.Domain, argTy)
	}

	return pi.Codomain.SubstituteTerm(pi.Param, d.Arg), nil
}

func checkConstructor(ctx *Context, d *ConstructorTerm) (*Type, error) {
	ind, ctor, ok := ctx.LookupConstructor(d.Name)
	if !ok {
		return nil, NewUnboundVariable(d.Name)
	}

	if len(d.Args) != len(ctor.Params) {
		return nil, NewTypeMismatchMessage("constructor %s expects %d arguments, got %d",
			d.Name, len(ctor.Params), len(d.Args))
	}

	for i, arg := range d.Args {
		// Parameter types may mention earlier parameter names; instantiate
		// the telescope with the supplied arguments left to right.
		paramTy := ctor.Params[i].Type
		for j := 0; j < i; j++ {
			paramTy = paramTy.SubstituteTerm(ctor.Params[j].Name, d.Args[j])
		}

		argTy, err := arg.TypeCheck(ctx)
		if err != nil {
			return nil, err
		}

		fits, err := convertible(ctx, argTy, paramTy)
		if err != nil {
			return nil, err
		}

		if !fits {
			return nil, NewTypeMismatch(paramTy, argTy)
		}
	}

	if ctor.ReturnType != nil {
		retTy := ctor.ReturnType
		for j, arg := range d.Args {
			retTy = retTy.SubstituteTerm(ctor.Params[j].Name, arg)
		}

		return retTy, nil
	}

	return NewNamedType(ind.Name), nil
}

func checkMatch(ctx *Context, d *MatchTerm) (*Type, error) {
	scrTy, err := d.Scrutinee.TypeCheck(ctx)
	if err != nil {
		return nil, err
	}

	scrTy = scrTy.ReduceType(ctx)
	if scrTy.Kind != TypeKindNamed {
		return nil, NewTypeMismatchMessage("match scrutinee must have an inductive type, got %s", scrTy.String())
	}

	indName := scrTy.Data.(*NamedType).Name

	ind, ok := ctx.LookupInductive(indName)
	if !ok {
		return nil, NewUnboundVariable(indName)
	}

	covered := make(map[string]bool, len(d.Branches))

	var motive *Type

	for _, br := range d.Branches {
		ctor := findConstructor(ind, br.Pattern.Constructor)
		if ctor == nil {
			return nil, NewTypeMismatchMessage("constructor %s does not belong to %s",
				br.Pattern.Constructor, ind.Name)
		}

		if len(br.Pattern.Binders) != len(ctor.Params) {
			return nil, NewTypeMismatchMessage("pattern %s binds %d variables, constructor has %d parameters",
				ctor.Name, len(br.Pattern.Binders), len(ctor.Params))
		}

		covered[ctor.Name] = true

		branchCtx := ctx

		for i, param := range ctor.Params {
			paramTy := param.Type
			for j := 0; j < i; j++ {
				paramTy = paramTy.SubstituteTerm(ctor.Params[j].Name, NewVar(br.Pattern.Binders[j]))
			}

			branchCtx = branchCtx.Extend(br.Pattern.Binders[i], paramTy, nil)
		}

		branchTy, err := br.Body.TypeCheck(branchCtx)
		if err != nil {
			return nil, err
		}

		if motive == nil {
			motive = branchTy

			continue
		}

		agrees, err := convertible(ctx, branchTy, motive)
		if err != nil {
			return nil, err
		}

		if !agrees {
			return nil, NewTypeMismatch(motive, branchTy)
		}
	}

	var missing []string

	for _, ctor := range ind.Constructors {
		if !covered[ctor.Name] {
			missing = append(missing, ctor.Name)
		}
	}

	if len(missing) > 0 {
		return nil, NewNonExhaustiveMatch(ind.Name, missing)
	}

	if motive == nil {
		// Eliminating an empty inductive needs a motive annotation the
		// surface language cannot express yet.
		return nil, NewNotImplemented("match on an inductive type with no constructors")
	}

	return motive, nil
}

func findConstructor(ind *InductiveType, name string) *Constructor {
	for i := range ind.Constructors {
		if ind.Constructors[i].Name == name {
			return &ind.Constructors[i]
		}
	}

	return nil
}

// piSort gives the sort of a product from the sorts of its domain and
// codomain: products into Prop stay in Prop, products into a Type level
// are predicative and take the larger of the two sorts.
func piSort(u1, u2 Universe) Universe {
	if u2.IsProp() {
		return Prop
	}

	return UniverseMax(u1, u2)
}

// typeSort classifies a type by the universe it inhabits.
func typeSort(ctx *Context, ty *Type) (Universe, error) {
	switch ty.Kind {
	case TypeKindProp:
		return TypeAt(1), nil
	case TypeKindUniverse:
		return TypeAt(ty.Data.(*UniverseType).Level.Succ()), nil
	case TypeKindNamed:
		name := ty.Data.(*NamedType).Name

		if ind, ok := ctx.LookupInductive(name); ok {
			return TypeAt(ind.Level), nil
		}

		def, err := ctx.Lookup(name)
		if err != nil {
			return Universe{}, err
		}

		switch def.Type.Kind {
		case TypeKindUniverse:
			return TypeAt(def.Type.Data.(*UniverseType).Level), nil
		case TypeKindProp:
			return Prop, nil
		default:
			return Universe{}, NewTypeMismatchMessage("%s is not a type: it has type %s", name, def.Type.String())
		}
	case TypeKindUnit, TypeKindBool, TypeKindNumber, TypeKindBottom, TypeKindTop:
		return TypeAt(0), nil
	case TypeKindSum:
		d := ty.Data.(*SumType)

		return componentSort(ctx, d.Left, d.Right, UniverseMax)
	case TypeKindProduct:
		d := ty.Data.(*ProductType)

		return componentSort(ctx, d.Left, d.Right, UniverseMax)
	case TypeKindFunction:
		d := ty.Data.(*FunctionType)

		return componentSort(ctx, d.Domain, d.Codomain, piSort)
	case TypeKindPi:
		d := ty.Data.(*PiType)

		u1, err := typeSort(ctx, d.Domain)
		if err != nil {
			return Universe{}, err
		}

		u2, err := typeSort(ctx.Extend(d.Param, d.Domain, nil), d.Codomain)
		if err != nil {
			return Universe{}, err
		}

		return piSort(u1, u2), nil
	case TypeKindApp:
		reduced := ty.ReduceType(ctx)
		if reduced.Kind != TypeKindApp {
			return typeSort(ctx, reduced)
		}

		return Universe{}, NewNotImplemented("sort of irreducible type application %s", ty.String())
	default:
		return Universe{}, NewNotImplemented("sort of %s types", ty.Kind.String())
	}
}

func componentSort(ctx *Context, left, right *Type, combine func(Universe, Universe) Universe) (Universe, error) {
	u1, err := typeSort(ctx, left)
	if err != nil {
		return Universe{}, err
	}

	u2, err := typeSort(ctx, right)
	if err != nil {
		return Universe{}, err
	}

	return combine(u1, u2), nil
}

// convertible reports whether found may be used where expected is required:
// the two reduce to alpha-equal normal forms, or both are universes and the
// constraint store proves cumulativity.
func convertible(ctx *Context, found, expected *Type) (bool, error) {
	rf := found.ReduceType(ctx)
	re := expected.ReduceType(ctx)

	if rf.Equal(re) {
		return true, nil
	}

	if rf.Kind == TypeKindUniverse && re.Kind == TypeKindUniverse {
		return ctx.LevelLeq(rf.Data.(*UniverseType).Level, re.Data.(*UniverseType).Level)
	}

	return false, nil
}
