package cic

// The reduction engine applies the four rewrite rules of the calculus:
// beta (application of an abstraction), delta (unfolding of a defined
// name), iota (match on a constructor head), and zeta (let elimination).
// Normalization recurses into sub-terms first, including under binders,
// then applies a head rule. Reduction of a well-typed term terminates, but
// terms arrive unchecked here too, so every session carries a step budget
// and fails with a reduction error instead of looping.

// DefaultReductionSteps is the step budget used by Reduce.
const DefaultReductionSteps = 10000

// Reduce normalizes the term under ctx with the default step budget.
func (t *Term) Reduce(ctx *Context) (*Term, error) {
	return t.ReduceWithLimit(ctx, DefaultReductionSteps)
}

// ReduceWithLimit normalizes the term, spending at most steps rule
// applications before giving up with a reduction error.
func (t *Term) ReduceWithLimit(ctx *Context, steps int) (*Term, error) {
	r := &reducer{ctx: ctx, steps: steps, bound: make(map[string]int)}

	return r.normalize(t)
}

// ReduceType normalizes a classifier: it recurses structurally, reduces any
// embedded term, and applies type-level beta to applied Pi types. Purely
// structural shapes pass through unchanged. A sub-term whose reduction
// exhausts the budget is kept in its original form.
func (t *Type) ReduceType(ctx *Context) *Type {
	r := &reducer{ctx: ctx, steps: DefaultReductionSteps, bound: make(map[string]int)}

	return r.reduceType(t)
}

type reducer struct {
	ctx   *Context
	bound map[string]int
	steps int
}

// spend consumes one step of the budget.
func (r *reducer) spend() error {
	r.steps--
	if r.steps < 0 {
		return NewReductionError("reduction did not terminate within the step budget")
	}

	return nil
}

func (r *reducer) normalize(t *Term) (*Term, error) {
	switch t.Kind {
	case TermKindSort:
		return t, nil
	case TermKindVar:
		d := t.Data.(*VarTerm)

		if r.bound[d.Name] > 0 || r.ctx == nil {
			return t, nil
		}

		def, err := r.ctx.Lookup(d.Name)
		if err != nil || def.Value == nil {
			return t, nil
		}

		// A value whose free names collide with enclosing binders would be
		// captured at the occurrence site; leave the name folded there.
		for name := range def.Value.FreeVars() {
			if r.bound[name] > 0 {
				return t, nil
			}
		}

		// Delta: unfold the definition's value.
		if err := r.spend(); err != nil {
			return nil, err
		}

		return r.normalize(def.Value)
	case TermKindLambda:
		d := t.Data.(*LambdaTerm)
		dom := r.reduceType(d.Domain)

		r.bound[d.Param]++
		body, err := r.normalize(d.Body)
		r.bound[d.Param]--

		if err != nil {
			return nil, err
		}

		if dom == d.Domain && body == d.Body {
			return t, nil
		}

		return NewLambda(d.Param, dom, body), nil
	case TermKindPi:
		d := t.Data.(*PiTerm)
		dom := r.reduceType(d.Domain)

		r.bound[d.Param]++
		cod := r.reduceType(d.Codomain)
		r.bound[d.Param]--

		if dom == d.Domain && cod == d.Codomain {
			return t, nil
		}

		return NewPiTerm(d.Param, dom, cod), nil
	case TermKindApp:
		d := t.Data.(*AppTerm)

		fn, err := r.normalize(d.Fn)
		if err != nil {
			return nil, err
		}

		arg, err := r.normalize(d.Arg)
		if err != nil {
			return nil, err
		}

		if fn.Kind == TermKindLambda {
			// Beta: substitute the argument into the body.
			if err := r.spend(); err != nil {
				return nil, err
			}

			lam := fn.Data.(*LambdaTerm)

			return r.normalize(lam.Body.Substitute(lam.Param, arg))
		}

		if fn == d.Fn && arg == d.Arg {
			return t, nil
		}

		return NewApp(fn, arg), nil
	case TermKindConstructor:
		d := t.Data.(*ConstructorTerm)
		changed := false
		args := make([]*Term, len(d.Args))

		for i, arg := range d.Args {
			na, err := r.normalize(arg)
			if err != nil {
				return nil, err
			}

			args[i] = na
			if na != arg {
				changed = true
			}
		}

		if !changed {
			return t, nil
		}

		return NewConstructor(d.Name, args...), nil
	case TermKindMatch:
		return r.normalizeMatch(t)
	case TermKindAnnotated:
		// Annotations guide checking only; reduction erases them.
		return r.normalize(t.Data.(*AnnotatedTerm).Term)
	case TermKindLet:
		d := t.Data.(*LetTerm)

		// Zeta: substitute the bound value into the body.
		if err := r.spend(); err != nil {
			return nil, err
		}

		return r.normalize(d.Body.Substitute(d.Name, d.Value))
	default:
		return t, nil
	}
}

func (r *reducer) normalizeMatch(t *Term) (*Term, error) {
	d := t.Data.(*MatchTerm)

	scr, err := r.normalize(d.Scrutinee)
	if err != nil {
		return nil, err
	}

	if name, args, ok := constructorSpine(scr); ok {
		for _, br := range d.Branches {
			if br.Pattern.Constructor != name {
				continue
			}

			if len(br.Pattern.Binders) != len(args) {
				// Arity disagrees with the pattern; leave the match stuck
				// rather than mis-bind arguments.
				break
			}

			// Iota: bind the pattern variables to the constructor
			// arguments simultaneously and take the branch body.
			if err := r.spend(); err != nil {
				return nil, err
			}

			subs := make(map[string]*Term, len(args))
			for i, binder := range br.Pattern.Binders {
				subs[binder] = args[i]
			}

			return r.normalize(br.Body.SubstituteAll(subs))
		}
	}

	changed := scr != d.Scrutinee
	branches := make([]MatchBranch, len(d.Branches))

	for i, br := range d.Branches {
		for _, b := range br.Pattern.Binders {
			r.bound[b]++
		}

		body, err := r.normalize(br.Body)

		for _, b := range br.Pattern.Binders {
			r.bound[b]--
		}

		if err != nil {
			return nil, err
		}

		branches[i] = MatchBranch{Pattern: br.Pattern, Body: body}
		if body != br.Body {
			changed = true
		}
	}

	if !changed {
		return t, nil
	}

	return NewMatch(scr, branches...), nil
}

// constructorSpine flattens a curried application spine down to a
// constructor head, combining the constructor's own arguments with the
// applied ones.
func constructorSpine(t *Term) (string, []*Term, bool) {
	var spine []*Term

	cur := t
	for cur.Kind == TermKindApp {
		d := cur.Data.(*AppTerm)
		spine = append(spine, d.Arg)
		cur = d.Fn
	}

	if cur.Kind != TermKindConstructor {
		return "", nil, false
	}

	// The spine was collected innermost-last; reverse it.
	for i, j := 0, len(spine)-1; i < j; i, j = i+1, j-1 {
		spine[i], spine[j] = spine[j], spine[i]
	}

	d := cur.Data.(*ConstructorTerm)
	args := make([]*Term, 0, len(d.Args)+len(spine))
	args = append(args, d.Args...)
	args = append(args, spine...)

	return d.Name, args, true
}

func (r *reducer) reduceType(t *Type) *Type {
	switch t.Kind {
	case TypeKindPi:
		d := t.Data.(*PiType)
		dom := r.reduceType(d.Domain)

		r.bound[d.Param]++
		cod := r.reduceType(d.Codomain)
		r.bound[d.Param]--

		if dom == d.Domain && cod == d.Codomain {
			return t
		}

		return NewPiType(d.Param, dom, cod)
	case TypeKindSum:
		d := t.Data.(*SumType)
		left := r.reduceType(d.Left)
		right := r.reduceType(d.Right)

		if left == d.Left && right == d.Right {
			return t
		}

		return NewSumType(left, right)
	case TypeKindProduct:
		d := t.Data.(*ProductType)
		left := r.reduceType(d.Left)
		right := r.reduceType(d.Right)

		if left == d.Left && right == d.Right {
			return t
		}

		return NewProductType(left, right)
	case TypeKindFunction:
		d := t.Data.(*FunctionType)
		dom := r.reduceType(d.Domain)
		cod := r.reduceType(d.Codomain)

		if dom == d.Domain && cod == d.Codomain {
			return t
		}

		return NewFunctionType(dom, cod)
	case TypeKindApp:
		d := t.Data.(*TypeApp)
		fn := r.reduceType(d.Fn)

		arg, err := r.normalize(d.Arg)
		if err != nil {
			arg = d.Arg
		}

		if fn.Kind == TypeKindPi {
			// Type-level beta: apply the Pi to its argument.
			if err := r.spend(); err != nil {
				return NewTypeApp(fn, arg)
			}

			pi := fn.Data.(*PiType)

			return r.reduceType(pi.Codomain.SubstituteTerm(pi.Param, arg))
		}

		if fn == d.Fn && arg == d.Arg {
			return t
		}

		return NewTypeApp(fn, arg)
	default:
		return t
	}
}
