package cic

// Capture-avoiding substitution over terms and types. Substitution skips
// occurrences shadowed by a re-bound variable of the same name, and renames
// a binder with a fresh name whenever a replacement's free variables would
// otherwise be captured by it. Unchanged sub-trees are returned by pointer
// so widely shared terms are not copied.

// freshName returns a name based on base that does not occur in avoid.
func freshName(base string, avoid map[string]struct{}) string {
	name := base
	for {
		if _, taken := avoid[name]; !taken {
			return name
		}

		name += "'"
	}
}

// Substitute replaces every free occurrence of name with repl.
func (t *Term) Substitute(name string, repl *Term) *Term {
	return t.SubstituteAll(map[string]*Term{name: repl})
}

// SubstituteAll applies a simultaneous substitution of several variables.
// Simultaneity matters when one replacement's free variables coincide with
// another substituted name, as in iota reduction's pattern bindings.
func (t *Term) SubstituteAll(subs map[string]*Term) *Term {
	if len(subs) == 0 {
		return t
	}

	return t.substitute(subs, substFreeVars(subs))
}

// SubstituteTerm replaces every free occurrence of name in embedded terms
// and dependent codomains with repl.
func (t *Type) SubstituteTerm(name string, repl *Term) *Type {
	return t.SubstituteAllTerms(map[string]*Term{name: repl})
}

// SubstituteAllTerms applies a simultaneous term substitution to a type.
func (t *Type) SubstituteAllTerms(subs map[string]*Term) *Type {
	if len(subs) == 0 {
		return t
	}

	return t.substitute(subs, substFreeVars(subs))
}

// substFreeVars collects the free variables of all replacements.
func substFreeVars(subs map[string]*Term) map[string]struct{} {
	out := make(map[string]struct{})

	for _, repl := range subs {
		for v := range repl.FreeVars() {
			out[v] = struct{}{}
		}
	}

	return out
}

// without returns subs with name removed, sharing subs when absent.
func without(subs map[string]*Term, name string) map[string]*Term {
	if _, ok := subs[name]; !ok {
		return subs
	}

	out := make(map[string]*Term, len(subs)-1)

	for k, v := range subs {
		if k != name {
			out[k] = v
		}
	}

	return out
}

// renameBinder picks a fresh replacement for a binder captured by the
// substitution, returning the new name and the body with the binder
// renamed. body may be nil when only a type codomain is bound.
func renameBinder(param string, body *Term, codomain *Type, replFree map[string]struct{}, subs map[string]*Term) (string, *Term, *Type) {
	avoid := make(map[string]struct{}, len(replFree)+len(subs))

	for v := range replFree {
		avoid[v] = struct{}{}
	}

	for v := range subs {
		avoid[v] = struct{}{}
	}

	if body != nil {
		for v := range body.FreeVars() {
			avoid[v] = struct{}{}
		}
	}

	if codomain != nil {
		for v := range codomain.FreeVars() {
			avoid[v] = struct{}{}
		}
	}

	fresh := freshName(param, avoid)
	freshVar := NewVar(fresh)

	if body != nil {
		body = body.substitute(map[string]*Term{param: freshVar}, map[string]struct{}{fresh: {}})
	}

	if codomain != nil {
		codomain = codomain.substitute(map[string]*Term{param: freshVar}, map[string]struct{}{fresh: {}})
	}

	return fresh, body, codomain
}

func (t *Term) substitute(subs map[string]*Term, replFree map[string]struct{}) *Term {
	switch t.Kind {
	case TermKindVar:
		d := t.Data.(*VarTerm)
		if repl, ok := subs[d.Name]; ok {
			return repl
		}

		return t
	case TermKindLambda:
		d := t.Data.(*LambdaTerm)
		dom := d.Domain.substitute(subs, replFree)
		param, body := d.Param, d.Body
		inner := without(subs, param)

		if len(inner) > 0 {
			if _, captured := replFree[param]; captured {
				param, body, _ = renameBinder(param, body, nil, replFree, inner)
			}

			body = body.substitute(inner, replFree)
		}

		if dom == d.Domain && body == d.Body && param == d.Param {
			return t
		}

		return NewLambda(param, dom, body)
	case TermKindApp:
		d := t.Data.(*AppTerm)
		fn := d.Fn.substitute(subs, replFree)
		arg := d.Arg.substitute(subs, replFree)

		if fn == d.Fn && arg == d.Arg {
			return t
		}

		return NewApp(fn, arg)
	case TermKindPi:
		d := t.Data.(*PiTerm)
		dom := d.Domain.substitute(subs, replFree)
		param, cod := d.Param, d.Codomain
		inner := without(subs, param)

		if len(inner) > 0 {
			if _, captured := replFree[param]; captured {
				param, _, cod = renameBinder(param, nil, cod, replFree, inner)
			}

			cod = cod.substitute(inner, replFree)
		}

		if dom == d.Domain && cod == d.Codomain && param == d.Param {
			return t
		}

		return NewPiTerm(param, dom, cod)
	case TermKindSort:
		return t
	case TermKindConstructor:
		d := t.Data.(*ConstructorTerm)
		changed := false
		args := make([]*Term, len(d.Args))

		for i, arg := range d.Args {
			args[i] = arg.substitute(subs, replFree)
			if args[i] != arg {
				changed = true
			}
		}

		if !changed {
			return t
		}

		return NewConstructor(d.Name, args...)
	case TermKindMatch:
		d := t.Data.(*MatchTerm)
		scr := d.Scrutinee.substitute(subs, replFree)
		changed := scr != d.Scrutinee
		branches := make([]MatchBranch, len(d.Branches))

		for i, br := range d.Branches {
			nb, brChanged := br.substituteBranch(subs, replFree)
			branches[i] = nb

			if brChanged {
				changed = true
			}
		}

		if !changed {
			return t
		}

		return NewMatch(scr, branches...)
	case TermKindAnnotated:
		d := t.Data.(*AnnotatedTerm)
		inner := d.Term.substitute(subs, replFree)
		ty := d.Type.substitute(subs, replFree)

		if inner == d.Term && ty == d.Type {
			return t
		}

		return NewAnnotated(inner, ty)
	case TermKindLet:
		d := t.Data.(*LetTerm)
		value := d.Value.substitute(subs, replFree)
		name, body := d.Name, d.Body
		inner := without(subs, name)

		if len(inner) > 0 {
			if _, captured := replFree[name]; captured {
				name, body, _ = renameBinder(name, body, nil, replFree, inner)
			}

			body = body.substitute(inner, replFree)
		}

		if value == d.Value && body == d.Body && name == d.Name {
			return t
		}

		return NewLet(name, value, body)
	default:
		return t
	}
}

// substituteBranch substitutes under a branch's pattern binders, renaming
// any binder the substitution would capture. The second result reports
// whether anything changed.
func (br MatchBranch) substituteBranch(subs map[string]*Term, replFree map[string]struct{}) (MatchBranch, bool) {
	inner := subs
	for _, b := range br.Pattern.Binders {
		inner = without(inner, b)
	}

	if len(inner) == 0 {
		return br, false
	}

	binders := br.Pattern.Binders
	body := br.Body
	renamed := false

	for i, b := range binders {
		if _, captured := replFree[b]; !captured {
			continue
		}

		if !renamed {
			binders = append([]string(nil), binders...)
			renamed = true
		}

		var fresh string
		fresh, body, _ = renameBinder(b, body, nil, replFree, inner)
		binders[i] = fresh
	}

	body = body.substitute(inner, replFree)
	if body == br.Body && !renamed {
		return br, false
	}

	return MatchBranch{Pattern: Pattern{Constructor: br.Pattern.Constructor, Binders: binders}, Body: body}, true
}

func (t *Type) substitute(subs map[string]*Term, replFree map[string]struct{}) *Type {
	switch t.Kind {
	case TypeKindPi:
		d := t.Data.(*PiType)
		dom := d.Domain.substitute(subs, replFree)
		param, cod := d.Param, d.Codomain
		inner := without(subs, param)

		if len(inner) > 0 {
			if _, captured := replFree[param]; captured {
				param, _, cod = renameBinder(param, nil, cod, replFree, inner)
			}

			cod = cod.substitute(inner, replFree)
		}

		if dom == d.Domain && cod == d.Codomain && param == d.Param {
			return t
		}

		return NewPiType(param, dom, cod)
	case TypeKindSum:
		d := t.Data.(*SumType)
		left := d.Left.substitute(subs, replFree)
		right := d.Right.substitute(subs, replFree)

		if left == d.Left && right == d.Right {
			return t
		}

		return NewSumType(left, right)
	case TypeKindProduct:
		d := t.Data.(*ProductType)
		left := d.Left.substitute(subs, replFree)
		right := d.Right.substitute(subs, replFree)

		if left == d.Left && right == d.Right {
			return t
		}

		return NewProductType(left, right)
	case TypeKindFunction:
		d := t.Data.(*FunctionType)
		dom := d.Domain.substitute(subs, replFree)
		cod := d.Codomain.substitute(subs, replFree)

		if dom == d.Domain && cod == d.Codomain {
			return t
		}

		return NewFunctionType(dom, cod)
	case TypeKindApp:
		d := t.Data.(*TypeApp)
		fn := d.Fn.substitute(subs, replFree)
		arg := d.Arg.substitute(subs, replFree)

		if fn == d.Fn && arg == d.Arg {
			return t
		}

		return NewTypeApp(fn, arg)
	default:
		return t
	}
}
