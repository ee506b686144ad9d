package term

// Unify computes the most general unifier of a and b that is consistent with
// the bindings already in s. It returns the extended substitution and true on
// success. Failure is an ordinary negative result, not an error.
func Unify(a, b Element, s Substitution) (Substitution, bool) {
	a = s.walk(a)
	b = s.walk(b)

	if av, ok := a.(Variable); ok {
		if bv, ok := b.(Variable); ok && av == bv {
			return s, true
		}
		return bindVariable(av, b, s)
	}
	if bv, ok := b.(Variable); ok {
		return bindVariable(bv, a, s)
	}
	return a.unify(b, s)
}

// Unifiable reports whether a and b unify from scratch.
func Unifiable(a, b Element) bool {
	_, ok := Unify(a, b, Substitution{})
	return ok
}

// EqualModuloVariables reports whether a and b are variants of each other,
// i.e. identical up to a consistent renaming of variables.
func EqualModuloVariables(a, b Element) bool {
	fwd := map[Variable]Variable{}
	back := map[Variable]Variable{}
	return variant(a, b, fwd, back)
}

func variant(a, b Element, fwd, back map[Variable]Variable) bool {
	switch x := a.(type) {
	case Variable:
		y, ok := b.(Variable)
		if !ok {
			return false
		}
		if m, seen := fwd[x]; seen {
			return m == y
		}
		if m, seen := back[y]; seen {
			return m == x
		}
		fwd[x] = y
		back[y] = x
		return true
	case Term:
		y, ok := b.(Term)
		if !ok || x.Functor != y.Functor || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !variant(x.Args[i], y.Args[i], fwd, back) {
				return false
			}
		}
		return true
	case ElementList:
		y, ok := b.(ElementList)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !variant(x[i], y[i], fwd, back) {
				return false
			}
		}
		return true
	default:
		return a.Equal(b)
	}
}

func bindVariable(v Variable, e Element, s Substitution) (Substitution, bool) {
	if occurs(v, e, s) {
		return s, false
	}
	return s.Bind(v, e), true
}

// occurs reports whether v appears in e once e is dereferenced through s.
func occurs(v Variable, e Element, s Substitution) bool {
	e = s.walk(e)
	switch x := e.(type) {
	case Variable:
		return x == v
	case Term:
		for _, a := range x.Args {
			if occurs(v, a, s) {
				return true
			}
		}
	case ElementList:
		for _, a := range x {
			if occurs(v, a, s) {
				return true
			}
		}
	}
	return false
}

// Renamer standardises variables apart by issuing fresh renaming ids.
// A Renamer is owned by a single query.
type Renamer struct {
	next int
}

// Rename returns a substitution mapping every given variable to a fresh
// variable with the same name.
func (r *Renamer) Rename(vars []Variable) Substitution {
	if len(vars) == 0 {
		return Substitution{}
	}
	r.next++
	id := r.next
	out := Substitution{bindings: make(map[Variable]Element, len(vars))}
	for _, v := range vars {
		out.bindings[v] = Variable{Name: v.Name, ID: id}
	}
	return out
}
