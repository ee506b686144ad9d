package term

import (
	"strings"
)

// Substitution maps variables to elements. The zero value is the empty
// substitution. Substitutions are never mutated once shared: Bind and Compose
// return new values.
type Substitution struct {
	bindings map[Variable]Element
}

// NewSubstitution builds a substitution from explicit bindings.
func NewSubstitution(bindings map[Variable]Element) Substitution {
	s := Substitution{bindings: make(map[Variable]Element, len(bindings))}
	for k, v := range bindings {
		s.bindings[k] = v
	}
	return s
}

// Len returns the number of bindings.
func (s Substitution) Len() int {
	return len(s.bindings)
}

// Lookup returns the direct binding of v, without dereferencing chains.
func (s Substitution) Lookup(v Variable) (Element, bool) {
	e, ok := s.bindings[v]
	return e, ok
}

// Bind returns a copy of s extended with v -> e.
func (s Substitution) Bind(v Variable, e Element) Substitution {
	out := Substitution{bindings: make(map[Variable]Element, len(s.bindings)+1)}
	for k, val := range s.bindings {
		out.bindings[k] = val
	}
	out.bindings[v] = e
	return out
}

// Variables returns the bound variables in a stable order.
func (s Substitution) Variables() []Variable {
	vars := make([]Variable, 0, len(s.bindings))
	for v := range s.bindings {
		vars = append(vars, v)
	}
	SortVariables(vars)
	return vars
}

// Apply replaces every bound variable in e, following binding chains.
func (s Substitution) Apply(e Element) Element {
	if e == nil {
		return nil
	}
	return e.Apply(s)
}

// ApplyList applies s to every member of l.
func (s Substitution) ApplyList(l ElementList) ElementList {
	out := make(ElementList, len(l))
	for i, e := range l {
		out[i] = e.Apply(s)
	}
	return out
}

// Compose chains s with a later substitution t: the result behaves as
// applying s and then t.
func (s Substitution) Compose(t Substitution) Substitution {
	if t.Len() == 0 {
		return s
	}
	if s.Len() == 0 {
		return t
	}
	out := Substitution{bindings: make(map[Variable]Element, len(s.bindings)+len(t.bindings))}
	for v, e := range s.bindings {
		out.bindings[v] = e.Apply(t)
	}
	for v, e := range t.bindings {
		if _, ok := out.bindings[v]; !ok {
			out.bindings[v] = e
		}
	}
	return out
}

// Restrict returns the fully applied bindings of the given variables only.
// Variables that remain unbound are omitted.
func (s Substitution) Restrict(vars []Variable) Substitution {
	out := Substitution{bindings: make(map[Variable]Element, len(vars))}
	for _, v := range vars {
		if e := v.Apply(s); !e.Equal(v) {
			out.bindings[v] = e
		}
	}
	return out
}

// Equal compares the fully applied bindings of two substitutions.
func (s Substitution) Equal(o Substitution) bool {
	if s.Len() != o.Len() {
		return false
	}
	for v := range s.bindings {
		if _, ok := o.bindings[v]; !ok {
			return false
		}
		if !v.Apply(s).Equal(v.Apply(o)) {
			return false
		}
	}
	return true
}

// Inspect renders the substitution as {X/a, Y/f(b)}.
func (s Substitution) Inspect() string {
	vars := s.Variables()
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.Inspect() + "/" + v.Apply(s).Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// walk dereferences a variable through the substitution until it reaches a
// non-variable or an unbound variable. It does not descend into arguments.
func (s Substitution) walk(e Element) Element {
	for {
		v, ok := e.(Variable)
		if !ok {
			return e
		}
		bound, ok := s.bindings[v]
		if !ok {
			return v
		}
		e = bound
	}
}
