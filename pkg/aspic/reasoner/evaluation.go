package reasoner

import (
	"github.com/cognicore/aspic/pkg/aspic/argument"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// Status is the outcome for one argument of a framework.
type Status struct {
	// Label is the grounded label, whatever the semantics.
	Label Label
	// Accepted is the verdict under the evaluation's semantics.
	Accepted bool
	// Extensions counts the extensions containing the argument.
	Extensions int
}

// Evaluation is the result of one query.
type Evaluation struct {
	QueryID   string
	Goal      term.ElementList
	Needed    float64
	Semantics Semantics
	Framework *Framework
	// Query holds the arguments built for the goal, in construction order.
	Query []*argument.RuleArgument
	// Extensions holds the grounded extension, or every preferred extension.
	Extensions [][]*argument.RuleArgument

	labels []Label
	status []Status
}

func evaluate(fw *Framework, query []*argument.RuleArgument, sem Semantics, needed float64) (*Evaluation, error) {
	ev := &Evaluation{
		Needed:    needed,
		Semantics: sem,
		Framework: fw,
		Query:     query,
		labels:    groundedLabelling(fw.defeaters),
		status:    make([]Status, fw.Len()),
	}

	var exts [][]int
	switch sem {
	case Grounded:
		var in []int
		for i, l := range ev.labels {
			if l == In {
				in = append(in, i)
			}
		}
		exts = [][]int{in}
	case PreferredCredulous, PreferredSkeptical:
		var err error
		exts, err = preferredExtensions(fw.defeaters, fw.defeated, ev.labels)
		if err != nil {
			return nil, err
		}
	default:
		_, err := ParseSemantics(string(sem))
		return nil, err
	}

	for _, ext := range exts {
		args := make([]*argument.RuleArgument, len(ext))
		for j, i := range ext {
			args[j] = fw.Arguments[i]
			ev.status[i].Extensions++
		}
		ev.Extensions = append(ev.Extensions, args)
	}
	for i := range ev.status {
		ev.status[i].Label = ev.labels[i]
		switch sem {
		case PreferredSkeptical:
			ev.status[i].Accepted = ev.status[i].Extensions == len(exts)
		default:
			ev.status[i].Accepted = ev.status[i].Extensions > 0
		}
	}
	return ev, nil
}

// Status returns the outcome for an argument of the framework.
func (ev *Evaluation) Status(a *argument.RuleArgument) (Status, bool) {
	i, ok := ev.Framework.IndexOf(a)
	if !ok {
		return Status{}, false
	}
	return ev.status[i], true
}

// IsAccepted reports whether a is justified under the evaluation's semantics.
func (ev *Evaluation) IsAccepted(a *argument.RuleArgument) bool {
	s, ok := ev.Status(a)
	return ok && s.Accepted
}

// Accepted returns the accepted query arguments meeting the needed support.
func (ev *Evaluation) Accepted() []*argument.RuleArgument {
	var out []*argument.RuleArgument
	for _, a := range ev.Query {
		if a.Support >= ev.Needed && ev.IsAccepted(a) {
			out = append(out, a)
		}
	}
	return out
}

// Rejected returns the query arguments that are not accepted.
func (ev *Evaluation) Rejected() []*argument.RuleArgument {
	var out []*argument.RuleArgument
	for _, a := range ev.Query {
		if !ev.IsAccepted(a) {
			out = append(out, a)
		}
	}
	return out
}

// Bindings returns the goal's variable bindings for each accepted argument.
func (ev *Evaluation) Bindings() []term.Substitution {
	vars := ev.Goal.Variables()
	var out []term.Substitution
	for _, a := range ev.Accepted() {
		out = append(out, a.Substitution.Restrict(vars))
	}
	return out
}

// InExtension reports whether some extension contains an argument
// claiming claim.
func (ev *Evaluation) InExtension(claim term.Element) bool {
	for _, ext := range ev.Extensions {
		for _, a := range ext {
			if a.Claim.Equal(claim) {
				return true
			}
		}
	}
	return false
}
