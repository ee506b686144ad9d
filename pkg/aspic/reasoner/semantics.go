package reasoner

import (
	"fmt"
	"sort"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
)

// Semantics selects which arguments of a framework are justified.
type Semantics string

const (
	// Grounded accepts the least fixed point of the defence function.
	Grounded Semantics = "grounded"
	// PreferredCredulous accepts arguments in at least one preferred extension.
	PreferredCredulous Semantics = "preferred-credulous"
	// PreferredSkeptical accepts arguments in every preferred extension.
	PreferredSkeptical Semantics = "preferred-skeptical"
)

// SemanticsNames lists the accepted semantics names.
func SemanticsNames() []string {
	return []string{string(Grounded), string(PreferredCredulous), string(PreferredSkeptical)}
}

// ParseSemantics resolves a configured semantics name.
func ParseSemantics(name string) (Semantics, error) {
	switch s := Semantics(name); s {
	case Grounded, PreferredCredulous, PreferredSkeptical:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown semantics %q (want one of %v)", internalerr.ErrInvalidConfig, name, SemanticsNames())
}

// maxUndecided bounds the arguments left open by the grounded labelling
// that preferred semantics enumerates over.
const maxUndecided = 24

// Label is the grounded status of an argument.
type Label int

const (
	Undecided Label = iota
	In
	Out
)

func (l Label) String() string {
	switch l {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return "undec"
	}
}

// groundedLabelling labels arguments In once all their defeaters are Out and
// Out once some defeater is In, until nothing changes.
func groundedLabelling(defeaters [][]int) []Label {
	labels := make([]Label, len(defeaters))
	for changed := true; changed; {
		changed = false
		for i, ds := range defeaters {
			if labels[i] != Undecided {
				continue
			}
			allOut := true
			for _, d := range ds {
				if labels[d] == In {
					labels[i] = Out
					changed = true
					break
				}
				if labels[d] != Out {
					allOut = false
				}
			}
			if labels[i] == Undecided && allOut {
				labels[i] = In
				changed = true
			}
		}
	}
	return labels
}

// preferredExtensions enumerates the maximal admissible sets. Every preferred
// extension contains the grounded extension and excludes what it defeats,
// so only undecided arguments are searched.
func preferredExtensions(defeaters, defeated [][]int, labels []Label) ([][]int, error) {
	var base, open []int
	for i, l := range labels {
		switch l {
		case In:
			base = append(base, i)
		case Undecided:
			open = append(open, i)
		}
	}
	if len(open) > maxUndecided {
		return nil, fmt.Errorf("%w: %d undecided arguments for preferred semantics", ErrTooManyArguments, len(open))
	}

	n := len(defeaters)
	member := make([]bool, n)
	for _, i := range base {
		member[i] = true
	}

	conflicts := func(i int) bool {
		if member[i] {
			return false
		}
		for _, d := range defeaters[i] {
			if member[d] || d == i {
				return true
			}
		}
		for _, v := range defeated[i] {
			if member[v] {
				return true
			}
		}
		return false
	}

	admissible := func() bool {
		for i := 0; i < n; i++ {
			if !member[i] {
				continue
			}
			for _, d := range defeaters[i] {
				defended := false
				for _, c := range defeaters[d] {
					if member[c] {
						defended = true
						break
					}
				}
				if !defended {
					return false
				}
			}
		}
		return true
	}

	var found [][]int
	var search func(k int)
	search = func(k int) {
		if k == len(open) {
			if admissible() {
				var ext []int
				for i := 0; i < n; i++ {
					if member[i] {
						ext = append(ext, i)
					}
				}
				found = append(found, ext)
			}
			return
		}
		i := open[k]
		if !conflicts(i) {
			member[i] = true
			search(k + 1)
			member[i] = false
		}
		search(k + 1)
	}
	search(0)

	return maximal(found), nil
}

// maximal keeps the sets not strictly contained in another one.
func maximal(sets [][]int) [][]int {
	sort.SliceStable(sets, func(i, j int) bool { return len(sets[i]) > len(sets[j]) })
	var out [][]int
	for _, s := range sets {
		contained := false
		for _, m := range out {
			if subset(s, m) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, s)
		}
	}
	return out
}

// subset reports whether sorted a is contained in sorted b.
func subset(a, b []int) bool {
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}
		if j == len(b) || b[j] != x {
			return false
		}
	}
	return true
}
