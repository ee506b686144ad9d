package reasoner

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/cognicore/aspic/pkg/aspic/argument"
	"github.com/cognicore/aspic/pkg/aspic/internalerr"
)

// ErrTooManyArguments is returned when a framework outgrows its bound.
var ErrTooManyArguments = fmt.Errorf("%w: too many arguments", internalerr.ErrLimitExceeded)

// Framework is the attack graph over every argument relevant to a query.
type Framework struct {
	Arguments []*argument.RuleArgument
	Attacks   []Attack

	index     map[*argument.RuleArgument]int
	keys      map[string]int
	defeaters [][]int
	defeated  [][]int
}

func newFramework() *Framework {
	return &Framework{
		index: make(map[*argument.RuleArgument]int),
		keys:  make(map[string]int),
	}
}

// add inserts a, unless an argument with the same key is present. It returns
// the index of the stored argument and whether a was new.
func (f *Framework) add(a *argument.RuleArgument) (int, bool) {
	key := a.Key()
	if i, ok := f.keys[key]; ok {
		return i, false
	}
	i := len(f.Arguments)
	f.Arguments = append(f.Arguments, a)
	f.index[a] = i
	f.keys[key] = i
	return i, true
}

// Len returns the number of arguments.
func (f *Framework) Len() int { return len(f.Arguments) }

// IndexOf returns the position of a in Arguments.
func (f *Framework) IndexOf(a *argument.RuleArgument) (int, bool) {
	i, ok := f.index[a]
	if !ok {
		i, ok = f.keys[a.Key()]
	}
	return i, ok
}

// Defeats returns the attacks that succeed as defeats.
func (f *Framework) Defeats() []Attack {
	var out []Attack
	for _, at := range f.Attacks {
		if at.Defeats() {
			out = append(out, at)
		}
	}
	return out
}

// DefeatersOf returns the arguments that defeat a.
func (f *Framework) DefeatersOf(a *argument.RuleArgument) []*argument.RuleArgument {
	i, ok := f.IndexOf(a)
	if !ok {
		return nil
	}
	out := make([]*argument.RuleArgument, 0, len(f.defeaters[i]))
	for _, d := range f.defeaters[i] {
		out = append(out, f.Arguments[d])
	}
	return out
}

// AttacksOn returns every recorded attack on a.
func (f *Framework) AttacksOn(a *argument.RuleArgument) []Attack {
	var out []Attack
	for _, at := range f.Attacks {
		if at.Target == a {
			out = append(out, at)
		}
	}
	return out
}

// frameworkBuilder grows a framework from the query arguments by searching,
// for every attackable sub-argument, the arguments strong enough to defeat
// it.
type frameworkBuilder struct {
	builder    *argument.Builder
	restricted bool
	limit      int
	logger     *zap.Logger

	searched map[string]struct{}
}

func (fb *frameworkBuilder) build(ctx context.Context, query []*argument.RuleArgument) (*Framework, error) {
	fw := newFramework()
	fb.searched = make(map[string]struct{})

	var queue []int
	for _, a := range query {
		if i, isNew := fw.add(a); isNew {
			queue = append(queue, i)
		}
	}
	if fw.Len() > fb.limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyArguments, fw.Len(), fb.limit)
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target := fw.Arguments[queue[0]]
		queue = queue[1:]

		for _, sub := range target.Subs() {
			if _, ok := attackable(target, sub, fb.restricted); !ok {
				continue
			}
			literal := attackLiteral(sub)
			memo := literal.Inspect() + "@" + strconv.FormatFloat(sub.Support, 'g', -1, 64)
			if _, done := fb.searched[memo]; done {
				continue
			}
			fb.searched[memo] = struct{}{}

			it := fb.builder.ArgumentsAt(literal, sub.Support, sub.DTop+1)
			for it.HasNext() {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				i, isNew := fw.add(it.Next())
				if !isNew {
					continue
				}
				if fw.Len() > fb.limit {
					return nil, fmt.Errorf("%w: more than %d", ErrTooManyArguments, fb.limit)
				}
				queue = append(queue, i)
			}
		}
	}

	fb.link(fw)
	fb.logger.Debug("framework built",
		zap.Int("arguments", fw.Len()),
		zap.Int("attacks", len(fw.Attacks)))
	return fw, nil
}

// link computes attacks between every pair of arguments in the framework.
func (fb *frameworkBuilder) link(fw *Framework) {
	type point struct {
		target int
		sub    *argument.RuleArgument
		kind   AttackKind
	}
	byLiteral := make(map[string][]point)
	for ti, target := range fw.Arguments {
		for _, sub := range target.Subs() {
			kind, ok := attackable(target, sub, fb.restricted)
			if !ok {
				continue
			}
			key := attackLiteral(sub).Inspect()
			byLiteral[key] = append(byLiteral[key], point{target: ti, sub: sub, kind: kind})
		}
	}

	fw.defeaters = make([][]int, fw.Len())
	fw.defeated = make([][]int, fw.Len())
	seen := make(map[[2]int]bool)
	for ai, attacker := range fw.Arguments {
		for _, p := range byLiteral[attacker.Claim.Inspect()] {
			if !attacker.Claim.Equal(attackLiteral(p.sub)) {
				continue
			}
			at := Attack{Attacker: attacker, Target: fw.Arguments[p.target], At: p.sub, Kind: p.kind}
			fw.Attacks = append(fw.Attacks, at)
			pair := [2]int{ai, p.target}
			if at.Defeats() && !seen[pair] {
				seen[pair] = true
				fw.defeaters[p.target] = append(fw.defeaters[p.target], ai)
				fw.defeated[ai] = append(fw.defeated[ai], p.target)
			}
		}
	}
}
