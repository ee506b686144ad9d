package argument

import (
	"fmt"
	"math"
	"sort"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/kb"
)

// Valuator aggregates the support of the sub-arguments proving the body of
// top into the support of the argument built from top.
type Valuator interface {
	Name() string
	Valuate(top *kb.Rule, subs *RuleArgumentList) float64
	// SubThreshold is the support each sub-argument must reach for the
	// argument on top of it to reach needed.
	SubThreshold(needed float64) float64
}

const (
	WeakestLinkName = "weakest-link"
	LastLinkName    = "last-link"
)

var (
	// WeakestLink is the minimum of the top rule's dob and the support of
	// every sub-argument.
	WeakestLink Valuator = weakestLink{}
	// LastLink is the top rule's dob; the sub-arguments only have to exist.
	LastLink Valuator = lastLink{}
)

type weakestLink struct{}

func (weakestLink) Name() string { return WeakestLinkName }

func (weakestLink) Valuate(top *kb.Rule, subs *RuleArgumentList) float64 {
	support := top.Dob
	for _, a := range subs.Arguments {
		support = math.Min(support, a.Support)
	}
	return support
}

func (weakestLink) SubThreshold(needed float64) float64 { return needed }

type lastLink struct{}

func (lastLink) Name() string { return LastLinkName }

func (lastLink) Valuate(top *kb.Rule, _ *RuleArgumentList) float64 { return top.Dob }

func (lastLink) SubThreshold(float64) float64 { return 0 }

var valuators = map[string]Valuator{
	WeakestLinkName: WeakestLink,
	LastLinkName:    LastLink,
}

// ValuatorByName resolves a configured valuation name.
func ValuatorByName(name string) (Valuator, error) {
	v, ok := valuators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown valuation %q (want one of %v)", internalerr.ErrInvalidConfig, name, ValuatorNames())
	}
	return v, nil
}

// ValuatorNames lists the known valuation names.
func ValuatorNames() []string {
	names := make([]string, 0, len(valuators))
	for n := range valuators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
