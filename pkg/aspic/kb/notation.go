package kb

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/aspic/pkg/aspic/internalerr"
	"github.com/cognicore/aspic/pkg/aspic/term"
)

// ParseRule reads one rule in the notation produced by Inspect:
//
//	[name] head <- body1, body2 0.8
//
// The name and the trailing degree of belief are optional; a missing dob is
// 1.0. A trailing full stop is ignored.
func ParseRule(line string) (*Rule, error) {
	src := strings.TrimSpace(line)
	src = strings.TrimSuffix(src, ".")
	if src == "" {
		return nil, fmt.Errorf("%w: empty rule", internalerr.ErrInvalidInput)
	}

	var name term.Element
	if strings.HasPrefix(src, "[") {
		end := strings.Index(src, "]")
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated rule name in %q", internalerr.ErrInvalidInput, line)
		}
		n, err := term.Parse(src[1:end])
		if err != nil {
			return nil, fmt.Errorf("rule name: %w", err)
		}
		name = n
		src = strings.TrimSpace(src[end+1:])
	}

	dob := StrictDob
	if body, d, ok := splitDob(src); ok {
		dob, src = d, body
	}

	head, body := src, ""
	if i := strings.Index(src, "<-"); i >= 0 {
		head, body = strings.TrimSpace(src[:i]), strings.TrimSpace(src[i+2:])
		if body == "" {
			return nil, fmt.Errorf("%w: empty body in %q", internalerr.ErrInvalidInput, line)
		}
	}
	consequent, err := term.Parse(head)
	if err != nil {
		return nil, fmt.Errorf("rule head: %w", err)
	}
	antecedent, err := term.ParseList(body)
	if err != nil {
		return nil, fmt.Errorf("rule body: %w", err)
	}
	return NewRule(consequent, antecedent, dob, name)
}

// splitDob separates a trailing degree of belief. The number only counts as
// a dob when the text before it still reads as a rule.
func splitDob(src string) (string, float64, bool) {
	i := strings.LastIndexAny(src, " \t")
	if i < 0 {
		return "", 0, false
	}
	d, err := strconv.ParseFloat(src[i+1:], 64)
	if err != nil {
		return "", 0, false
	}
	rest := strings.TrimSpace(src[:i])
	if h, b, found := strings.Cut(rest, "<-"); found {
		if _, err := term.Parse(strings.TrimSpace(h)); err != nil {
			return "", 0, false
		}
		if _, err := term.ParseList(strings.TrimSpace(b)); err != nil || strings.TrimSpace(b) == "" {
			return "", 0, false
		}
	} else if _, err := term.Parse(rest); err != nil {
		return "", 0, false
	}
	return rest, d, true
}

// ParseRules reads one rule per line. Blank lines and lines starting with %
// are skipped, and a trailing % comment becomes the rule's caption.
func ParseRules(text string) ([]*Rule, error) {
	var out []*Rule
	sc := bufio.NewScanner(strings.NewReader(text))
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		caption := ""
		if i := strings.Index(line, " % "); i >= 0 {
			caption = strings.TrimSpace(line[i+3:])
			line = line[:i]
		}
		r, err := ParseRule(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		r.Caption = caption
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MustParseRules is ParseRules that panics on error.
func MustParseRules(text string) []*Rule {
	rules, err := ParseRules(text)
	if err != nil {
		panic(err)
	}
	return rules
}

// FromText builds a knowledge base from rules in line notation.
func FromText(text string) (*KnowledgeBase, error) {
	rules, err := ParseRules(text)
	if err != nil {
		return nil, err
	}
	base := New()
	if _, err := base.AddRules(rules); err != nil {
		return nil, err
	}
	return base, nil
}
