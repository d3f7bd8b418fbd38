package rversion

import (
	"regexp"
	"sort"

	lru "github.com/hashicorp/golang-lru"
)

// constraintCache memoizes ParseConstraintList results. Upstream metadata
// repeats the same constraint expressions (e.g. "R (>= 3.5)") across many
// package versions, so caching the parse is a real win; bounded size keeps
// a long update-cache run over a big config from growing this without
// limit, mirroring the cache Masterminds/semver keeps for parsed versions.
var constraintCache, _ = lru.New(4096)

// Operator is one of the seven comparator tokens a Constraint can carry.
type Operator string

const (
	OpGT  Operator = ">"
	OpGE  Operator = ">="
	OpLT  Operator = "<"
	OpLE  Operator = "<="
	OpEQ  Operator = "=="
	OpEQ1 Operator = "="
	OpNE  Operator = "!="
)

// Constraint is a single (operator, version) restriction.
type Constraint struct {
	Operator Operator
	Version  string
}

// Satisfies reports whether candidate satisfies this single constraint.
func (c Constraint) Satisfies(candidate string) bool {
	cmp := Compare(Parse(candidate), Parse(c.Version))
	switch c.Operator {
	case OpGT:
		return cmp > 0
	case OpGE:
		return cmp >= 0
	case OpLT:
		return cmp < 0
	case OpLE:
		return cmp <= 0
	case OpEQ, OpEQ1:
		return cmp == 0
	case OpNE:
		return cmp != 0
	default:
		return false
	}
}

// constraintTokenRE finds the first operator followed by a version token
// within a constraint fragment. Longer operators are listed first so that,
// e.g., ">=" is preferred over a bare ">" match.
var constraintTokenRE = regexp.MustCompile(`(>=|<=|==|!=|=|>|<)\s*([0-9A-Za-z_.-]+)`)

// ParseConstraintList splits expr on commas and extracts a Constraint from
// each fragment. Fragments that contain no recognizable operator+version
// token are silently dropped — upstream DESCRIPTION-style metadata is full
// of free-form parenthetical text that must not abort parsing.
func ParseConstraintList(expr string) []Constraint {
	if cached, ok := constraintCache.Get(expr); ok {
		return cached.([]Constraint)
	}

	var out []Constraint
	for _, fragment := range splitTopLevelComma(expr) {
		m := constraintTokenRE.FindStringSubmatch(fragment)
		if m == nil {
			continue
		}
		out = append(out, Constraint{Operator: Operator(m[1]), Version: m[2]})
	}
	constraintCache.Add(expr, out)
	return out
}

func splitTopLevelComma(expr string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == ',' {
			parts = append(parts, expr[start:i])
			start = i + 1
		}
	}
	parts = append(parts, expr[start:])
	return parts
}

// SatisfiesAll reports whether candidate satisfies every constraint in cs.
func SatisfiesAll(candidate string, cs []Constraint) bool {
	for _, c := range cs {
		if !c.Satisfies(candidate) {
			return false
		}
	}
	return true
}

// HighestSatisfying returns the highest version in versions that satisfies
// every constraint in cs, or ("", false) if none do.
func HighestSatisfying(versions []string, cs []Constraint) (string, bool) {
	var filtered []string
	for _, v := range versions {
		if SatisfiesAll(v, cs) {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return "", false
	}
	sort.Slice(filtered, func(i, j int) bool {
		return Less(Parse(filtered[j]), Parse(filtered[i]))
	})
	return filtered[0], true
}
