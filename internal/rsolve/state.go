package rsolve

import (
	"github.com/rverflow/rverflow/internal/rmodel"
	"github.com/rverflow/rverflow/internal/rversion"
)

// packageRequest is one request to resolve a package, either a top-level
// target or a dependency edge discovered while resolving its parent.
type packageRequest struct {
	Package     string
	Source      string
	Constraints []rversion.Constraint
	RequiredBy  []string
	BiocRelease string
	GithubRef   string
	GithubToken string
	GithubSlug  string
}

// resolutionState is the mutable state threaded through one solve() call for
// a single candidate R version. assignments and constraints are keyed by
// package name; visiting guards against dependency cycles.
type resolutionState struct {
	candidateR        string
	includeOptional   bool
	preferBiocRelease string

	assignments map[string]rmodel.Selection
	constraints map[string][]rversion.Constraint
	visiting    map[string]bool
}

func newResolutionState(candidateR string, includeOptional bool, preferBiocRelease string) *resolutionState {
	return &resolutionState{
		candidateR:        candidateR,
		includeOptional:   includeOptional,
		preferBiocRelease: preferBiocRelease,
		assignments:       make(map[string]rmodel.Selection),
		constraints:       make(map[string][]rversion.Constraint),
		visiting:          make(map[string]bool),
	}
}

func appendRequiredBy(chain []string, next string) []string {
	out := make([]string, len(chain)+1)
	copy(out, chain)
	out[len(chain)] = next
	return out
}

func constraintStrings(cs []rversion.Constraint) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c.Operator) + c.Version
	}
	return out
}
