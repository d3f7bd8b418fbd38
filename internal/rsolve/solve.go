package rsolve

import (
	"context"
	"sort"
	"strings"

	"github.com/rverflow/rverflow/internal/rmeta"
	"github.com/rverflow/rverflow/internal/rmodel"
	"github.com/rverflow/rverflow/internal/rversion"
)

// solver runs the backtracking search for one project: it owns the metadata
// provider and the two project-wide knobs (include-optional, preferred
// Bioconductor release) that every resolve_package call consults.
type solver struct {
	metadata          *rmeta.Provider
	includeOptional   bool
	preferBiocRelease string
}

func newSolver(metadata *rmeta.Provider, includeOptional bool, preferBiocRelease string) *solver {
	return &solver{metadata: metadata, includeOptional: includeOptional, preferBiocRelease: preferBiocRelease}
}

// solve resolves every target against candidateR, returning a Plan if every
// target and transitive dependency finds a consistent assignment.
func (s *solver) solve(ctx context.Context, targets []TargetContext, candidateR string) (*rmodel.Plan, error) {
	state := newResolutionState(candidateR, s.includeOptional, s.preferBiocRelease)
	for _, target := range targets {
		request := packageRequest{
			Package:     target.Package,
			Source:      target.Source,
			Constraints: target.Constraints,
			RequiredBy:  []string{target.Identifier},
			BiocRelease: target.BiocRelease,
			GithubRef:   target.GithubRef,
			GithubToken: target.GithubToken,
			GithubSlug:  target.GithubSlug,
		}
		if _, err := s.resolvePackage(ctx, request, state); err != nil {
			return nil, err
		}
	}
	return &rmodel.Plan{RVersion: candidateR, Selections: state.assignments}, nil
}

// resolvePackage is the core backtracking step: bind request.Package to a
// candidate version, recursively resolve its dependencies, and undo the
// binding on failure before trying the next candidate.
func (s *solver) resolvePackage(ctx context.Context, request packageRequest, state *resolutionState) (rmodel.Selection, error) {
	pkg := request.Package

	if state.visiting[pkg] {
		if existing, ok := state.assignments[pkg]; ok {
			return existing, nil
		}
		return rmodel.Selection{}, &rmodel.ResolutionError{
			Package:    pkg,
			RequiredBy: request.RequiredBy,
			Message:    "Dependency cycle detected",
		}
	}

	aggregated := append(append([]rversion.Constraint(nil), state.constraints[pkg]...), request.Constraints...)

	if existing, ok := state.assignments[pkg]; ok {
		if !rversion.SatisfiesAll(existing.Version, aggregated) {
			return rmodel.Selection{}, &rmodel.ResolutionError{
				Package:    pkg,
				RequiredBy: request.RequiredBy,
				Message:    "Selected version " + existing.Version + " does not satisfy new constraints " + strings.Join(constraintStrings(request.Constraints), ", "),
				Candidates: []string{existing.Version},
			}
		}
		if existing.RMin != "" && rversion.Compare(rversion.Parse(state.candidateR), rversion.Parse(existing.RMin)) < 0 {
			return rmodel.Selection{}, &rmodel.ResolutionError{
				Package:    pkg,
				RequiredBy: request.RequiredBy,
				Message:    "Selected version " + existing.Version + " requires R>=" + existing.RMin,
				Candidates: []string{existing.Version},
			}
		}
		state.constraints[pkg] = aggregated
		return existing, nil
	}

	candidates, err := s.candidateVersions(ctx, request, state, aggregated)
	if err != nil {
		return rmodel.Selection{}, err
	}
	if len(candidates) == 0 {
		return rmodel.Selection{}, &rmodel.ResolutionError{
			Package:    pkg,
			RequiredBy: request.RequiredBy,
			Message:    "No candidate versions satisfy constraints",
			Candidates: []string{"(none)"},
		}
	}

	state.visiting[pkg] = true
	previousConstraints := append([]rversion.Constraint(nil), state.constraints[pkg]...)
	var failures []*rmodel.ResolutionError

	for _, candidate := range candidates {
		selection := rmodel.Selection{
			Package:     candidate.Name,
			Version:     candidate.Version,
			Repo:        candidate.Repo,
			SourceURL:   candidate.SourceURL,
			Deps:        candidate.Deps,
			RMin:        candidate.RMin,
			BiocRelease: candidate.BiocRelease,
		}
		state.assignments[pkg] = selection
		state.constraints[pkg] = aggregated

		if err := s.resolveDependencies(ctx, selection, request, state); err != nil {
			if resErr, ok := err.(*rmodel.ResolutionError); ok {
				failures = append(failures, resErr)
				delete(state.assignments, pkg)
				s.logBacktrack(pkg, candidate.Version, false)
				continue
			}
			delete(state.assignments, pkg)
			delete(state.visiting, pkg)
			return rmodel.Selection{}, err
		}
		delete(state.visiting, pkg)
		s.logBacktrack(pkg, candidate.Version, true)
		return selection, nil
	}

	delete(state.visiting, pkg)
	if len(previousConstraints) > 0 {
		state.constraints[pkg] = previousConstraints
	} else {
		delete(state.constraints, pkg)
	}

	candidateLabels := make([]string, len(candidates))
	for i, c := range candidates {
		candidateLabels[i] = string(c.Repo) + " " + c.Version
	}
	message := distinctSortedMessages(failures)
	if message == "" {
		message = "Unresolvable dependency chain"
	}
	return rmodel.Selection{}, &rmodel.ResolutionError{
		Package:    pkg,
		RequiredBy: request.RequiredBy,
		Message:    message,
		Candidates: candidateLabels,
	}
}

// logBacktrack reports one candidate-acceptance decision through whatever
// Loggers the metadata provider was given; a provider with none attached
// (e.g. in tests) logs nothing.
func (s *solver) logBacktrack(pkg, candidate string, accepted bool) {
	if l := s.metadata.Loggers(); l != nil {
		l.BacktrackEvent(pkg, candidate, accepted)
	}
}

func distinctSortedMessages(failures []*rmodel.ResolutionError) string {
	seen := make(map[string]bool)
	var messages []string
	for _, f := range failures {
		if !seen[f.Message] {
			seen[f.Message] = true
			messages = append(messages, f.Message)
		}
	}
	sort.Strings(messages)
	return strings.Join(messages, ", ")
}

// resolveDependencies walks selection's dependency list, skipping optional
// ones unless includeOptional is set, and recurses into resolvePackage for
// each one.
func (s *solver) resolveDependencies(ctx context.Context, selection rmodel.Selection, request packageRequest, state *resolutionState) error {
	for _, dependency := range selection.Deps {
		if dependency.Optional && !state.includeOptional {
			continue
		}
		childRequest := packageRequest{
			Package:     dependency.Name,
			Source:      s.inferSource(selection),
			Constraints: dependency.Constraints,
			RequiredBy:  appendRequiredBy(request.RequiredBy, selection.Package),
			BiocRelease: s.inferBiocRelease(selection, request.BiocRelease),
		}
		if _, err := s.resolvePackage(ctx, childRequest, state); err != nil {
			return err
		}
	}
	return nil
}

// inferSource routes a dependency to its parent's source only for
// Bioconductor parents; CRAN and GitHub parents leave the source empty so
// candidateVersions falls back to the default cran/bioc search order.
func (s *solver) inferSource(parent rmodel.Selection) string {
	if strings.ToLower(string(parent.Repo)) == "bioconductor" {
		return "bioc"
	}
	return ""
}

func (s *solver) inferBiocRelease(parent rmodel.Selection, parentRelease string) string {
	if strings.ToLower(string(parent.Repo)) != "bioconductor" {
		return ""
	}
	if parent.BiocRelease != "" {
		return parent.BiocRelease
	}
	if parentRelease != "" {
		return parentRelease
	}
	return s.preferBiocRelease
}
