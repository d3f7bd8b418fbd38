package rsolve

import (
	"context"
	"sort"

	"github.com/rverflow/rverflow/internal/rmeta"
	"github.com/rverflow/rverflow/internal/rmodel"
	"github.com/rverflow/rverflow/internal/rversion"
)

// biocReleaseRequirements collects, for every Bioconductor target, the
// release it will resolve against and the minimum R series that release
// requires, defaulting unset releases to defaultRelease. Targets are
// mutated in place so later calls see the resolved release.
func biocReleaseRequirements(targets []TargetContext, metadata *rmeta.Provider, defaultRelease string) map[string]string {
	requirements := make(map[string]string)
	for i := range targets {
		source := targets[i].Source
		if source != "bioc" && source != "bioconductor" {
			continue
		}
		release := targets[i].BiocRelease
		if release == "" {
			release = defaultRelease
		}
		if release == "" {
			release = metadata.LatestBioconductorRelease()
		}
		if release == "" {
			continue
		}
		if requiredR, ok := metadata.BioconductorRVersion(release); ok && requiredR != "" {
			requirements[release] = requiredR
			targets[i].BiocRelease = release
		}
	}
	return requirements
}

// computeResolution finds the first R version (from lockedR if set,
// otherwise walking SupportedRVersions ascending plus any Bioconductor-
// mandated versions) under which every target resolves, returning the
// resulting Plan and the Conflicts hit along the way.
func computeResolution(ctx context.Context, metadata *rmeta.Provider, targets []TargetContext, includeOptional bool, preferBiocRelease string, lockedR string) (*rmodel.Plan, []rmodel.Conflict) {
	cloned := make([]TargetContext, len(targets))
	for i, t := range targets {
		cloned[i] = clone(t)
	}

	s := newSolver(metadata, includeOptional, preferBiocRelease)
	defaultRelease := preferBiocRelease
	if defaultRelease == "" {
		defaultRelease = metadata.LatestBioconductorRelease()
	}
	releaseRequirements := biocReleaseRequirements(cloned, metadata, defaultRelease)

	var conflicts []rmodel.Conflict

	if lockedR != "" {
		plan, err := s.solve(ctx, cloned, lockedR)
		if err != nil {
			if resErr, ok := err.(*rmodel.ResolutionError); ok {
				conflicts = append(conflicts, resErr.ToConflict())
			}
			return nil, conflicts
		}
		return plan, conflicts
	}

	candidateSet := make(map[string]bool)
	for _, v := range rmodel.SupportedRVersions {
		candidateSet[v] = true
	}
	for _, requiredR := range releaseRequirements {
		candidateSet[requiredR] = true
	}
	candidates := make([]string, 0, len(candidateSet))
	for v := range candidateSet {
		candidates = append(candidates, v)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return rversion.Less(rversion.Parse(candidates[i]), rversion.Parse(candidates[j]))
	})

	for _, candidate := range candidates {
		incompatible := false
		for _, requiredR := range releaseRequirements {
			if rversion.Compare(rversion.Parse(candidate), rversion.Parse(requiredR)) < 0 {
				incompatible = true
				break
			}
		}
		if incompatible {
			continue
		}
		plan, err := s.solve(ctx, cloned, candidate)
		if err != nil {
			if resErr, ok := err.(*rmodel.ResolutionError); ok {
				conflicts = append(conflicts, resErr.ToConflict())
				continue
			}
			continue
		}
		return plan, conflicts
	}
	return nil, conflicts
}

// BuildReport resolves targets twice: once for the minimal feasible R
// version, and, if lockedR is set, once more pinned to it.
func BuildReport(ctx context.Context, metadata *rmeta.Provider, targets []TargetContext, includeOptional bool, preferBiocRelease string, lockedR string) rmodel.Report {
	if err := validateSupportedRVersions(); err != nil {
		return rmodel.Report{Conflicts: []rmodel.Conflict{{Package: "r", Message: err.Error()}}}
	}
	if err := validateLockedR(lockedR); err != nil {
		return rmodel.Report{Conflicts: []rmodel.Conflict{{Package: "r", Message: err.Error()}}}
	}

	minimalPlan, minimalConflicts := computeResolution(ctx, metadata, targets, includeOptional, preferBiocRelease, "")

	var lockedPlan *rmodel.Plan
	var lockedConflicts []rmodel.Conflict
	if lockedR != "" {
		lockedPlan, lockedConflicts = computeResolution(ctx, metadata, targets, includeOptional, preferBiocRelease, lockedR)
	}

	return rmodel.Report{
		MinimalPlan:     minimalPlan,
		LockedPlan:      lockedPlan,
		Conflicts:       minimalConflicts,
		LockedConflicts: lockedConflicts,
		RVersionLocked:  lockedR,
	}
}
