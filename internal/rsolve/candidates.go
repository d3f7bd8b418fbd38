package rsolve

import (
	"context"
	"sort"
	"strings"

	"github.com/rverflow/rverflow/internal/rmodel"
	"github.com/rverflow/rverflow/internal/rversion"
)

// candidateVersions returns every version of request.Package that satisfies
// the aggregated constraints and the candidate R version, across the
// request's preferred source and its fallbacks, highest version first and
// grouped by source priority.
func (s *solver) candidateVersions(ctx context.Context, request packageRequest, state *resolutionState, constraints []rversion.Constraint) ([]rmodel.PackageVersion, error) {
	sourceOrder := sourceOrderFor(request.Source)

	type key struct{ repo, version string }
	seen := make(map[key]bool)
	var results []rmodel.PackageVersion

	for _, source := range sourceOrder {
		versions, err := s.loadVersionsForSource(ctx, request, source)
		if err != nil {
			if _, ok := err.(*rmodel.MetadataFetchError); ok {
				continue
			}
			return nil, err
		}
		for _, version := range versions {
			if version.RMin != "" && rversion.Compare(rversion.Parse(state.candidateR), rversion.Parse(version.RMin)) < 0 {
				continue
			}
			if len(constraints) > 0 && !rversion.SatisfiesAll(version.Version, constraints) {
				continue
			}
			k := key{string(version.Repo), version.Version}
			if seen[k] {
				continue
			}
			seen[k] = true
			results = append(results, version)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return rversion.Less(rversion.Parse(results[j].Version), rversion.Parse(results[i].Version))
	})
	sort.SliceStable(results, func(i, j int) bool {
		return sourcePriority(results[i], sourceOrder) < sourcePriority(results[j], sourceOrder)
	})
	return results, nil
}

// sourceOrderFor builds the source fallback order: the requested source
// first (if any), then cran, then bioc, each appearing once.
func sourceOrderFor(requested string) []string {
	var order []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		order = append(order, s)
	}
	add(strings.ToLower(requested))
	add("cran")
	add("bioc")
	return order
}

// sourcePriority ranks a candidate by the index of the first entry in
// sourceOrder whose first four bytes prefix the candidate's lowercased repo
// name, so "bioconductor" and "bioc" alias by truncated comparison.
func sourcePriority(version rmodel.PackageVersion, sourceOrder []string) int {
	repo := strings.ToLower(string(version.Repo))
	for idx, src := range sourceOrder {
		prefix := src
		if len(prefix) > 4 {
			prefix = prefix[:4]
		}
		if strings.HasPrefix(repo, prefix) {
			return idx
		}
	}
	return len(sourceOrder)
}

func (s *solver) loadVersionsForSource(ctx context.Context, request packageRequest, source string) ([]rmodel.PackageVersion, error) {
	switch strings.ToLower(source) {
	case "cran":
		return s.metadata.GetVersions(ctx, request.Package, "cran", "", "", "")
	case "bioc", "bioconductor":
		release := request.BiocRelease
		if release == "" {
			release = s.preferBiocRelease
		}
		if release == "" {
			release = s.metadata.LatestBioconductorRelease()
		}
		if release == "" {
			return nil, rmodel.NewMetadataFetchError("no Bioconductor release available")
		}
		return s.metadata.GetVersions(ctx, request.Package, "bioc", release, "", "")
	case "github":
		slug := request.GithubSlug
		if slug == "" {
			slug = request.Package
		}
		return s.metadata.GetVersions(ctx, slug, "github", "", request.GithubRef, request.GithubToken)
	default:
		return nil, rmodel.NewMetadataFetchError("unsupported source %s", source)
	}
}
