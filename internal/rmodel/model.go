// Package rmodel holds the canonical, source-agnostic records that flow
// between the fetchers, normalizers, metadata provider, resolver, and
// report builder.
package rmodel

import "github.com/rverflow/rverflow/internal/rversion"

// Repo identifies which upstream repository a PackageVersion came from.
type Repo string

const (
	RepoCRAN         Repo = "CRAN"
	RepoBioconductor Repo = "Bioconductor"
	RepoGitHub       Repo = "GitHub"
)

// DependencyKind distinguishes DESCRIPTION-style dependency sections.
type DependencyKind string

const (
	KindDepends   DependencyKind = "Depends"
	KindImports   DependencyKind = "Imports"
	KindLinkingTo DependencyKind = "LinkingTo"
	KindSuggests  DependencyKind = "Suggests"
)

// Dependency is one edge out of a PackageVersion.
type Dependency struct {
	Name        string
	Constraints []rversion.Constraint
	Kind        DependencyKind
	Optional    bool
}

// PackageVersion is a single normalized version record for a package from a
// single upstream source.
type PackageVersion struct {
	Name        string
	Version     string
	Repo        Repo
	RMin        string // empty when unset
	Deps        []Dependency
	BiocRelease string // empty unless Repo == RepoBioconductor
	SourceURL   string
	Published   string
	Metadata    map[string]string
}

// Selection is a PackageVersion bound to a name by the resolver.
type Selection struct {
	Package     string
	Version     string
	Repo        Repo
	SourceURL   string
	Deps        []Dependency
	RMin        string
	BiocRelease string
}

// Plan is a complete, consistent version assignment for one R version.
type Plan struct {
	RVersion   string
	Selections map[string]Selection
	Notes      []string
}

// Conflict is a frozen diagnostic explaining why a resolution attempt
// failed for a particular package.
type Conflict struct {
	Package      string
	RequiredBy   []string
	Message      string
	Candidates   []string
}

// Report is the top-level output of a solve: a minimal plan, optionally a
// plan under a locked R version, and the conflicts encountered along the
// way to each.
type Report struct {
	MinimalPlan     *Plan
	LockedPlan      *Plan
	Conflicts       []Conflict
	LockedConflicts []Conflict
	RVersionLocked  string // empty when no lock was requested
}
