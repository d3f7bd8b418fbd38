// Package rsolve implements the backtracking search over an R interpreter
// version and a per-package version assignment.
package rsolve

import (
	"context"
	"strings"

	"github.com/rverflow/rverflow/internal/rconfig"
	"github.com/rverflow/rverflow/internal/rmeta"
	"github.com/rverflow/rverflow/internal/rmodel"
	"github.com/rverflow/rverflow/internal/rversion"
)

// TargetContext is one user-declared target, fully resolved against the
// project config: GitHub targets have already been fetched so Package
// reflects the name inside the repository's DESCRIPTION, and Bioconductor
// targets without an explicit release have inherited the preferred or
// latest one.
type TargetContext struct {
	Identifier  string
	Package     string
	Source      string
	Constraints []rversion.Constraint
	BiocRelease string
	GithubRef   string
	GithubToken string
	GithubSlug  string
}

func clone(t TargetContext) TargetContext {
	out := t
	out.Constraints = append([]rversion.Constraint(nil), t.Constraints...)
	return out
}

// BuildTargetContexts turns a project config into resolved TargetContexts.
// GitHub targets are resolved eagerly here; a failure during that eager
// resolution is fatal and propagates as a MetadataFetchError, never as a
// Conflict.
func BuildTargetContexts(ctx context.Context, cfg *rconfig.ProjectConfig, metadata *rmeta.Provider) ([]TargetContext, error) {
	var out []TargetContext
	for _, spec := range cfg.Targets {
		source := strings.ToLower(spec.Source)
		identifier := spec.Alias
		if identifier == "" {
			identifier = spec.Package
		}
		var constraints []rversion.Constraint
		if spec.Constraint != "" {
			constraints = rversion.ParseConstraintList(spec.Constraint)
		}
		biocRelease := spec.BiocRelease
		if biocRelease == "" {
			biocRelease = cfg.Options.PreferBiocRelease
		}
		githubToken := spec.GithubToken
		if githubToken == "" {
			githubToken = cfg.Options.GithubToken
		}
		githubRef := spec.GithubRef

		var githubSlug string
		packageName := spec.Package

		if source == "bioc" || source == "bioconductor" {
			if biocRelease == "" {
				biocRelease = metadata.LatestBioconductorRelease()
			}
		}
		if source == "github" {
			owner, repo, ok := strings.Cut(packageName, "/")
			if !ok {
				return nil, rmodel.NewConfigError("GitHub target must use owner/repo format")
			}
			githubSlug = packageName
			version, err := metadata.GetGitHubVersion(ctx, owner, repo, githubRef, githubToken)
			if err != nil {
				return nil, err
			}
			packageName = version.Name
		}

		out = append(out, TargetContext{
			Identifier:  identifier,
			Package:     packageName,
			Source:      source,
			Constraints: constraints,
			BiocRelease: biocRelease,
			GithubRef:   githubRef,
			GithubToken: githubToken,
			GithubSlug:  githubSlug,
		})
	}
	return out, nil
}
