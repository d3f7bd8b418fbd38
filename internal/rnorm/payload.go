package rnorm

import (
	"fmt"

	"github.com/rverflow/rverflow/internal/rfetch"
	"github.com/rverflow/rverflow/internal/rmodel"
)

func sectionsFromPayload(payload map[string]interface{}) dependencySections {
	return dependencySections{
		Depends:   payload["Depends"],
		Imports:   payload["Imports"],
		LinkingTo: payload["LinkingTo"],
		Suggests:  payload["Suggests"],
	}
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key]; ok {
		return stringify(v)
	}
	return ""
}

// CRANPackageVersion normalizes one (version, payload) pair from a CRAN
// "all versions" document into a PackageVersion.
func CRANPackageVersion(pkg, version string, payload map[string]interface{}, includeOptional bool) rmodel.PackageVersion {
	deps, rMin := BuildDependencies(sectionsFromPayload(payload), includeOptional)
	metadata := map[string]string{}
	for _, key := range []string{"MD5sum", "NeedsCompilation", "Repository"} {
		if v := stringField(payload, key); v != "" {
			metadata[key] = v
		}
	}
	return rmodel.PackageVersion{
		Name:      pkg,
		Version:   version,
		Repo:      rmodel.RepoCRAN,
		RMin:      rMin,
		Deps:      deps,
		SourceURL: fmt.Sprintf("https://cran.r-project.org/package=%s", pkg),
		Published: stringField(payload, "Date/Publication"),
		Metadata:  metadata,
	}
}

// BioconductorPackageVersion normalizes a single package's payload within a
// release's merged category index.
func BioconductorPackageVersion(pkg, release string, payload map[string]interface{}, includeOptional bool) rmodel.PackageVersion {
	deps, rMin := BuildDependencies(sectionsFromPayload(payload), includeOptional)

	sourceURL := stringField(payload, "git_url")
	if sourceURL == "" {
		sourceURL = fmt.Sprintf("https://bioconductor.org/packages/%s/bioc/html/%s.html", release, pkg)
	}
	published := stringField(payload, "Date/Publication")
	if published == "" {
		published = stringField(payload, "git_last_commit_date")
	}
	category := stringField(payload, ".category")
	if category == "" {
		category = "bioc"
	}
	metadata := map[string]string{
		"category":   category,
		"git_branch": stringField(payload, "git_branch"),
	}
	return rmodel.PackageVersion{
		Name:        pkg,
		Version:     stringField(payload, "Version"),
		Repo:        rmodel.RepoBioconductor,
		RMin:        rMin,
		Deps:        deps,
		BiocRelease: release,
		SourceURL:   sourceURL,
		Published:   published,
		Metadata:    metadata,
	}
}

// GitHubPackageVersion normalizes a fetched DESCRIPTION file into a
// PackageVersion. The Package field is required; Version defaults to
// "0.0.0" when absent.
func GitHubPackageVersion(desc *rfetch.GitHubDescription, includeOptional bool) (rmodel.PackageVersion, error) {
	fields := ParseDescription(desc.Description)
	pkg, ok := fields["Package"]
	if !ok || pkg == "" {
		return rmodel.PackageVersion{}, rmodel.NewMetadataFetchError("GitHub DESCRIPTION missing Package field")
	}
	version := fields["Version"]
	if version == "" {
		version = "0.0.0"
	}

	sections := dependencySections{
		Depends:   fields["Depends"],
		Imports:   fields["Imports"],
		LinkingTo: fields["LinkingTo"],
		Suggests:  fields["Suggests"],
	}
	deps, rMin := BuildDependencies(sections, includeOptional)

	metadata := map[string]string{
		"commit": desc.Commit,
		"repo":   fmt.Sprintf("%s/%s", desc.Owner, desc.Repo),
		"ref":    desc.Ref,
	}
	return rmodel.PackageVersion{
		Name:      pkg,
		Version:   version,
		Repo:      rmodel.RepoGitHub,
		RMin:      rMin,
		Deps:      deps,
		SourceURL: desc.URL,
		Published: desc.CommitTimestamp,
		Metadata:  metadata,
	}, nil
}
