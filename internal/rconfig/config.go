// Package rconfig loads the YAML project configuration file, the boundary
// between user-declared targets and the resolver.
package rconfig

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/rverflow/rverflow/internal/rmodel"
)

// ResolverOptions carries the project-wide overrides under the `options`
// key.
type ResolverOptions struct {
	CurrentR          string
	PreferBiocRelease string
	IncludeOptional   bool
	GithubToken       string
}

// TargetSpec is one entry under the `targets` key.
type TargetSpec struct {
	Package     string
	Source      string
	Constraint  string
	Alias       string
	BiocRelease string
	GithubRef   string
	GithubToken string
}

// ProjectConfig is the fully validated, defaulted configuration for one
// resolver run.
type ProjectConfig struct {
	Name    string
	Targets []TargetSpec
	Options ResolverOptions
}

// rawDoc mirrors the on-disk YAML shape before defaulting/validation.
type rawDoc struct {
	Project interface{}            `yaml:"project"`
	Options rawOptions              `yaml:"options"`
	Targets []map[string]interface{} `yaml:"targets"`
}

type rawOptions struct {
	CurrentR          string `yaml:"current_r"`
	PreferBiocRelease string `yaml:"prefer_bioc_release"`
	IncludeOptional   bool   `yaml:"include_optional"`
	GithubToken       string `yaml:"github_token"`
}

// Load reads and validates the project configuration at path.
func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	var doc rawDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}

	projectName := projectNameFrom(doc.Project)
	if projectName == "" {
		projectName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	options := ResolverOptions{
		CurrentR:          doc.Options.CurrentR,
		PreferBiocRelease: doc.Options.PreferBiocRelease,
		IncludeOptional:   doc.Options.IncludeOptional,
		GithubToken:       doc.Options.GithubToken,
	}

	if len(doc.Targets) == 0 {
		return nil, rmodel.NewConfigError("configuration must include a non-empty 'targets' list")
	}

	targets := make([]TargetSpec, 0, len(doc.Targets))
	for _, entry := range doc.Targets {
		target, err := normalizeTarget(entry, options)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	return &ProjectConfig{Name: projectName, Targets: targets, Options: options}, nil
}

func projectNameFrom(project interface{}) string {
	switch v := project.(type) {
	case string:
		return v
	case map[interface{}]interface{}:
		if name, ok := v["name"].(string); ok {
			return name
		}
	case map[string]interface{}:
		if name, ok := v["name"].(string); ok {
			return name
		}
	}
	return ""
}

func normalizeTarget(entry map[string]interface{}, options ResolverOptions) (TargetSpec, error) {
	pkg := stringOr(entry["package"], stringOr(entry["name"], ""))
	if pkg == "" {
		return TargetSpec{}, rmodel.NewConfigError("target entry missing 'package'")
	}
	source := strings.ToLower(stringOr(entry["source"], "cran"))
	constraint := stringOr(entry["constraint"], stringOr(entry["version"], ""))
	alias := stringOr(entry["alias"], stringOr(entry["id"], ""))
	biocRelease := stringOr(entry["bioc_release"], "")
	githubRef := stringOr(entry["ref"], stringOr(entry["github_ref"], ""))
	githubToken := stringOr(entry["github_token"], options.GithubToken)

	if source == "github" && !strings.Contains(pkg, "/") {
		return TargetSpec{}, rmodel.NewConfigError("GitHub target %q must use owner/repo format", pkg)
	}

	return TargetSpec{
		Package:     pkg,
		Source:      source,
		Constraint:  constraint,
		Alias:       alias,
		BiocRelease: biocRelease,
		GithubRef:   githubRef,
		GithubToken: githubToken,
	}, nil
}

func stringOr(v interface{}, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
