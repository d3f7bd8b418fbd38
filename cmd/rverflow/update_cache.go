package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rverflow/rverflow/internal/rconfig"
	"github.com/rverflow/rverflow/internal/rlog"
	"github.com/rverflow/rverflow/internal/rmeta"
	"github.com/rverflow/rverflow/internal/rmodel"
	"github.com/rverflow/rverflow/internal/rsolve"
)

const updateCacheShortHelp = `Prime the metadata cache for selected sources`
const updateCacheLongHelp = `
Update-cache fetches and stores metadata for the given CRAN packages and
Bioconductor releases, and for every target declared in a project
configuration file, without running a resolution.
`

// stringList accumulates repeated occurrences of a flag, the flag package's
// usual stand-in for argparse's action="append".
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type updateCacheCommand struct {
	cacheRoot    string
	packages     stringList
	biocReleases stringList
	configPath   string
}

func (cmd *updateCacheCommand) Name() string      { return "update-cache" }
func (cmd *updateCacheCommand) Args() string      { return "[-package pkg]... [-bioc-release rel]... [-config file]" }
func (cmd *updateCacheCommand) ShortHelp() string { return updateCacheShortHelp }
func (cmd *updateCacheCommand) LongHelp() string  { return updateCacheLongHelp }

func (cmd *updateCacheCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.cacheRoot, "cache-root", "cache", "Directory where metadata cache files are stored")
	fs.Var(&cmd.packages, "package", "CRAN package to fetch metadata for (repeatable)")
	fs.Var(&cmd.biocReleases, "bioc-release", "Bioconductor release to cache (repeatable)")
	fs.StringVar(&cmd.configPath, "config", "", "Project configuration file to scan for dependencies")
}

func (cmd *updateCacheCommand) Run(ctx context.Context, loggers *rlog.Loggers, args []string) error {
	metadata, err := rmeta.New(cmd.cacheRoot, nil, false)
	if err != nil {
		return err
	}
	metadata.SetLoggers(loggers)

	var processed []string

	if len(cmd.packages) > 0 {
		if err := metadata.PrimeAll(ctx, cmd.packages); err != nil {
			return err
		}
		for _, pkg := range cmd.packages {
			processed = append(processed, "CRAN:"+pkg)
		}
	}

	for _, release := range cmd.biocReleases {
		if err := metadata.PrimeBioconductorRelease(ctx, release); err != nil {
			return err
		}
		processed = append(processed, "Bioconductor release "+release)
	}

	if cmd.configPath != "" {
		cfg, err := rconfig.Load(cmd.configPath)
		if err != nil {
			return err
		}
		contexts, err := rsolve.BuildTargetContexts(ctx, cfg, metadata)
		if err != nil {
			return err
		}
		for _, context := range contexts {
			if err := primeTarget(ctx, metadata, context); err != nil {
				return err
			}
		}
		processed = append(processed, "config:"+filepath.Base(cmd.configPath))
	}

	if len(processed) == 0 {
		fmt.Fprintln(loggers.Out.Writer(), "No cache entries updated.")
		return nil
	}
	fmt.Fprintln(loggers.Out.Writer(), "Primed cache entries:")
	for _, item := range processed {
		fmt.Fprintf(loggers.Out.Writer(), "  - %s\n", item)
	}
	return nil
}

// primeTarget warms the cache for one already-resolved target. For
// Bioconductor and GitHub targets it swallows MetadataFetchError, so targets
// that turn out not to exist yet in the chosen release or ref are skipped;
// a CRAN target's fetch error is returned and stops the config scan.
func primeTarget(ctx context.Context, metadata *rmeta.Provider, target rsolve.TargetContext) error {
	switch target.Source {
	case "cran":
		_, err := metadata.GetCRANVersions(ctx, target.Package)
		return err
	case "bioc", "bioconductor":
		release := target.BiocRelease
		if release == "" {
			release = metadata.LatestBioconductorRelease()
		}
		if release == "" {
			return nil
		}
		if _, err := metadata.GetBioconductorVersions(ctx, target.Package, release); err != nil {
			if _, ok := err.(*rmodel.MetadataFetchError); ok {
				return nil
			}
			return err
		}
	case "github":
		slug := target.GithubSlug
		if slug == "" {
			slug = target.Package
		}
		owner, repo, ok := strings.Cut(slug, "/")
		if !ok {
			return nil
		}
		if _, err := metadata.GetGitHubVersion(ctx, owner, repo, target.GithubRef, target.GithubToken); err != nil {
			if _, ok := err.(*rmodel.MetadataFetchError); ok {
				return nil
			}
			return err
		}
	}
	return nil
}
