// Package rmeta owns the metadata provider: the cache, the HTTP fetch
// client, and the in-memory memoization of CRAN packages and Bioconductor
// releases, each loaded at most once per process once a load succeeds.
// GitHub lookups are not deduplicated: every GetGitHubVersion call goes to
// the network, and the per-commit record it keeps is never read back.
package rmeta

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rverflow/rverflow/internal/rcache"
	"github.com/rverflow/rverflow/internal/rfetch"
	"github.com/rverflow/rverflow/internal/rlog"
	"github.com/rverflow/rverflow/internal/rmodel"
	"github.com/rverflow/rverflow/internal/rnorm"
	"github.com/rverflow/rverflow/internal/rversion"
)

// Provider serves normalized PackageVersion records, backed by an on-disk
// cache and an HTTP fetch client, deduplicating fetches in-process. The
// solver only ever drives a Provider from a single goroutine; the mutex
// below exists solely to make PrimeAll's concurrent warm-up safe.
type Provider struct {
	cache  *rcache.Cache
	client *rfetch.Client

	includeOptional bool
	loggers         *rlog.Loggers

	mu     sync.Mutex
	cran   map[string][]rmodel.PackageVersion
	bioc   map[string]map[string]rmodel.PackageVersion
	github map[githubKey]rmodel.PackageVersion
}

// SetLoggers attaches the CLI's Loggers so cache hits/misses are reported
// as structured events when verbose logging is enabled. A Provider with no
// Loggers attached (e.g. in tests) logs nothing.
func (p *Provider) SetLoggers(l *rlog.Loggers) {
	p.loggers = l
}

// Loggers returns the attached Loggers, or nil if none was set.
func (p *Provider) Loggers() *rlog.Loggers {
	return p.loggers
}

func (p *Provider) logCache(hit bool, source, key string) {
	if p.loggers != nil {
		p.loggers.CacheEvent(hit, source, key)
	}
}

type githubKey struct {
	owner, repo, commit string
}

// New constructs a Provider rooted at cacheDir, using client as the shared
// fetch client (nil selects a default one with the standard 30s timeout).
func New(cacheDir string, client *rfetch.Client, includeOptional bool) (*Provider, error) {
	c := rcache.New(cacheDir)
	if err := c.Ensure(); err != nil {
		return nil, err
	}
	if client == nil {
		client = rfetch.NewClient(nil)
	}
	return &Provider{
		cache:           c,
		client:          client,
		includeOptional: includeOptional,
		cran:            make(map[string][]rmodel.PackageVersion),
		bioc:            make(map[string]map[string]rmodel.PackageVersion),
		github:          make(map[githubKey]rmodel.PackageVersion),
	}, nil
}

// GetCRANVersions returns every known version of pkg on CRAN, sorted
// version-descending. Fetch failures are not memoized; a subsequent call
// may retry.
func (p *Provider) GetCRANVersions(ctx context.Context, pkg string) ([]rmodel.PackageVersion, error) {
	p.mu.Lock()
	if v, ok := p.cran[pkg]; ok {
		p.mu.Unlock()
		return v, nil
	}
	p.mu.Unlock()
	cacheKey := pkg + ".json"
	var raw map[string]interface{}
	hit, err := p.cache.Load(&raw, "cran", cacheKey)
	if err != nil {
		return nil, err
	}
	p.logCache(hit, "cran", cacheKey)
	if !hit {
		raw, err = p.client.CRANPackage(ctx, pkg)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Store(raw, "cran", cacheKey); err != nil {
			return nil, err
		}
	}

	versionsField, _ := raw["versions"].(map[string]interface{})
	versions := make([]rmodel.PackageVersion, 0, len(versionsField))
	for version, payload := range versionsField {
		entry, ok := payload.(map[string]interface{})
		if !ok {
			continue
		}
		versions = append(versions, rnorm.CRANPackageVersion(pkg, version, entry, p.includeOptional))
	}
	sort.Slice(versions, func(i, j int) bool {
		return rversion.Less(rversion.Parse(versions[j].Version), rversion.Parse(versions[i].Version))
	})
	p.mu.Lock()
	p.cran[pkg] = versions
	p.mu.Unlock()
	return versions, nil
}

func (p *Provider) loadBiocRelease(ctx context.Context, release string) (map[string]rmodel.PackageVersion, error) {
	p.mu.Lock()
	if v, ok := p.bioc[release]; ok {
		p.mu.Unlock()
		return v, nil
	}
	p.mu.Unlock()
	cacheKey := release + ".json"
	var raw map[string]map[string]interface{}
	hit, err := p.cache.Load(&raw, "bioconductor", cacheKey)
	if err != nil {
		return nil, err
	}
	p.logCache(hit, "bioconductor", cacheKey)
	if !hit {
		fetched, err := p.client.BioconductorRelease(ctx, release)
		if err != nil {
			return nil, err
		}
		raw = fetched
		if err := p.cache.Store(raw, "bioconductor", cacheKey); err != nil {
			return nil, err
		}
	}

	normalized := make(map[string]rmodel.PackageVersion, len(raw))
	for name, payload := range raw {
		normalized[name] = rnorm.BioconductorPackageVersion(name, release, payload, p.includeOptional)
	}
	p.mu.Lock()
	p.bioc[release] = normalized
	p.mu.Unlock()
	return normalized, nil
}

// GetBioconductorVersions returns the single version of pkg present in
// release, or a MetadataFetchError if it is not in that release's index.
func (p *Provider) GetBioconductorVersions(ctx context.Context, pkg, release string) ([]rmodel.PackageVersion, error) {
	data, err := p.loadBiocRelease(ctx, release)
	if err != nil {
		return nil, err
	}
	version, ok := data[pkg]
	if !ok {
		return nil, rmodel.NewMetadataFetchError("%s not found in Bioconductor release %s", pkg, release)
	}
	return []rmodel.PackageVersion{version}, nil
}

// GetGitHubVersion resolves owner/repo@ref (or the default branch, if ref
// is empty) and normalizes its DESCRIPTION file.
func (p *Provider) GetGitHubVersion(ctx context.Context, owner, repo, ref, token string) (rmodel.PackageVersion, error) {
	desc, err := p.client.GitHubDescription(ctx, owner, repo, ref, token)
	if err != nil {
		return rmodel.PackageVersion{}, err
	}
	version, err := rnorm.GitHubPackageVersion(desc, p.includeOptional)
	if err != nil {
		return rmodel.PackageVersion{}, err
	}

	key := githubKey{owner, repo, desc.Commit}
	p.mu.Lock()
	p.github[key] = version
	p.mu.Unlock()

	cacheKey := fmt.Sprintf("%s__%s__%s.json", owner, repo, desc.Commit)
	payload := map[string]interface{}{
		"owner":     owner,
		"repo":      repo,
		"commit":    desc.Commit,
		"ref":       desc.Ref,
		"timestamp": desc.CommitTimestamp,
		"url":       desc.URL,
	}
	if err := p.cache.Store(payload, "github", cacheKey); err != nil {
		return rmodel.PackageVersion{}, err
	}
	return version, nil
}

// GetVersions dispatches to the source-specific getter named by source
// ("cran", "bioc"/"bioconductor", or "github").
func (p *Provider) GetVersions(ctx context.Context, pkg, source, biocRelease, githubRef, githubToken string) ([]rmodel.PackageVersion, error) {
	switch strings.ToLower(source) {
	case "cran":
		return p.GetCRANVersions(ctx, pkg)
	case "bioc", "bioconductor":
		if biocRelease == "" {
			return nil, rmodel.NewMetadataFetchError("Bioconductor release must be specified for Bioconductor packages")
		}
		return p.GetBioconductorVersions(ctx, pkg, biocRelease)
	case "github":
		owner, repo, ok := strings.Cut(pkg, "/")
		if !ok {
			return nil, rmodel.NewMetadataFetchError("GitHub packages must be provided as owner/repo")
		}
		version, err := p.GetGitHubVersion(ctx, owner, repo, githubRef, githubToken)
		if err != nil {
			return nil, err
		}
		return []rmodel.PackageVersion{version}, nil
	default:
		return nil, rmodel.NewMetadataFetchError("unsupported source: %s", source)
	}
}

// PrimeBioconductorRelease warms the in-memory and on-disk cache for a
// release without returning anything to the caller.
func (p *Provider) PrimeBioconductorRelease(ctx context.Context, release string) error {
	_, err := p.loadBiocRelease(ctx, release)
	return err
}

// BioconductorRVersion looks up the R series a Bioconductor release
// requires from the fixed static table.
func (p *Provider) BioconductorRVersion(release string) (string, bool) {
	v, ok := rmodel.BioconductorRMatrix[release]
	return v, ok
}

// LatestBioconductorRelease returns the maximum release key in the fixed
// table by lexicographic version sort, or "" if the table is empty.
func (p *Provider) LatestBioconductorRelease() string {
	if len(rmodel.BioconductorRMatrix) == 0 {
		return ""
	}
	releases := make([]string, 0, len(rmodel.BioconductorRMatrix))
	for r := range rmodel.BioconductorRMatrix {
		releases = append(releases, r)
	}
	sort.Strings(releases)
	return releases[len(releases)-1]
}
