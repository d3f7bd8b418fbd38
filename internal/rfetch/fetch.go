// Package rfetch performs the raw HTTP retrieval against CRAN,
// Bioconductor, and GitHub. Fetchers return parsed JSON (as
// map[string]interface{}) or raw text; they never see or produce a
// PackageVersion — that normalization happens in package rnorm.
package rfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rverflow/rverflow/internal/rmodel"
)

// DefaultTimeout is the per-request HTTP timeout of the default client.
// Requests are also abandoned when the caller's context is cancelled.
const DefaultTimeout = 30 * time.Second

const userAgent = "rverflow/0.1"

// Client wraps a caller-owned *http.Client so fetchers share one
// connection pool across a resolver run.
type Client struct {
	HTTP *http.Client
}

// NewClient returns a Client with DefaultTimeout applied if hc is nil.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{HTTP: hc}
}

func (c *Client) getJSON(ctx context.Context, url string, headers map[string]string) (map[string]interface{}, error) {
	body, status, err := c.get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &rmodel.MetadataFetchError{URL: url, Status: status}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &rmodel.MetadataFetchError{URL: url, Message: fmt.Sprintf("invalid JSON: %s", err)}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, &rmodel.MetadataFetchError{URL: url, Message: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, &rmodel.MetadataFetchError{URL: url, Message: err.Error()}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &rmodel.MetadataFetchError{URL: url, Message: err.Error()}
	}
	return body, resp.StatusCode, nil
}

// CRANPackage fetches the `all versions` document for a CRAN package.
func (c *Client) CRANPackage(ctx context.Context, pkg string) (map[string]interface{}, error) {
	url := fmt.Sprintf("https://crandb.r-pkg.org/%s/all", pkg)
	return c.getJSON(ctx, url, nil)
}

var biocCategories = []string{"bioc", "data/annotation", "data/experiment", "workflows"}

// BioconductorRelease fetches and merges every category's package index for
// a single Bioconductor release. A category that 404s (older releases lack
// some categories) is skipped; an aggregate of zero packages is an error.
func (c *Client) BioconductorRelease(ctx context.Context, release string) (map[string]map[string]interface{}, error) {
	aggregated := make(map[string]map[string]interface{})
	for _, category := range biocCategories {
		url := fmt.Sprintf("https://bioconductor.org/packages/json/%s/%s/packages.json", release, category)
		data, err := c.getJSON(ctx, url, nil)
		if err != nil {
			continue
		}
		for name, payload := range data {
			entry, ok := payload.(map[string]interface{})
			if !ok {
				continue
			}
			entry[".category"] = category
			aggregated[name] = entry
		}
	}
	if len(aggregated) == 0 {
		return nil, &rmodel.MetadataFetchError{Message: fmt.Sprintf("no packages found for Bioconductor release %s", release)}
	}
	return aggregated, nil
}

// GitHubDescription is the raw material needed to normalize a GitHub-origin
// package: the ref that was resolved, the commit SHA, its timestamp, the
// commit's HTML URL, and the DESCRIPTION file text at that SHA.
type GitHubDescription struct {
	Owner           string
	Repo            string
	Commit          string
	Ref             string
	Description     string
	CommitTimestamp string
	URL             string
}

// GitHubDescription resolves ref (or the repo's default branch, if ref is
// empty) to a commit SHA and fetches the DESCRIPTION file at that SHA.
func (c *Client) GitHubDescription(ctx context.Context, owner, repo, ref, token string) (*GitHubDescription, error) {
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	if ref == "" {
		repoURL := fmt.Sprintf("https://api.github.com/repos/%s/%s", owner, repo)
		data, err := c.getJSON(ctx, repoURL, headers)
		if err != nil {
			return nil, &rmodel.MetadataFetchError{Message: fmt.Sprintf("resolving default branch for %s/%s: %s", owner, repo, err)}
		}
		branch, _ := data["default_branch"].(string)
		if branch == "" {
			return nil, &rmodel.MetadataFetchError{Message: fmt.Sprintf("repository %s/%s has no default branch metadata", owner, repo)}
		}
		ref = branch
	}

	commitURL := fmt.Sprintf("https://api.github.com/repos/%s/%s/commits/%s", owner, repo, ref)
	commitData, err := c.getJSON(ctx, commitURL, headers)
	if err != nil {
		return nil, &rmodel.MetadataFetchError{Message: fmt.Sprintf("resolving commit for %s/%s@%s: %s", owner, repo, ref, err)}
	}
	sha, _ := commitData["sha"].(string)
	if sha == "" {
		return nil, &rmodel.MetadataFetchError{Message: fmt.Sprintf("commit information missing for %s/%s@%s", owner, repo, ref)}
	}

	rawHeaders := map[string]string{"Accept": "application/vnd.github.v3.raw"}
	for k, v := range headers {
		rawHeaders[k] = v
	}
	rawURL := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/DESCRIPTION", owner, repo, sha)
	body, status, err := c.get(ctx, rawURL, rawHeaders)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, &rmodel.MetadataFetchError{URL: rawURL, Status: status}
	}

	var timestamp, htmlURL string
	if commitField, ok := commitData["commit"].(map[string]interface{}); ok {
		if committer, ok := commitField["committer"].(map[string]interface{}); ok {
			timestamp, _ = committer["date"].(string)
		}
	}
	htmlURL, _ = commitData["html_url"].(string)

	return &GitHubDescription{
		Owner:           owner,
		Repo:            repo,
		Commit:          sha,
		Ref:             ref,
		Description:     string(body),
		CommitTimestamp: timestamp,
		URL:             htmlURL,
	}, nil
}
