package rfetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

// roundTripFunc lets a test stub http.Client.Do without touching the
// network, regardless of what URL the client under test requests.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestCRANPackageParsesVersionsDocument(t *testing.T) {
	client := NewClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.String(), "crandb.r-pkg.org/dplyr/all") {
			t.Fatalf("unexpected URL: %s", req.URL)
		}
		return jsonResponse(200, `{"versions": {"1.1.4": {"Depends": "R (>= 4.0.0)"}}}`), nil
	})})

	doc, err := client.CRANPackage(context.Background(), "dplyr")
	if err != nil {
		t.Fatalf("CRANPackage: %v", err)
	}
	if _, ok := doc["versions"]; !ok {
		t.Errorf("doc missing versions key: %+v", doc)
	}
}

func TestCRANPackageHTTPErrorBecomesMetadataFetchError(t *testing.T) {
	client := NewClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(404, `not found`), nil
	})})

	_, err := client.CRANPackage(context.Background(), "doesnotexist")
	if err == nil {
		t.Fatalf("expected an error for a 404 response")
	}
}

func TestBioconductorReleaseMergesCategories(t *testing.T) {
	client := NewClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		url := req.URL.String()
		switch {
		case strings.Contains(url, "/bioc/"):
			return jsonResponse(200, `{"limma": {"Version": "3.58.0"}}`), nil
		case strings.Contains(url, "/data/annotation/"):
			return jsonResponse(200, `{"org.Hs.eg.db": {"Version": "3.18.0"}}`), nil
		default:
			return jsonResponse(404, ""), nil
		}
	})})

	merged, err := client.BioconductorRelease(context.Background(), "3.18")
	if err != nil {
		t.Fatalf("BioconductorRelease: %v", err)
	}
	if _, ok := merged["limma"]; !ok {
		t.Errorf("expected limma from the bioc category, got %+v", merged)
	}
	if _, ok := merged["org.Hs.eg.db"]; !ok {
		t.Errorf("expected org.Hs.eg.db from the data/annotation category, got %+v", merged)
	}
	if merged["limma"][".category"] != "bioc" {
		t.Errorf("limma category = %v, want bioc", merged["limma"][".category"])
	}
}

func TestBioconductorReleaseAllCategoriesMissingIsError(t *testing.T) {
	client := NewClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(404, ""), nil
	})})

	if _, err := client.BioconductorRelease(context.Background(), "0.1"); err == nil {
		t.Fatalf("expected an error when every category 404s")
	}
}

func TestGitHubDescriptionResolvesDefaultBranch(t *testing.T) {
	client := NewClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		url := req.URL.String()
		switch {
		case strings.HasSuffix(url, "/repos/tidyverse/dplyr"):
			return jsonResponse(200, `{"default_branch": "main"}`), nil
		case strings.Contains(url, "/commits/main"):
			return jsonResponse(200, `{"sha": "deadbeef", "html_url": "https://github.com/tidyverse/dplyr/commit/deadbeef", "commit": {"committer": {"date": "2024-01-01T00:00:00Z"}}}`), nil
		case strings.Contains(url, "raw.githubusercontent.com"):
			return jsonResponse(200, "Package: dplyr\nVersion: 1.1.4\n"), nil
		default:
			t.Fatalf("unexpected URL: %s", url)
			return nil, nil
		}
	})})

	desc, err := client.GitHubDescription(context.Background(), "tidyverse", "dplyr", "", "")
	if err != nil {
		t.Fatalf("GitHubDescription: %v", err)
	}
	if desc.Commit != "deadbeef" || desc.Ref != "main" {
		t.Errorf("desc = %+v, want commit deadbeef on ref main", desc)
	}
	if !strings.Contains(desc.Description, "Package: dplyr") {
		t.Errorf("Description = %q, want raw DESCRIPTION text", desc.Description)
	}
}
