package rsolve

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rverflow/rverflow/internal/rcache"
	"github.com/rverflow/rverflow/internal/rmeta"
	"github.com/rverflow/rverflow/internal/rmodel"
)

// seedCRAN pre-populates a provider's on-disk cache with a synthetic CRAN
// "all versions" document, so tests exercise the solver without any network
// access.
func seedCRAN(t *testing.T, dir, pkg string, versions map[string]map[string]interface{}) {
	t.Helper()
	c := rcache.New(dir)
	if err := c.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	doc := map[string]interface{}{"versions": toInterfaceMap(versions)}
	if err := c.Store(doc, "cran", pkg+".json"); err != nil {
		t.Fatalf("seeding cache for %s: %v", pkg, err)
	}
}

func toInterfaceMap(versions map[string]map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(versions))
	for k, v := range versions {
		out[k] = v
	}
	return out
}

func newTestProvider(t *testing.T) (*rmeta.Provider, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := rmeta.New(dir, nil, false)
	if err != nil {
		t.Fatalf("rmeta.New: %v", err)
	}
	return p, dir
}

func TestSolveSinglePackageNoDeps(t *testing.T) {
	provider, dir := newTestProvider(t)
	seedCRAN(t, dir, "cli", map[string]map[string]interface{}{
		"3.6.0": {"Depends": "R (>= 3.5.0)"},
	})

	s := newSolver(provider, false, "")
	targets := []TargetContext{{Identifier: "cli", Package: "cli", Source: "cran"}}
	plan, err := s.solve(context.Background(), targets, "4.0.0")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	sel, ok := plan.Selections["cli"]
	if !ok {
		t.Fatalf("expected cli to be selected, plan = %+v", plan)
	}
	want := rmodel.Selection{
		Package:   "cli",
		Version:   "3.6.0",
		Repo:      rmodel.RepoCRAN,
		SourceURL: "https://cran.r-project.org/package=cli",
		RMin:      "3.5.0",
	}
	if diff := cmp.Diff(want, sel); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSolveResolvesTransitiveDependency(t *testing.T) {
	provider, dir := newTestProvider(t)
	seedCRAN(t, dir, "dplyr", map[string]map[string]interface{}{
		"1.1.4": {"Depends": "R (>= 4.0.0)", "Imports": "rlang (>= 1.1.0)"},
	})
	seedCRAN(t, dir, "rlang", map[string]map[string]interface{}{
		"1.0.0": {},
		"1.1.0": {},
		"1.1.2": {},
	})

	s := newSolver(provider, false, "")
	targets := []TargetContext{{Identifier: "dplyr", Package: "dplyr", Source: "cran"}}
	plan, err := s.solve(context.Background(), targets, "4.2.0")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	rlang, ok := plan.Selections["rlang"]
	if !ok {
		t.Fatalf("expected rlang to be pulled in transitively, plan = %+v", plan)
	}
	if rlang.Version != "1.1.2" {
		t.Errorf("rlang version = %q, want highest satisfying 1.1.2", rlang.Version)
	}
}

func TestSolveFailsWhenNoCandidateSatisfiesRMin(t *testing.T) {
	provider, dir := newTestProvider(t)
	seedCRAN(t, dir, "futurepkg", map[string]map[string]interface{}{
		"2.0.0": {"Depends": "R (>= 9.9.0)"},
	})

	s := newSolver(provider, false, "")
	targets := []TargetContext{{Identifier: "futurepkg", Package: "futurepkg", Source: "cran"}}
	_, err := s.solve(context.Background(), targets, "4.2.0")
	if err == nil {
		t.Fatalf("expected resolution to fail when R is too old for every candidate")
	}
}

func TestSolveDetectsDependencyCycle(t *testing.T) {
	provider, dir := newTestProvider(t)
	seedCRAN(t, dir, "a", map[string]map[string]interface{}{
		"1.0.0": {"Imports": "b"},
	})
	seedCRAN(t, dir, "b", map[string]map[string]interface{}{
		"1.0.0": {"Imports": "a"},
	})

	s := newSolver(provider, false, "")
	targets := []TargetContext{{Identifier: "a", Package: "a", Source: "cran"}}
	plan, err := s.solve(context.Background(), targets, "4.2.0")
	if err != nil {
		t.Fatalf("expected a mutually-cyclic pair to resolve via the existing-binding short circuit: %v", err)
	}
	if _, ok := plan.Selections["a"]; !ok {
		t.Errorf("expected a to be selected, plan = %+v", plan)
	}
	if _, ok := plan.Selections["b"]; !ok {
		t.Errorf("expected b to be selected, plan = %+v", plan)
	}
}

func TestBuildReportMinimalPlanPicksLowestFeasibleR(t *testing.T) {
	provider, dir := newTestProvider(t)
	seedCRAN(t, dir, "oldschool", map[string]map[string]interface{}{
		"1.0.0": {"Depends": "R (>= 3.6.0)"},
	})

	targets := []TargetContext{{Identifier: "oldschool", Package: "oldschool", Source: "cran"}}
	report := BuildReport(context.Background(), provider, targets, false, "", "")
	if report.MinimalPlan == nil {
		t.Fatalf("expected a minimal plan, conflicts = %+v", report.Conflicts)
	}
	if report.MinimalPlan.RVersion != "3.6.0" {
		t.Errorf("RVersion = %q, want the lowest supported series satisfying R>=3.6.0", report.MinimalPlan.RVersion)
	}
}

func TestBuildReportLockedRProducesDowngradeInfo(t *testing.T) {
	provider, dir := newTestProvider(t)
	seedCRAN(t, dir, "pkg", map[string]map[string]interface{}{
		"1.0.0": {"Depends": "R (>= 3.6.0)"},
		"2.0.0": {"Depends": "R (>= 4.2.0)"},
	})

	targets := []TargetContext{{Identifier: "pkg", Package: "pkg", Source: "cran"}}
	report := BuildReport(context.Background(), provider, targets, false, "", "4.0.0")
	if report.LockedPlan == nil {
		t.Fatalf("expected a locked plan under R 4.0.0, conflicts = %+v", report.LockedConflicts)
	}
	locked := report.LockedPlan.Selections["pkg"]
	if locked.Version != "1.0.0" {
		t.Errorf("locked version = %q, want 1.0.0 (2.0.0 needs R>=4.2.0)", locked.Version)
	}
}
