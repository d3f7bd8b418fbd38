package rreport

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rverflow/rverflow/internal/rmodel"
)

func samplePlan() *rmodel.Plan {
	return &rmodel.Plan{
		RVersion: "4.2.0",
		Selections: map[string]rmodel.Selection{
			"dplyr": {Package: "dplyr", Version: "1.1.4", Repo: rmodel.RepoCRAN, RMin: "4.0.0"},
			"rlang": {Package: "rlang", Version: "1.1.2", Repo: rmodel.RepoCRAN},
		},
	}
}

func TestGenerateTextMinimalPlan(t *testing.T) {
	report := rmodel.Report{MinimalPlan: samplePlan()}
	text := GenerateText(report)
	if !strings.Contains(text, "Minimal feasible environment:") {
		t.Errorf("text missing header: %q", text)
	}
	if !strings.Contains(text, "dplyr 1.1.4 [CRAN]") {
		t.Errorf("text missing dplyr selection: %q", text)
	}
	if !strings.Contains(text, "needs R>=4.0.0") {
		t.Errorf("text missing r_min annotation: %q", text)
	}
}

func TestGenerateTextNoSolution(t *testing.T) {
	report := rmodel.Report{
		Conflicts: []rmodel.Conflict{
			{Package: "dplyr", RequiredBy: []string{"dplyr"}, Message: "No candidate versions satisfy constraints", Candidates: []string{"(none)"}},
		},
	}
	text := GenerateText(report)
	if !strings.Contains(text, "Failed to determine a compatible environment.") {
		t.Errorf("text missing failure header: %q", text)
	}
	if !strings.Contains(text, "dplyr (via dplyr): No candidate versions satisfy constraints") {
		t.Errorf("text missing conflict line: %q", text)
	}
}

func TestGenerateTextLockedDowngrade(t *testing.T) {
	minimal := samplePlan()
	locked := &rmodel.Plan{
		RVersion: "4.0.0",
		Selections: map[string]rmodel.Selection{
			"dplyr": {Package: "dplyr", Version: "1.0.0", Repo: rmodel.RepoCRAN},
			"rlang": {Package: "rlang", Version: "1.1.2", Repo: rmodel.RepoCRAN},
		},
	}
	report := rmodel.Report{MinimalPlan: minimal, LockedPlan: locked, RVersionLocked: "4.0.0"}
	text := GenerateText(report)
	if !strings.Contains(text, "When locking R to 4.0.0:") {
		t.Errorf("text missing locked header: %q", text)
	}
	if !strings.Contains(text, "dplyr: 1.1.4 -> 1.0.0") {
		t.Errorf("text missing downgrade line: %q", text)
	}
}

func TestGenerateJSONRoundTrips(t *testing.T) {
	report := rmodel.Report{MinimalPlan: samplePlan()}
	out, err := GenerateJSON(report)
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decoding generated JSON: %v", err)
	}
	minimal, ok := decoded["minimal_plan"].(map[string]interface{})
	if !ok {
		t.Fatalf("minimal_plan missing or wrong shape: %v", decoded)
	}
	if minimal["r_version"] != "4.2.0" {
		t.Errorf("r_version = %v, want 4.2.0", minimal["r_version"])
	}
	if decoded["locked_plan"] != nil {
		t.Errorf("locked_plan = %v, want nil", decoded["locked_plan"])
	}
}
