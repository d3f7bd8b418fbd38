package rreport

import (
	"encoding/json"

	"github.com/rverflow/rverflow/internal/rmodel"
)

type planPayload struct {
	RVersion   string                      `json:"r_version"`
	Selections map[string]selectionPayload `json:"selections"`
	Notes      []string                    `json:"notes"`
}

type selectionPayload struct {
	Version     string `json:"version"`
	Repo        string `json:"repo"`
	RMin        string `json:"r_min"`
	BiocRelease string `json:"bioc_release"`
	SourceURL   string `json:"source_url"`
}

type conflictPayload struct {
	Package    string   `json:"package"`
	RequiredBy []string `json:"required_by"`
	Message    string   `json:"message"`
	Candidates []string `json:"candidates"`
}

type reportPayload struct {
	MinimalPlan     *planPayload      `json:"minimal_plan"`
	LockedPlan      *planPayload      `json:"locked_plan"`
	Conflicts       []conflictPayload `json:"conflicts"`
	LockedConflicts []conflictPayload `json:"locked_conflicts"`
	RVersionLocked  string            `json:"r_version_locked"`
}

func planToPayload(plan *rmodel.Plan) *planPayload {
	if plan == nil {
		return nil
	}
	selections := make(map[string]selectionPayload, len(plan.Selections))
	for name, selection := range plan.Selections {
		selections[name] = selectionPayload{
			Version:     selection.Version,
			Repo:        string(selection.Repo),
			RMin:        selection.RMin,
			BiocRelease: selection.BiocRelease,
			SourceURL:   selection.SourceURL,
		}
	}
	notes := plan.Notes
	if notes == nil {
		notes = []string{}
	}
	return &planPayload{RVersion: plan.RVersion, Selections: selections, Notes: notes}
}

// conflictsToPayload converts Conflict values to their snake_case wire
// form, normalizing a nil slice to an empty array the way the Python
// reference's generate_json does.
func conflictsToPayload(conflicts []rmodel.Conflict) []conflictPayload {
	out := make([]conflictPayload, 0, len(conflicts))
	for _, c := range conflicts {
		requiredBy := c.RequiredBy
		if requiredBy == nil {
			requiredBy = []string{}
		}
		candidates := c.Candidates
		if candidates == nil {
			candidates = []string{}
		}
		out = append(out, conflictPayload{
			Package:    c.Package,
			RequiredBy: requiredBy,
			Message:    c.Message,
			Candidates: candidates,
		})
	}
	return out
}

// GenerateJSON renders report as indented JSON, the format the solve
// command emits under -format json.
func GenerateJSON(report rmodel.Report) (string, error) {
	payload := reportPayload{
		MinimalPlan:     planToPayload(report.MinimalPlan),
		LockedPlan:      planToPayload(report.LockedPlan),
		Conflicts:       conflictsToPayload(report.Conflicts),
		LockedConflicts: conflictsToPayload(report.LockedConflicts),
		RVersionLocked:  report.RVersionLocked,
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
