// Package rreport renders a resolution Report as human-readable text or as
// JSON for machine consumption.
package rreport

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rverflow/rverflow/internal/rmodel"
	"github.com/rverflow/rverflow/internal/rversion"
)

func formatPlan(plan *rmodel.Plan) []string {
	lines := []string{fmt.Sprintf("R %s", plan.RVersion)}
	names := make([]string, 0, len(plan.Selections))
	for name := range plan.Selections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		selection := plan.Selections[name]
		var extras []string
		if selection.BiocRelease != "" {
			extras = append(extras, fmt.Sprintf("Bioconductor %s", selection.BiocRelease))
		}
		if selection.RMin != "" {
			extras = append(extras, fmt.Sprintf("needs R>=%s", selection.RMin))
		}
		if selection.SourceURL != "" {
			extras = append(extras, selection.SourceURL)
		}
		meta := ""
		if len(extras) > 0 {
			meta = fmt.Sprintf(" (%s)", strings.Join(extras, ", "))
		}
		lines = append(lines, fmt.Sprintf("  - %s %s [%s]%s", name, selection.Version, selection.Repo, meta))
	}
	return lines
}

func formatConflicts(conflicts []rmodel.Conflict) []string {
	var lines []string
	for _, conflict := range conflicts {
		chain := strings.Join(conflict.RequiredBy, " -> ")
		lines = append(lines, fmt.Sprintf("  * %s (via %s): %s", conflict.Package, chain, conflict.Message))
		if len(conflict.Candidates) > 0 {
			lines = append(lines, fmt.Sprintf("    candidates: %s", strings.Join(conflict.Candidates, ", ")))
		}
	}
	return lines
}

type downgrade struct {
	Package, Desired, Locked string
}

func computeDowngrades(minimal, locked *rmodel.Plan) []downgrade {
	var downgrades []downgrade
	names := make([]string, 0, len(minimal.Selections))
	for name := range minimal.Selections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, pkg := range names {
		desired := minimal.Selections[pkg]
		lockedSelection, ok := locked.Selections[pkg]
		if !ok {
			continue
		}
		if rversion.Compare(rversion.Parse(lockedSelection.Version), rversion.Parse(desired.Version)) < 0 {
			downgrades = append(downgrades, downgrade{Package: pkg, Desired: desired.Version, Locked: lockedSelection.Version})
		}
	}
	return downgrades
}

// GenerateText renders report in the multi-section plain-text format used
// by the solve command's default output.
func GenerateText(report rmodel.Report) string {
	var lines []string
	if report.MinimalPlan != nil {
		lines = append(lines, "Minimal feasible environment:")
		lines = append(lines, formatPlan(report.MinimalPlan)...)
	} else {
		lines = append(lines, "Failed to determine a compatible environment.")
		if len(report.Conflicts) > 0 {
			lines = append(lines, "Conflicts encountered while searching versions:")
			lines = append(lines, formatConflicts(report.Conflicts)...)
		}
	}

	if report.RVersionLocked != "" {
		lines = append(lines, "")
		lines = append(lines, fmt.Sprintf("When locking R to %s:", report.RVersionLocked))
		switch {
		case report.LockedPlan != nil:
			lines = append(lines, formatPlan(report.LockedPlan)...)
			if report.MinimalPlan != nil {
				downgrades := computeDowngrades(report.MinimalPlan, report.LockedPlan)
				if len(downgrades) > 0 {
					lines = append(lines, "  Downgrades required relative to minimal plan:")
					for _, d := range downgrades {
						lines = append(lines, fmt.Sprintf("    - %s: %s -> %s", d.Package, d.Desired, d.Locked))
					}
				}
			}
		case len(report.LockedConflicts) > 0:
			lines = append(lines, "  Conflicts:")
			lines = append(lines, formatConflicts(report.LockedConflicts)...)
		default:
			lines = append(lines, "  No solution found.")
		}
	}
	return strings.Join(lines, "\n")
}
