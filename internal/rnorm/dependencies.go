package rnorm

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rverflow/rverflow/internal/rmodel"
	"github.com/rverflow/rverflow/internal/rversion"
)

var depEntryRE = regexp.MustCompile(`^([A-Za-z0-9._]+)(?:\s*\(([^)]+)\))?$`)

// depEntry is one name plus the constraints carried in its parenthetical.
type depEntry struct {
	name        string
	constraints []rversion.Constraint
}

func parseDependencyEntry(entry string) depEntry {
	entry = strings.TrimSpace(entry)
	m := depEntryRE.FindStringSubmatch(entry)
	if m == nil {
		return depEntry{name: entry}
	}
	return depEntry{name: m[1], constraints: rversion.ParseConstraintList(m[2])}
}

// parseDepSection accepts a mapping (name -> constraint expression), a
// comma-separated string, or a list of entry strings, matching the three
// shapes seen across CRAN/Bioconductor JSON and GitHub DESCRIPTION text.
func parseDepSection(section interface{}) []depEntry {
	if section == nil {
		return nil
	}
	switch v := section.(type) {
	case map[string]interface{}:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]depEntry, 0, len(names))
		for _, name := range names {
			expr := stringify(v[name])
			out = append(out, depEntry{name: name, constraints: rversion.ParseConstraintList(expr)})
		}
		return out
	case string:
		var out []depEntry
		for _, raw := range strings.Split(v, ",") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			out = append(out, parseDependencyEntry(raw))
		}
		return out
	case []interface{}:
		var out []depEntry
		for _, raw := range v {
			s := stringify(raw)
			if s == "" {
				continue
			}
			out = append(out, parseDependencyEntry(s))
		}
		return out
	case []string:
		var out []depEntry
		for _, raw := range v {
			if raw == "" {
				continue
			}
			out = append(out, parseDependencyEntry(raw))
		}
		return out
	default:
		return nil
	}
}

// stringify coerces a non-string dependency spec (e.g. a bare number) to
// its string form; some feeds carry a version constraint unquoted.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

type dependencySections struct {
	Depends   interface{}
	Imports   interface{}
	LinkingTo interface{}
	Suggests  interface{}
}

// BuildDependencies assembles the dependency list for a payload's Depends,
// Imports, LinkingTo, and (optionally) Suggests sections, then splits out
// the R-version requirement and filters base packages. It returns the
// filtered dependency list and the extracted r_min (empty if unset).
func BuildDependencies(sections dependencySections, includeOptional bool) ([]rmodel.Dependency, string) {
	var deps []rmodel.Dependency
	add := func(section interface{}, kind rmodel.DependencyKind, optional bool) {
		if optional && !includeOptional {
			return
		}
		for _, entry := range parseDepSection(section) {
			deps = append(deps, rmodel.Dependency{
				Name:        entry.name,
				Constraints: entry.constraints,
				Kind:        kind,
				Optional:    optional,
			})
		}
	}
	add(sections.Depends, rmodel.KindDepends, false)
	add(sections.Imports, rmodel.KindImports, false)
	add(sections.LinkingTo, rmodel.KindLinkingTo, false)
	add(sections.Suggests, rmodel.KindSuggests, true)

	rMin, remaining := splitRRequirement(deps)
	var filtered []rmodel.Dependency
	for _, d := range remaining {
		if rmodel.BaseRPackages[d.Name] || rmodel.BaseRPackages[strings.ToLower(d.Name)] {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered, rMin
}

// splitRRequirement walks deps, extracts the maximum >=/> constraint seen
// on the pseudo-package R (case-insensitive), and returns the remaining
// non-R dependencies.
func splitRRequirement(deps []rmodel.Dependency) (string, []rmodel.Dependency) {
	var rMin string
	remaining := make([]rmodel.Dependency, 0, len(deps))
	for _, d := range deps {
		if strings.EqualFold(d.Name, "R") {
			for _, c := range d.Constraints {
				if c.Operator == rversion.OpGE || c.Operator == rversion.OpGT {
					if rMin == "" || rversion.Compare(rversion.Parse(c.Version), rversion.Parse(rMin)) > 0 {
						rMin = c.Version
					}
				}
			}
			continue
		}
		remaining = append(remaining, d)
	}
	return rMin, remaining
}
