package rmodel

import "fmt"

// MetadataFetchError is raised when metadata for a package or release
// cannot be retrieved or normalized from an upstream source.
type MetadataFetchError struct {
	URL     string
	Status  int
	Message string
}

func (e *MetadataFetchError) Error() string {
	if e.URL != "" {
		if e.Status != 0 {
			return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.Status)
		}
		return fmt.Sprintf("failed to fetch %s: %s", e.URL, e.Message)
	}
	return e.Message
}

// NewMetadataFetchError builds a MetadataFetchError carrying only a
// message, for normalization/parse failures that have no associated URL.
func NewMetadataFetchError(format string, args ...interface{}) *MetadataFetchError {
	return &MetadataFetchError{Message: fmt.Sprintf(format, args...)}
}

// ResolutionError is raised by the backtracking search: no candidates, an
// unsatisfiable constraint under current assignments, or a dependency
// cycle. Recoverable within the search; fatal at the top level, where it
// becomes a Conflict.
type ResolutionError struct {
	Package    string
	RequiredBy []string
	Message    string
	Candidates []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Package, e.Message)
}

// ToConflict freezes a ResolutionError into a diagnostic record.
func (e *ResolutionError) ToConflict() Conflict {
	return Conflict{
		Package:    e.Package,
		RequiredBy: append([]string(nil), e.RequiredBy...),
		Message:    e.Message,
		Candidates: append([]string(nil), e.Candidates...),
	}
}

// ConfigError signals an invalid or malformed project configuration,
// distinct from the two resolution-domain error kinds above.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}
