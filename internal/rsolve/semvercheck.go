package rsolve

import (
	"sync"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"

	"github.com/rverflow/rverflow/internal/rmodel"
)

// validateSupportedRVersions runs once, confirming every entry in
// rmodel.SupportedRVersions is well-formed semver. The resolver's own
// version comparisons are R-flavored (rversion), not semver, but the
// candidate list is hand-maintained and a typo there should fail loudly
// instead of silently dropping an R series from the search.
var validateSupportedRVersionsOnce sync.Once
var validateSupportedRVersionsErr error

func validateSupportedRVersions() error {
	validateSupportedRVersionsOnce.Do(func() {
		for _, v := range rmodel.SupportedRVersions {
			if _, err := semver.NewVersion(v); err != nil {
				validateSupportedRVersionsErr = errors.Wrapf(err, "SupportedRVersions entry %q is not valid semver", v)
				return
			}
		}
	})
	return validateSupportedRVersionsErr
}

// validateLockedR checks a user-supplied --lock-r value against the same
// semver grammar before it reaches the solver, so a malformed lock target
// fails with a clear message instead of silently matching nothing.
func validateLockedR(lockedR string) error {
	if lockedR == "" {
		return nil
	}
	if _, err := semver.NewVersion(lockedR); err != nil {
		return errors.Wrapf(err, "--lock-r value %q is not a valid R version", lockedR)
	}
	return nil
}
