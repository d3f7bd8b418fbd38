package rsolve

import "testing"

func TestValidateSupportedRVersionsPasses(t *testing.T) {
	if err := validateSupportedRVersions(); err != nil {
		t.Fatalf("validateSupportedRVersions: %v", err)
	}
}

func TestValidateLockedR(t *testing.T) {
	if err := validateLockedR(""); err != nil {
		t.Errorf("empty lockedR should be accepted, got %v", err)
	}
	if err := validateLockedR("4.2.0"); err != nil {
		t.Errorf("4.2.0 should be valid semver: %v", err)
	}
	if err := validateLockedR("not-a-version"); err == nil {
		t.Errorf("expected an error for a malformed --lock-r value")
	}
}
