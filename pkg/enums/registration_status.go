package enums

import (
	"fmt"
	"strings"
)

// RegistrationStatus is the lifecycle state of a signup request.
// Pending transitions to exactly one of the terminal states.
type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "Pending"
	RegistrationStatusApproved RegistrationStatus = "Approved"
	RegistrationStatusDenied   RegistrationStatus = "Denied"
)

// RegistrationStatusFilterAll selects every status when listing requests.
const RegistrationStatusFilterAll = "All"

var validRegistrationStatuses = []RegistrationStatus{
	RegistrationStatusPending,
	RegistrationStatusApproved,
	RegistrationStatusDenied,
}

// String implements fmt.Stringer.
func (s RegistrationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RegistrationStatus.
func (s RegistrationStatus) IsValid() bool {
	for _, candidate := range validRegistrationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s RegistrationStatus) IsTerminal() bool {
	return s == RegistrationStatusApproved || s == RegistrationStatusDenied
}

// ParseRegistrationStatus converts raw input into a RegistrationStatus.
func ParseRegistrationStatus(value string) (RegistrationStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validRegistrationStatuses {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid registration status %q", value)
}
