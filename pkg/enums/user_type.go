package enums

import (
	"fmt"
	"strings"
)

// UserType is the account role. SuperAdmins administer every tenant; Admins
// manage only the sites and equipment they own.
type UserType string

const (
	UserTypeAdmin      UserType = "Admin"
	UserTypeSuperAdmin UserType = "SuperAdmin"
)

var validUserTypes = []UserType{
	UserTypeAdmin,
	UserTypeSuperAdmin,
}

// String implements fmt.Stringer.
func (u UserType) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserType.
func (u UserType) IsValid() bool {
	for _, candidate := range validUserTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserType converts raw input into a UserType. Matching ignores case so
// "superadmin" and "SuperAdmin" resolve to the same role.
func ParseUserType(value string) (UserType, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validUserTypes {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user type %q", value)
}
