package enums

import (
	"fmt"
	"strings"
)

// SerialScope selects where equipment serial numbers must be unique.
type SerialScope string

const (
	// SerialScopeOwner requires uniqueness within one owner's equipment.
	SerialScopeOwner SerialScope = "owner"
	// SerialScopeGlobal requires uniqueness across all equipment.
	SerialScopeGlobal SerialScope = "global"
)

func (s SerialScope) String() string {
	return string(s)
}

func (s SerialScope) IsValid() bool {
	return s == SerialScopeOwner || s == SerialScopeGlobal
}

// ParseSerialScope converts raw input into a SerialScope. Empty input yields
// the owner scope.
func ParseSerialScope(value string) (SerialScope, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(SerialScopeOwner):
		return SerialScopeOwner, nil
	case string(SerialScopeGlobal):
		return SerialScopeGlobal, nil
	default:
		return "", fmt.Errorf("invalid serial scope %q", value)
	}
}
