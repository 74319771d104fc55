package enums

import "fmt"

// EquipmentCondition tracks whether a piece of equipment is usable.
type EquipmentCondition string

const (
	EquipmentConditionWorking    EquipmentCondition = "Working"
	EquipmentConditionNotWorking EquipmentCondition = "Not Working"
)

var validEquipmentConditions = []EquipmentCondition{
	EquipmentConditionWorking,
	EquipmentConditionNotWorking,
}

// String implements fmt.Stringer.
func (c EquipmentCondition) String() string {
	return string(c)
}

// IsValid reports whether the value is a known EquipmentCondition.
func (c EquipmentCondition) IsValid() bool {
	for _, candidate := range validEquipmentConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseEquipmentCondition converts raw input into an EquipmentCondition.
func ParseEquipmentCondition(value string) (EquipmentCondition, error) {
	for _, candidate := range validEquipmentConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid equipment condition %q", value)
}
