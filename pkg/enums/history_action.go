package enums

import "fmt"

// HistoryAction is the event recorded on a site/equipment history row.
type HistoryAction string

const (
	HistoryActionRegister   HistoryAction = "Register"
	HistoryActionUnregister HistoryAction = "Unregister"
)

var validHistoryActions = []HistoryAction{
	HistoryActionRegister,
	HistoryActionUnregister,
}

func (a HistoryAction) String() string {
	return string(a)
}

func (a HistoryAction) IsValid() bool {
	for _, candidate := range validHistoryActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseHistoryAction converts raw input into a HistoryAction.
func ParseHistoryAction(value string) (HistoryAction, error) {
	for _, candidate := range validHistoryActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid history action %q", value)
}
