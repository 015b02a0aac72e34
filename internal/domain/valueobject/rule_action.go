package valueobject

import "fmt"

// RuleAction is an immutable value object representing the outcome of rule evaluation.
type RuleAction struct {
	value string
}

var (
	ActionApprove      = RuleAction{value: "APPROVE"}
	ActionManualReview = RuleAction{value: "MANUAL_REVIEW"}
	ActionReject       = RuleAction{value: "REJECT"}
)

// RuleActionFromString reconstructs an action from its string representation.
func RuleActionFromString(s string) (RuleAction, error) {
	switch s {
	case "APPROVE":
		return ActionApprove, nil
	case "MANUAL_REVIEW":
		return ActionManualReview, nil
	case "REJECT":
		return ActionReject, nil
	default:
		return RuleAction{}, fmt.Errorf("invalid rule action: %s", s)
	}
}

// String returns the string representation.
func (a RuleAction) String() string {
	return a.value
}

// IsZero returns true if the action has not been set.
func (a RuleAction) IsZero() bool {
	return a.value == ""
}

// Equal checks equality with another RuleAction.
func (a RuleAction) Equal(other RuleAction) bool {
	return a.value == other.value
}

// IsApproved returns true if the action is APPROVE.
func (a RuleAction) IsApproved() bool {
	return a.value == "APPROVE"
}
