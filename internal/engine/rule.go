package engine

import (
	"fmt"
	"time"
)

// Rule is one declarative rate limit. Rules are configured per deployment,
// immutable at evaluation time, and carry their quota flattened alongside
// the threshold conditions that gate them.
type Rule struct {
	ActionType        ActionType    `yaml:"action"`
	ItemsPerTimeframe int           `yaml:"items-per-timeframe"`
	TimeframeLength   int           `yaml:"timeframe-length"`
	TimeframeUnit     TimeframeUnit `yaml:"timeframe-unit"`

	// AppliesToOwnPosts extends a comment quota to replies on the user's
	// own content. Ignored for post rules.
	AppliesToOwnPosts bool `yaml:"applies-to-own-posts"`

	// Thresholds must all hold for the rule to be active (AND). Empty
	// means universally active.
	Thresholds []Threshold `yaml:"thresholds"`

	// PriorityClass tags the rule for diagnostics only; it never affects
	// which rule wins.
	PriorityClass string `yaml:"priority-class"`

	Message string `yaml:"message"`
}

// Name renders the rule's quota for logs and error messages.
func (r Rule) Name() string {
	return fmt.Sprintf("%d %s per %d %s", r.ItemsPerTimeframe, r.ActionType, r.TimeframeLength, r.TimeframeUnit)
}

// Validate checks the rule definition. An invalid quota or threshold is a
// configuration error: the evaluator refuses to run rather than silently
// under-enforcing.
func (r Rule) Validate() error {
	switch r.ActionType {
	case ActionPost, ActionComment:
	default:
		return &ConfigError{Rule: r.Name(), Reason: fmt.Sprintf("unknown action type %q", r.ActionType)}
	}
	if r.ItemsPerTimeframe <= 0 {
		return &ConfigError{Rule: r.Name(), Reason: "items-per-timeframe must be positive"}
	}
	if r.TimeframeLength <= 0 {
		return &ConfigError{Rule: r.Name(), Reason: "timeframe-length must be positive"}
	}
	if _, ok := r.TimeframeUnit.Duration(r.TimeframeLength); !ok {
		return &ConfigError{Rule: r.Name(), Reason: fmt.Sprintf("unknown timeframe unit %q", r.TimeframeUnit)}
	}
	for _, threshold := range r.Thresholds {
		if errValidate := threshold.Validate(); errValidate != nil {
			return &ConfigError{Rule: r.Name(), Reason: errValidate.Error()}
		}
	}
	return nil
}

// Timeframe returns the rule's quota window as a duration.
func (r Rule) Timeframe() (time.Duration, error) {
	if errValidate := r.Validate(); errValidate != nil {
		return 0, errValidate
	}
	timeframe, _ := r.TimeframeUnit.Duration(r.TimeframeLength)
	return timeframe, nil
}
