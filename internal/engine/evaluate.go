package engine

import (
	"sort"
	"time"
)

// EvalInput carries everything Evaluate needs. The engine performs no I/O;
// the caller materializes all inputs before invoking it.
type EvalInput struct {
	Action   ActionType
	Karma    UserKarmaSnapshot
	Features RecentActivityFeatures

	// OwnActionTimes are the timestamps of the user's own posts or
	// comments of this action type, most-recent-first. Re-sorted
	// defensively before use.
	OwnActionTimes []time.Time

	// IsReplyToOwnContent restricts comment rules to those that apply on
	// the user's own posts. Ignored for post evaluations.
	IsReplyToOwnContent bool

	Rules []Rule
	Now   time.Time
}

// Evaluate decides whether the action is currently permitted and, if not,
// when it becomes permitted again. Among all rules whose thresholds hold and
// whose quota is exhausted, the one with the latest next-eligible time wins;
// ties keep the earliest catalog position. A malformed rule aborts the whole
// evaluation with a *ConfigError so the caller can fail closed.
func Evaluate(in EvalInput) (Decision, error) {
	times := append([]time.Time(nil), in.OwnActionTimes...)
	sort.Slice(times, func(i, j int) bool { return times[i].After(times[j]) })

	selected := -1
	var selectedNext time.Time
	for i, rule := range in.Rules {
		if rule.ActionType != in.Action {
			continue
		}
		if in.Action == ActionComment && in.IsReplyToOwnContent && !rule.AppliesToOwnPosts {
			continue
		}
		timeframe, errTimeframe := rule.Timeframe()
		if errTimeframe != nil {
			return Decision{}, errTimeframe
		}
		active, errActive := ruleActive(rule, in.Karma, in.Features)
		if errActive != nil {
			return Decision{}, errActive
		}
		if !active {
			continue
		}
		// Quota check: with fewer than N own actions the rule cannot
		// bind, and an Nth-most-recent action older than the timeframe
		// means the quota has already expired.
		if len(times) < rule.ItemsPerTimeframe {
			continue
		}
		next := times[rule.ItemsPerTimeframe-1].Add(timeframe)
		if !next.After(in.Now) {
			continue
		}
		if selected < 0 || next.After(selectedNext) {
			selected = i
			selectedNext = next
		}
	}

	if selected < 0 {
		return Decision{}, nil
	}
	rule := in.Rules[selected]
	return Decision{Limited: true, NextEligibleAt: selectedNext, Rule: &rule}, nil
}

// ruleActive reports whether every threshold of the rule holds. Zero
// thresholds means universally active.
func ruleActive(rule Rule, karma UserKarmaSnapshot, features RecentActivityFeatures) (bool, error) {
	for _, threshold := range rule.Thresholds {
		ok, errHolds := threshold.holds(karma, features)
		if errHolds != nil {
			return false, errHolds
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
