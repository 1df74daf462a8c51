package engine

import "time"

// StrictnessComparison reports whether a new set of active rules is stricter
// than the previous one and, if so, which new rule drives it.
type StrictnessComparison struct {
	Stricter      bool
	StrictestRule *Rule
}

// CompareStrictness orders two active rule sets by severity. Severity of a
// rule is the quota window it grants per allowed item: a longer wait per
// item is stricter. Used after a vote lands to detect users whose limits
// just tightened.
func CompareStrictness(newRules, oldRules []Rule) (StrictnessComparison, error) {
	if len(newRules) == 0 {
		return StrictnessComparison{}, nil
	}
	strictestNew, errNew := strictestBySeverity(newRules)
	if errNew != nil {
		return StrictnessComparison{}, errNew
	}
	if len(oldRules) == 0 {
		return StrictnessComparison{Stricter: true, StrictestRule: strictestNew}, nil
	}
	strictestOld, errOld := strictestBySeverity(oldRules)
	if errOld != nil {
		return StrictnessComparison{}, errOld
	}
	newPerItem, _ := perItem(*strictestNew)
	oldPerItem, _ := perItem(*strictestOld)
	if newPerItem > oldPerItem {
		return StrictnessComparison{Stricter: true, StrictestRule: strictestNew}, nil
	}
	return StrictnessComparison{}, nil
}

// perItem is the duration of quota window consumed by a single item.
func perItem(rule Rule) (time.Duration, error) {
	timeframe, errTimeframe := rule.Timeframe()
	if errTimeframe != nil {
		return 0, errTimeframe
	}
	return timeframe / time.Duration(rule.ItemsPerTimeframe), nil
}

func strictestBySeverity(rules []Rule) (*Rule, error) {
	var strictest *Rule
	var strictestPerItem time.Duration
	for i := range rules {
		severity, errSeverity := perItem(rules[i])
		if errSeverity != nil {
			return nil, errSeverity
		}
		if strictest == nil || severity > strictestPerItem {
			strictest = &rules[i]
			strictestPerItem = severity
		}
	}
	return strictest, nil
}

// ActiveRules returns the rules of the given action type whose thresholds
// currently hold for the user, preserving catalog order.
func ActiveRules(action ActionType, karma UserKarmaSnapshot, features RecentActivityFeatures, rules []Rule) ([]Rule, error) {
	var active []Rule
	for _, rule := range rules {
		if rule.ActionType != action {
			continue
		}
		if errValidate := rule.Validate(); errValidate != nil {
			return nil, errValidate
		}
		ok, errActive := ruleActive(rule, karma, features)
		if errActive != nil {
			return nil, errActive
		}
		if ok {
			active = append(active, rule)
		}
	}
	return active, nil
}
