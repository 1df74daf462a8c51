package engine

import (
	"errors"
	"testing"
	"time"
)

func commentRule(items, length int, unit TimeframeUnit, thresholds ...Threshold) Rule {
	return Rule{
		ActionType:        ActionComment,
		ItemsPerTimeframe: items,
		TimeframeLength:   length,
		TimeframeUnit:     unit,
		Thresholds:        thresholds,
	}
}

// actionsAgo builds a most-recent-first timestamp list at the given offsets.
func actionsAgo(now time.Time, offsets ...time.Duration) []time.Time {
	times := make([]time.Time, 0, len(offsets))
	for _, offset := range offsets {
		times = append(times, now.Add(-offset))
	}
	return times
}

func TestEvaluate_QuotaNotYetExhausted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rule := commentRule(3, 1, UnitDays)

	decision, err := Evaluate(EvalInput{
		Action:         ActionComment,
		OwnActionTimes: actionsAgo(now, time.Hour, 2*time.Hour),
		Rules:          []Rule{rule},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if decision.Limited {
		t.Fatalf("expected 2 of 3 actions to pass, got limited until %s", decision.NextEligibleAt)
	}
}

func TestEvaluate_QuotaExhausted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rule := commentRule(3, 1, UnitDays)

	decision, err := Evaluate(EvalInput{
		Action:         ActionComment,
		OwnActionTimes: actionsAgo(now, time.Hour, 2*time.Hour, 3*time.Hour),
		Rules:          []Rule{rule},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !decision.Limited {
		t.Fatal("expected 3 of 3 actions to limit")
	}
	// Third-most-recent action plus the timeframe.
	want := now.Add(-3 * time.Hour).Add(24 * time.Hour)
	if !decision.NextEligibleAt.Equal(want) {
		t.Fatalf("expected nextEligibleAt=%s, got %s", want, decision.NextEligibleAt)
	}
	if decision.Rule == nil || decision.Rule.Name() != rule.Name() {
		t.Fatalf("expected triggered rule %q, got %+v", rule.Name(), decision.Rule)
	}
}

func TestEvaluate_ExpiredQuotaDoesNotBind(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rule := commentRule(1, 1, UnitHours)

	decision, err := Evaluate(EvalInput{
		Action:         ActionComment,
		OwnActionTimes: actionsAgo(now, 2*time.Hour),
		Rules:          []Rule{rule},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if decision.Limited {
		t.Fatal("expected an expired quota to not bind")
	}
}

func TestEvaluate_StrictestWinsRegardlessOfOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	loose := commentRule(1, 1, UnitHours)
	strict := commentRule(1, 1, UnitWeeks)
	history := actionsAgo(now, 30*time.Minute)

	for _, rules := range [][]Rule{{loose, strict}, {strict, loose}} {
		decision, err := Evaluate(EvalInput{
			Action:         ActionComment,
			OwnActionTimes: history,
			Rules:          rules,
			Now:            now,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !decision.Limited {
			t.Fatal("expected limited")
		}
		want := now.Add(-30 * time.Minute).Add(7 * 24 * time.Hour)
		if !decision.NextEligibleAt.Equal(want) {
			t.Fatalf("expected the week-long rule to win, got %s", decision.NextEligibleAt)
		}
		if decision.Rule.TimeframeUnit != UnitWeeks {
			t.Fatalf("expected the week-long rule reported, got %q", decision.Rule.Name())
		}
	}
}

func TestEvaluate_TieKeepsCatalogOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := commentRule(1, 24, UnitHours)
	first.PriorityClass = "first"
	second := commentRule(1, 1, UnitDays)
	second.PriorityClass = "second"

	decision, err := Evaluate(EvalInput{
		Action:         ActionComment,
		OwnActionTimes: actionsAgo(now, time.Hour),
		Rules:          []Rule{first, second},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !decision.Limited || decision.Rule.PriorityClass != "first" {
		t.Fatalf("expected the first of two tied rules, got %+v", decision.Rule)
	}
}

func TestEvaluate_ThresholdsAreConjunctive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rule := commentRule(1, 1, UnitDays,
		Threshold{Field: FieldLast20Karma, Op: CmpLT, Value: -30},
		Threshold{Field: FieldPostDownvoterCount, Op: CmpGTE, Value: 10},
	)
	history := actionsAgo(now, time.Hour)

	tests := []struct {
		name     string
		features RecentActivityFeatures
		limited  bool
	}{
		{"both hold", RecentActivityFeatures{Last20Karma: -40, PostDownvoterCount: 12}, true},
		{"karma alone", RecentActivityFeatures{Last20Karma: -40, PostDownvoterCount: 2}, false},
		{"downvoters alone", RecentActivityFeatures{Last20Karma: 5, PostDownvoterCount: 12}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := Evaluate(EvalInput{
				Action:         ActionComment,
				Features:       tt.features,
				OwnActionTimes: history,
				Rules:          []Rule{rule},
				Now:            now,
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if decision.Limited != tt.limited {
				t.Fatalf("expected limited=%v, got %v", tt.limited, decision.Limited)
			}
		})
	}
}

func TestEvaluate_ZeroKarmaThresholdMatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rule := commentRule(1, 1, UnitDays, Threshold{Field: FieldKarma, Op: CmpLTE, Value: 0})
	history := actionsAgo(now, time.Hour)

	decision, err := Evaluate(EvalInput{
		Action:         ActionComment,
		Karma:          UserKarmaSnapshot{Karma: 0},
		OwnActionTimes: history,
		Rules:          []Rule{rule},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !decision.Limited {
		t.Fatal("expected karma=0 to match karma<=0")
	}

	decision, err = Evaluate(EvalInput{
		Action:         ActionComment,
		Karma:          UserKarmaSnapshot{Karma: 1},
		OwnActionTimes: history,
		Rules:          []Rule{rule},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if decision.Limited {
		t.Fatal("expected karma=1 to never match karma<=0")
	}
}

func TestEvaluate_OwnPostRepliesOnlyUseOwnPostRules(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	othersOnly := commentRule(1, 1, UnitWeeks)
	everywhere := commentRule(4, 30, UnitMinutes)
	everywhere.AppliesToOwnPosts = true
	history := actionsAgo(now, time.Minute, 2*time.Minute, 3*time.Minute, 4*time.Minute)

	decision, err := Evaluate(EvalInput{
		Action:              ActionComment,
		OwnActionTimes:      history,
		IsReplyToOwnContent: true,
		Rules:               []Rule{othersOnly, everywhere},
		Now:                 now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !decision.Limited {
		t.Fatal("expected the own-posts rule to bind")
	}
	if decision.Rule.TimeframeUnit != UnitMinutes {
		t.Fatalf("expected only applies-to-own-posts rules considered, got %q", decision.Rule.Name())
	}
}

func TestEvaluate_NoHistoryNeverQuotaLimited(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rule := commentRule(1, 1, UnitWeeks, Threshold{Field: FieldKarma, Op: CmpLT, Value: 5})

	decision, err := Evaluate(EvalInput{
		Action: ActionComment,
		Karma:  UserKarmaSnapshot{Karma: -10},
		Rules:  []Rule{rule},
		Now:    now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if decision.Limited {
		t.Fatal("expected no history to mean no quota to exhaust")
	}
}

func TestEvaluate_InvalidQuotaFailsClosed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule Rule
	}{
		{"zero items", commentRule(0, 1, UnitDays)},
		{"negative length", commentRule(1, -1, UnitDays)},
		{"unknown unit", commentRule(1, 1, "fortnights")},
		{"unknown field", commentRule(1, 1, UnitDays, Threshold{Field: "charisma", Op: CmpLT, Value: 3})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(EvalInput{
				Action:         ActionComment,
				OwnActionTimes: actionsAgo(now, time.Hour),
				Rules:          []Rule{tt.rule},
				Now:            now,
			})
			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
		})
	}
}

func TestEvaluate_IgnoresOtherActionTypes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	postRule := Rule{ActionType: ActionPost, ItemsPerTimeframe: 1, TimeframeLength: 1, TimeframeUnit: UnitWeeks}

	decision, err := Evaluate(EvalInput{
		Action:         ActionComment,
		OwnActionTimes: actionsAgo(now, time.Hour),
		Rules:          []Rule{postRule},
		Now:            now,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if decision.Limited {
		t.Fatal("expected post rules to never bind comment evaluations")
	}
}
