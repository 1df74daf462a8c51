package engine

import "fmt"

// ThresholdField names a numeric property of the user that a rule can test.
type ThresholdField string

const (
	FieldKarma         ThresholdField = "karma"
	FieldDownvoteRatio ThresholdField = "downvoteRatio"

	FieldLast20Karma        ThresholdField = "last20Karma"
	FieldLast20PostKarma    ThresholdField = "last20PostKarma"
	FieldLast20CommentKarma ThresholdField = "last20CommentKarma"

	FieldDownvoterCount        ThresholdField = "downvoterCount"
	FieldPostDownvoterCount    ThresholdField = "postDownvoterCount"
	FieldCommentDownvoterCount ThresholdField = "commentDownvoterCount"

	FieldLastMonthKarma          ThresholdField = "lastMonthKarma"
	FieldLastMonthDownvoterCount ThresholdField = "lastMonthDownvoterCount"
)

// Comparator is the comparison operator of a threshold.
type Comparator string

const (
	CmpLT  Comparator = "lt"
	CmpLTE Comparator = "lte"
	CmpGT  Comparator = "gt"
	CmpGTE Comparator = "gte"
	CmpEQ  Comparator = "eq"
)

// Threshold is one {field, comparator, value} predicate. A rule's thresholds
// combine with AND semantics.
type Threshold struct {
	Field ThresholdField `yaml:"field"`
	Op    Comparator     `yaml:"op"`
	Value float64        `yaml:"value"`
}

// Validate checks the field and comparator names.
func (t Threshold) Validate() error {
	if _, ok := fieldValue(t.Field, UserKarmaSnapshot{}, RecentActivityFeatures{}); !ok {
		return fmt.Errorf("unknown threshold field %q", t.Field)
	}
	switch t.Op {
	case CmpLT, CmpLTE, CmpGT, CmpGTE, CmpEQ:
		return nil
	default:
		return fmt.Errorf("unknown comparator %q", t.Op)
	}
}

// holds evaluates the predicate against the user's snapshot and features.
func (t Threshold) holds(karma UserKarmaSnapshot, features RecentActivityFeatures) (bool, error) {
	value, ok := fieldValue(t.Field, karma, features)
	if !ok {
		return false, &ConfigError{Reason: fmt.Sprintf("unknown threshold field %q", t.Field)}
	}
	switch t.Op {
	case CmpLT:
		return value < t.Value, nil
	case CmpLTE:
		return value <= t.Value, nil
	case CmpGT:
		return value > t.Value, nil
	case CmpGTE:
		return value >= t.Value, nil
	case CmpEQ:
		return value == t.Value, nil
	default:
		return false, &ConfigError{Reason: fmt.Sprintf("unknown comparator %q", t.Op)}
	}
}

func fieldValue(field ThresholdField, karma UserKarmaSnapshot, features RecentActivityFeatures) (float64, bool) {
	switch field {
	case FieldKarma:
		return float64(karma.Karma), true
	case FieldDownvoteRatio:
		return features.DownvoteRatio, true
	case FieldLast20Karma:
		return float64(features.Last20Karma), true
	case FieldLast20PostKarma:
		return float64(features.Last20PostKarma), true
	case FieldLast20CommentKarma:
		return float64(features.Last20CommentKarma), true
	case FieldDownvoterCount:
		return float64(features.DownvoterCount), true
	case FieldPostDownvoterCount:
		return float64(features.PostDownvoterCount), true
	case FieldCommentDownvoterCount:
		return float64(features.CommentDownvoterCount), true
	case FieldLastMonthKarma:
		return float64(features.LastMonthKarma), true
	case FieldLastMonthDownvoterCount:
		return float64(features.LastMonthDownvoterCount), true
	default:
		return 0, false
	}
}
