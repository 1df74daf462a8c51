package catalog

import (
	"fmt"

	"github.com/quillboard/admission/internal/engine"
)

// Forum types with a bundled catalog.
const (
	// ForumTypeStandard throttles new and recently downvoted users.
	ForumTypeStandard = "standard"
	// ForumTypeStrict adds tighter limits for heavily downvoted accounts.
	ForumTypeStrict = "strict"
)

// Builtin returns the bundled catalog for a forum type. Deployments without
// a catalog file run on one of these.
func Builtin(forumType string) (Catalog, error) {
	switch forumType {
	case ForumTypeStandard:
		return New(standardRules()), nil
	case ForumTypeStrict:
		return New(append(standardRules(), strictRules()...)), nil
	default:
		return Catalog{}, fmt.Errorf("unknown forum type %q", forumType)
	}
}

func standardRules() []engine.Rule {
	return []engine.Rule{
		{
			ActionType:        engine.ActionPost,
			ItemsPerTimeframe: 1,
			TimeframeLength:   1,
			TimeframeUnit:     engine.UnitDays,
			Thresholds:        []engine.Threshold{{Field: engine.FieldKarma, Op: engine.CmpLT, Value: 5}},
			PriorityClass:     "newUserDefault",
			Message:           "New users can submit one post a day.",
		},
		{
			ActionType:        engine.ActionComment,
			ItemsPerTimeframe: 3,
			TimeframeLength:   1,
			TimeframeUnit:     engine.UnitDays,
			Thresholds:        []engine.Threshold{{Field: engine.FieldKarma, Op: engine.CmpLT, Value: 5}},
			PriorityClass:     "newUserDefault",
			Message:           "New users can write up to 3 comments a day.",
		},
		{
			ActionType:        engine.ActionPost,
			ItemsPerTimeframe: 1,
			TimeframeLength:   1,
			TimeframeUnit:     engine.UnitWeeks,
			Thresholds: []engine.Threshold{
				{Field: engine.FieldLast20Karma, Op: engine.CmpLT, Value: 0},
				{Field: engine.FieldDownvoterCount, Op: engine.CmpGTE, Value: 3},
			},
			PriorityClass: "lowKarma",
			Message:       "Users with negative recent karma can post once a week.",
		},
		{
			ActionType:        engine.ActionComment,
			ItemsPerTimeframe: 1,
			TimeframeLength:   1,
			TimeframeUnit:     engine.UnitDays,
			Thresholds: []engine.Threshold{
				{Field: engine.FieldLast20CommentKarma, Op: engine.CmpLT, Value: 0},
				{Field: engine.FieldCommentDownvoterCount, Op: engine.CmpGTE, Value: 3},
			},
			PriorityClass: "lowKarma",
			Message:       "Users with negative recent comment karma can comment once a day.",
		},
	}
}

func strictRules() []engine.Rule {
	return []engine.Rule{
		{
			ActionType:        engine.ActionComment,
			ItemsPerTimeframe: 1,
			TimeframeLength:   1,
			TimeframeUnit:     engine.UnitWeeks,
			Thresholds: []engine.Threshold{
				{Field: engine.FieldKarma, Op: engine.CmpLT, Value: 0},
				{Field: engine.FieldLastMonthKarma, Op: engine.CmpLTE, Value: -30},
				{Field: engine.FieldLastMonthDownvoterCount, Op: engine.CmpGTE, Value: 5},
			},
			PriorityClass: "veryLowKarma",
			Message:       "Heavily downvoted users can comment once a week.",
		},
		{
			ActionType:        engine.ActionComment,
			ItemsPerTimeframe: 4,
			TimeframeLength:   30,
			TimeframeUnit:     engine.UnitMinutes,
			AppliesToOwnPosts: true,
			Thresholds: []engine.Threshold{
				{Field: engine.FieldDownvoteRatio, Op: engine.CmpGT, Value: 0.3},
			},
			PriorityClass: "downvoteRatio",
			Message:       "Users with a high downvote ratio can write up to 4 comments per half hour.",
		},
	}
}
