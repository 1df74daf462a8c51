package engine

import "time"

// ActionType identifies the kind of content a user is attempting to create.
type ActionType string

const (
	// ActionPost is a top-level post submission.
	ActionPost ActionType = "post"
	// ActionComment is a comment submission.
	ActionComment ActionType = "comment"
)

// ContentKind identifies what a vote was cast on.
type ContentKind string

const (
	// KindPost marks votes on posts.
	KindPost ContentKind = "post"
	// KindComment marks votes on comments.
	KindComment ContentKind = "comment"
)

// TimeframeUnit is the unit of a rule's quota timeframe.
type TimeframeUnit string

const (
	UnitMinutes TimeframeUnit = "minutes"
	UnitHours   TimeframeUnit = "hours"
	UnitDays    TimeframeUnit = "days"
	UnitWeeks   TimeframeUnit = "weeks"
)

// Duration converts a length in this unit to a time.Duration.
func (u TimeframeUnit) Duration(length int) (time.Duration, bool) {
	switch u {
	case UnitMinutes:
		return time.Duration(length) * time.Minute, true
	case UnitHours:
		return time.Duration(length) * time.Hour, true
	case UnitDays:
		return time.Duration(length) * 24 * time.Hour, true
	case UnitWeeks:
		return time.Duration(length) * 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// VoteEvent is one vote cast on one piece of content authored by the user
// being evaluated. All events that share a ContentID carry the same
// ContentPostedAt and ContentTotalKarma; the store supplies the content's
// current total karma so each content item is counted once no matter how
// many votes it received.
type VoteEvent struct {
	ContentID         string
	ContentKind       ContentKind
	ContentPostedAt   time.Time
	VoterID           string
	Power             int
	ContentTotalKarma int
}

// UserKarmaSnapshot holds the cumulative vote counters from a user's profile.
type UserKarmaSnapshot struct {
	Karma                  int
	SmallUpvotesReceived   int
	BigUpvotesReceived     int
	SmallDownvotesReceived int
	BigDownvotesReceived   int
	VotesReceived          int
}

// RecentActivityFeatures is the windowed aggregate of a user's recent
// vote-received history, derived per call and never stored.
type RecentActivityFeatures struct {
	Last20Karma        int
	Last20PostKarma    int
	Last20CommentKarma int

	DownvoterCount        int
	PostDownvoterCount    int
	CommentDownvoterCount int

	LastMonthKarma          int
	LastMonthDownvoterCount int

	DownvoteRatio float64
}

// Decision is the evaluator's output. When Limited is false, NextEligibleAt
// is the zero time and Rule is nil.
type Decision struct {
	Limited        bool
	NextEligibleAt time.Time
	Rule           *Rule
}
