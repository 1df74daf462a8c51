package engine

import (
	"sort"
	"time"
)

const (
	// recencyWindowItems is the size of the "last N content items" windows.
	recencyWindowItems = 20
	// monthWindow is the rolling calendar window for the lastMonth features.
	monthWindow = 30 * 24 * time.Hour
)

// contentRecord is the deduplicated representative of all votes on one
// content item.
type contentRecord struct {
	id         string
	kind       ContentKind
	postedAt   time.Time
	totalKarma int
	downvoters map[string]struct{}
}

// ComputeFeatures reduces a user's raw vote-received history into windowed
// aggregates. Events are deduplicated by content item before karma is
// summed; downvoter counts are distinct across all votes in the window.
// Votes the user cast on their own content are ignored. Zero events yields
// zero features.
func ComputeFeatures(userID string, events []VoteEvent, now time.Time) RecentActivityFeatures {
	records := dedupeByContent(userID, events)

	all := sortByRecency(records)
	posts := filterKind(all, KindPost)
	comments := filterKind(all, KindComment)

	// The three top-20 windows are independent: the 20 most recent posts
	// and 20 most recent comments are separate sets, and the combined
	// window is a third set over the union.
	last20Karma, downvoters := windowAggregate(all, recencyWindowItems)
	last20PostKarma, postDownvoters := windowAggregate(posts, recencyWindowItems)
	last20CommentKarma, commentDownvoters := windowAggregate(comments, recencyWindowItems)

	cutoff := now.Add(-monthWindow)
	var lastMonth []*contentRecord
	for _, record := range all {
		// Closed boundary: content posted exactly 30 days ago counts.
		if !record.postedAt.Before(cutoff) {
			lastMonth = append(lastMonth, record)
		}
	}
	lastMonthKarma, lastMonthDownvoters := windowAggregate(lastMonth, len(lastMonth))

	return RecentActivityFeatures{
		Last20Karma:             last20Karma,
		Last20PostKarma:         last20PostKarma,
		Last20CommentKarma:      last20CommentKarma,
		DownvoterCount:          downvoters,
		PostDownvoterCount:      postDownvoters,
		CommentDownvoterCount:   commentDownvoters,
		LastMonthKarma:          lastMonthKarma,
		LastMonthDownvoterCount: lastMonthDownvoters,
	}
}

// DownvoteRatio derives the share of received votes that were downvotes.
// When the per-strength counters disagree with the received total by more
// than 5% the counters are considered unreliable and the ratio reports 0.
func DownvoteRatio(karma UserKarmaSnapshot) float64 {
	received := karma.VotesReceived
	if received <= 0 {
		return 0
	}
	counted := karma.SmallUpvotesReceived + karma.BigUpvotesReceived +
		karma.SmallDownvotesReceived + karma.BigDownvotesReceived
	diff := counted - received
	if diff < 0 {
		diff = -diff
	}
	if float64(diff)/float64(received) > 0.05 {
		return 0
	}
	downvotes := karma.SmallDownvotesReceived + karma.BigDownvotesReceived
	return float64(downvotes) / float64(received)
}

func dedupeByContent(userID string, events []VoteEvent) map[string]*contentRecord {
	records := make(map[string]*contentRecord)
	for _, event := range events {
		if event.VoterID == userID {
			// Self-votes carry no signal about how others receive
			// the user's content.
			continue
		}
		record := records[event.ContentID]
		if record == nil {
			record = &contentRecord{
				id:         event.ContentID,
				kind:       event.ContentKind,
				postedAt:   event.ContentPostedAt,
				totalKarma: event.ContentTotalKarma,
				downvoters: make(map[string]struct{}),
			}
			records[event.ContentID] = record
		}
		if event.Power < 0 {
			record.downvoters[event.VoterID] = struct{}{}
		}
	}
	return records
}

// sortByRecency orders records newest-first. Equal timestamps fall back to
// content ID descending so the window is deterministic.
func sortByRecency(records map[string]*contentRecord) []*contentRecord {
	sorted := make([]*contentRecord, 0, len(records))
	for _, record := range records {
		sorted = append(sorted, record)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].postedAt.Equal(sorted[j].postedAt) {
			return sorted[i].id > sorted[j].id
		}
		return sorted[i].postedAt.After(sorted[j].postedAt)
	})
	return sorted
}

func filterKind(records []*contentRecord, kind ContentKind) []*contentRecord {
	var filtered []*contentRecord
	for _, record := range records {
		if record.kind == kind {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// windowAggregate sums total karma over the first limit records and counts
// the distinct downvoters among them.
func windowAggregate(records []*contentRecord, limit int) (karma int, downvoterCount int) {
	if limit > len(records) {
		limit = len(records)
	}
	downvoters := make(map[string]struct{})
	for _, record := range records[:limit] {
		karma += record.totalKarma
		for voter := range record.downvoters {
			downvoters[voter] = struct{}{}
		}
	}
	return karma, len(downvoters)
}
