// Package store provides the read-side queries the admission service needs.
// The engine itself never touches the database; this package materializes
// its inputs.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quillboard/admission/internal/engine"
	"github.com/quillboard/admission/internal/models"
	"gorm.io/gorm"
)

// Store reads vote history, action history, and moderation state.
type Store struct {
	db *gorm.DB
}

// New constructs a Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// voteRow is the flattened join of a vote and its voted-on content.
type voteRow struct {
	ContentID string
	PostedAt  time.Time
	Karma     int
	VoterID   string
	Power     int
}

// RecentVoteEvents returns all votes cast on content the user authored at or
// after the cutoff, posts and comments combined. The cached content karma
// rides along so each content item carries a consistent total.
func (s *Store) RecentVoteEvents(ctx context.Context, userID string, since time.Time) ([]engine.VoteEvent, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store: not initialized")
	}

	var postRows []voteRow
	if errFind := s.db.WithContext(ctx).
		Table("votes").
		Select("posts.id AS content_id, posts.posted_at, posts.karma, votes.voter_id, votes.power").
		Joins("JOIN posts ON posts.id = votes.post_id").
		Where("posts.author_id = ? AND posts.draft = ? AND posts.posted_at >= ?", userID, false, since).
		Scan(&postRows).Error; errFind != nil {
		return nil, fmt.Errorf("store: load post votes: %w", errFind)
	}

	var commentRows []voteRow
	if errFind := s.db.WithContext(ctx).
		Table("votes").
		Select("comments.id AS content_id, comments.posted_at, comments.karma, votes.voter_id, votes.power").
		Joins("JOIN comments ON comments.id = votes.comment_id").
		Where("comments.author_id = ? AND comments.posted_at >= ?", userID, since).
		Scan(&commentRows).Error; errFind != nil {
		return nil, fmt.Errorf("store: load comment votes: %w", errFind)
	}

	events := make([]engine.VoteEvent, 0, len(postRows)+len(commentRows))
	for _, row := range postRows {
		events = append(events, rowToEvent(row, engine.KindPost))
	}
	for _, row := range commentRows {
		events = append(events, rowToEvent(row, engine.KindComment))
	}
	return events, nil
}

func rowToEvent(row voteRow, kind engine.ContentKind) engine.VoteEvent {
	return engine.VoteEvent{
		ContentID:         row.ContentID,
		ContentKind:       kind,
		ContentPostedAt:   row.PostedAt,
		VoterID:           row.VoterID,
		Power:             row.Power,
		ContentTotalKarma: row.Karma,
	}
}

// OwnActionTimes returns the user's own publication timestamps of the given
// action type since the cutoff, most-recent-first. Drafts never count.
func (s *Store) OwnActionTimes(ctx context.Context, userID string, action engine.ActionType, since time.Time) ([]time.Time, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store: not initialized")
	}
	var times []time.Time
	switch action {
	case engine.ActionPost:
		if errFind := s.db.WithContext(ctx).
			Model(&models.Post{}).
			Where("author_id = ? AND draft = ? AND posted_at >= ?", userID, false, since).
			Order("posted_at DESC").
			Pluck("posted_at", &times).Error; errFind != nil {
			return nil, fmt.Errorf("store: load post times: %w", errFind)
		}
	case engine.ActionComment:
		if errFind := s.db.WithContext(ctx).
			Model(&models.Comment{}).
			Where("author_id = ? AND posted_at >= ?", userID, since).
			Order("posted_at DESC").
			Pluck("posted_at", &times).Error; errFind != nil {
			return nil, fmt.Errorf("store: load comment times: %w", errFind)
		}
	default:
		return nil, fmt.Errorf("store: unknown action type %q", action)
	}
	return times, nil
}

// KarmaSnapshot loads the user's cumulative vote counters. A missing user is
// not an error: it reads as an empty snapshot.
func (s *Store) KarmaSnapshot(ctx context.Context, userID string) (engine.UserKarmaSnapshot, error) {
	if s == nil || s.db == nil {
		return engine.UserKarmaSnapshot{}, errors.New("store: not initialized")
	}
	var user models.User
	if errFind := s.db.WithContext(ctx).
		Where("id = ?", userID).
		Take(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return engine.UserKarmaSnapshot{}, nil
		}
		return engine.UserKarmaSnapshot{}, fmt.Errorf("store: load user: %w", errFind)
	}
	return engine.UserKarmaSnapshot{
		Karma:                  user.Karma,
		SmallUpvotesReceived:   user.SmallUpvotesReceived,
		BigUpvotesReceived:     user.BigUpvotesReceived,
		SmallDownvotesReceived: user.SmallDownvotesReceived,
		BigDownvotesReceived:   user.BigDownvotesReceived,
		VotesReceived:          user.VotesReceived,
	}, nil
}

// ActiveManualLimits returns the user's unexpired moderator-assigned limits
// for one action type, newest first.
func (s *Store) ActiveManualLimits(ctx context.Context, userID string, action engine.ActionType, now time.Time) ([]models.ManualRateLimit, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store: not initialized")
	}
	var limits []models.ManualRateLimit
	if errFind := s.db.WithContext(ctx).
		Model(&models.ManualRateLimit{}).
		Where("user_id = ? AND action_type = ?", userID, string(action)).
		Where("ended_at IS NULL OR ended_at > ?", now).
		Order("created_at DESC").
		Find(&limits).Error; errFind != nil {
		return nil, fmt.Errorf("store: load manual limits: %w", errFind)
	}
	return limits, nil
}

// IsExempt reports whether the user bypasses rate limits entirely: admins,
// moderators, and users with an active exemption action.
func (s *Store) IsExempt(ctx context.Context, userID string, now time.Time) (bool, error) {
	if s == nil || s.db == nil {
		return false, errors.New("store: not initialized")
	}
	var user models.User
	if errFind := s.db.WithContext(ctx).
		Where("id = ?", userID).
		Take(&user).Error; errFind != nil && !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("store: load user: %w", errFind)
	}
	if user.IsAdmin || user.IsModerator {
		return true, nil
	}
	var count int64
	if errCount := s.db.WithContext(ctx).
		Model(&models.ModeratorAction{}).
		Where("user_id = ? AND type = ?", userID, models.ModActionRateLimitExempt).
		Where("ended_at IS NULL OR ended_at > ?", now).
		Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("store: load exemptions: %w", errCount)
	}
	return count > 0, nil
}

// PostAuthoredBy reports whether the post exists and is authored by the
// user. An empty or unknown post ID reads as false.
func (s *Store) PostAuthoredBy(ctx context.Context, postID, userID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, errors.New("store: not initialized")
	}
	if strings.TrimSpace(postID) == "" {
		return false, nil
	}
	var post models.Post
	if errFind := s.db.WithContext(ctx).
		Select("id", "author_id").
		Where("id = ?", postID).
		Take(&post).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("store: load post: %w", errFind)
	}
	return post.AuthorID == userID, nil
}

// PostIgnoresRateLimits reports whether the post waives commenter limits.
func (s *Store) PostIgnoresRateLimits(ctx context.Context, postID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, errors.New("store: not initialized")
	}
	if strings.TrimSpace(postID) == "" {
		return false, nil
	}
	var post models.Post
	if errFind := s.db.WithContext(ctx).
		Select("id", "ignore_rate_limits").
		Where("id = ?", postID).
		Take(&post).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("store: load post: %w", errFind)
	}
	return post.IgnoreRateLimits, nil
}
