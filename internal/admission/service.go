// Package admission wires the content stores, the rule catalog, and the
// evaluation engine together into the write-path admission check.
package admission

import (
	"context"
	"time"

	"github.com/quillboard/admission/internal/catalog"
	"github.com/quillboard/admission/internal/engine"
	"github.com/quillboard/admission/internal/store"
	log "github.com/sirupsen/logrus"
)

// voteHistoryLookback bounds how far back vote events are fetched for the
// feature windows. The 20-item windows apply on top of whatever this
// returns, so the bound only needs to be generous.
const voteHistoryLookback = 180 * 24 * time.Hour

// Service runs admission checks. It holds no mutable state besides the
// review cache; each check is an independent computation over fresh reads.
type Service struct {
	store   *store.Store
	catalog catalog.Catalog
	nowFn   func() time.Time

	reviews reviewCache
}

// NewService constructs a Service. A nil nowFn defaults to time.Now.
func NewService(st *store.Store, cat catalog.Catalog, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		store:   st,
		catalog: cat,
		nowFn:   nowFn,
		reviews: newReviewCache(),
	}
}

// CheckPost decides whether the user may create a post right now.
func (s *Service) CheckPost(ctx context.Context, userID string) (engine.Decision, error) {
	return s.check(ctx, userID, engine.ActionPost, "")
}

// CheckComment decides whether the user may comment right now, optionally on
// a specific post.
func (s *Service) CheckComment(ctx context.Context, userID, postID string) (engine.Decision, error) {
	return s.check(ctx, userID, engine.ActionComment, postID)
}

func (s *Service) check(ctx context.Context, userID string, action engine.ActionType, postID string) (engine.Decision, error) {
	now := s.nowFn().UTC()

	exempt, errExempt := s.store.IsExempt(ctx, userID, now)
	if errExempt != nil {
		return engine.Decision{}, errExempt
	}
	if !exempt && action == engine.ActionComment && postID != "" {
		waived, errWaived := s.store.PostIgnoresRateLimits(ctx, postID)
		if errWaived != nil {
			return engine.Decision{}, errWaived
		}
		exempt = waived
	}
	if exempt {
		return engine.Decision{}, nil
	}

	manualLimits, errManual := s.store.ActiveManualLimits(ctx, userID, action, now)
	if errManual != nil {
		return engine.Decision{}, errManual
	}
	manualRules, errCompile := CompileManualRules(action, manualLimits)
	if errCompile != nil {
		// A broken manual limit fails closed like any other config error.
		log.WithError(errCompile).WithField("user_id", userID).Error("invalid manual rate limit; denying action")
		return engine.Decision{}, errCompile
	}
	rules := append(s.catalog.ForAction(action), manualRules...)

	lookback := s.catalog.MaxLookback()
	for _, rule := range manualRules {
		if timeframe, errTimeframe := rule.Timeframe(); errTimeframe == nil && timeframe > lookback {
			lookback = timeframe
		}
	}

	times, errTimes := s.store.OwnActionTimes(ctx, userID, action, now.Add(-lookback))
	if errTimes != nil {
		return engine.Decision{}, errTimes
	}
	events, errEvents := s.store.RecentVoteEvents(ctx, userID, now.Add(-voteHistoryLookback))
	if errEvents != nil {
		return engine.Decision{}, errEvents
	}
	snapshot, errSnapshot := s.store.KarmaSnapshot(ctx, userID)
	if errSnapshot != nil {
		return engine.Decision{}, errSnapshot
	}
	features := engine.ComputeFeatures(userID, events, now)
	features.DownvoteRatio = engine.DownvoteRatio(snapshot)

	isReplyToOwn := false
	if action == engine.ActionComment && postID != "" {
		var errAuthored error
		isReplyToOwn, errAuthored = s.store.PostAuthoredBy(ctx, postID, userID)
		if errAuthored != nil {
			return engine.Decision{}, errAuthored
		}
	}

	decision, errEvaluate := engine.Evaluate(engine.EvalInput{
		Action:              action,
		Karma:               snapshot,
		Features:            features,
		OwnActionTimes:      times,
		IsReplyToOwnContent: isReplyToOwn,
		Rules:               rules,
		Now:                 now,
	})
	if errEvaluate != nil {
		log.WithError(errEvaluate).WithField("user_id", userID).Error("admission evaluation failed; denying action")
		return engine.Decision{}, errEvaluate
	}
	if decision.Limited {
		log.WithFields(log.Fields{
			"user_id":       userID,
			"action":        action,
			"rule":          decision.Rule.Name(),
			"next_eligible": decision.NextEligibleAt,
		}).Debug("action rate limited")
	}
	return decision, nil
}
