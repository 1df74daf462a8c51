package admission

import (
	"context"
	"sync"
	"time"

	"github.com/quillboard/admission/internal/engine"
	log "github.com/sirupsen/logrus"
)

// reviewCacheTTL bounds how long a baseline decision pair stays comparable.
// Votes land in bursts; a stale baseline would compare against history that
// has already moved on.
const reviewCacheTTL = 5 * time.Minute

// reviewEntry is one user's cached decision pair.
type reviewEntry struct {
	post     engine.Decision
	comment  engine.Decision
	cachedAt time.Time
}

type reviewCache struct {
	mu      sync.Mutex
	entries map[string]reviewEntry
}

func newReviewCache() reviewCache {
	return reviewCache{entries: make(map[string]reviewEntry)}
}

func (c *reviewCache) get(userID string, now time.Time) (reviewEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.entries {
		if now.Sub(entry.cachedAt) > reviewCacheTTL {
			delete(c.entries, id)
		}
	}
	entry, ok := c.entries[userID]
	return entry, ok
}

func (c *reviewCache) put(userID string, entry reviewEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry
}

// ObserveVote recomputes the content author's decisions after a vote landed
// on their content. The first observation within the cache window records a
// baseline; subsequent ones report whether the author's limits tightened
// since that baseline, so moderators can be pointed at users whose standing
// just degraded.
func (s *Service) ObserveVote(ctx context.Context, authorID string) (bool, error) {
	now := s.nowFn().UTC()
	previous, hasPrevious := s.reviews.get(authorID, now)

	postDecision, errPost := s.CheckPost(ctx, authorID)
	if errPost != nil {
		return false, errPost
	}
	commentDecision, errComment := s.CheckComment(ctx, authorID, "")
	if errComment != nil {
		return false, errComment
	}
	current := reviewEntry{post: postDecision, comment: commentDecision, cachedAt: now}
	s.reviews.put(authorID, current)

	if !hasPrevious {
		return false, nil
	}
	stricter := decisionStricter(current.post, previous.post) ||
		decisionStricter(current.comment, previous.comment)
	if stricter {
		log.WithField("user_id", authorID).Info("rate limits tightened after vote; flagging user for review")
	}
	return stricter, nil
}

// decisionStricter reports whether the new decision pushes the next eligible
// time further out than the old one did.
func decisionStricter(newDecision, oldDecision engine.Decision) bool {
	if !newDecision.Limited {
		return false
	}
	if !oldDecision.Limited {
		return true
	}
	return newDecision.NextEligibleAt.After(oldDecision.NextEligibleAt)
}
