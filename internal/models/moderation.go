package models

import (
	"time"

	"gorm.io/datatypes"
)

// Moderator action types consulted by the admission service.
const (
	// ModActionRateLimitExempt marks a user exempt from all automatic
	// rate limits while active.
	ModActionRateLimitExempt = "exemptFromRateLimits"
)

// ModeratorAction records a moderation flag applied to a user. A nil EndedAt
// means the action has no expiry.
type ModeratorAction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID string `gorm:"type:text;not null;index"` // Affected user ID.
	Type   string `gorm:"type:text;not null;index"` // Action type.

	Metadata datatypes.JSON `gorm:"type:json"` // Free-form moderator notes.

	EndedAt *time.Time `gorm:"index"` // Expiry, if any.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// ManualRateLimit is a moderator-assigned rate limit on one user and action
// type. It compiles into a threshold-free rule at evaluation time.
type ManualRateLimit struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID     string `gorm:"type:text;not null;index"` // Limited user ID.
	ActionType string `gorm:"type:text;not null"`       // "post" or "comment".

	IntervalLength     int    `gorm:"not null"`           // Quota window length.
	IntervalUnit       string `gorm:"type:text;not null"` // Quota window unit.
	ActionsPerInterval int    `gorm:"not null"`           // Allowed actions per window.

	EndedAt *time.Time `gorm:"index"` // Expiry, if any.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
