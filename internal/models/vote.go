package models

import "time"

// Vote is one vote cast by a user on a post or comment. Exactly one of
// PostID and CommentID is set.
type Vote struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	VoterID   string  `gorm:"type:text;not null;index"` // Voting user ID.
	PostID    *string `gorm:"type:text;index"`          // Voted-on post, if any.
	CommentID *string `gorm:"type:text;index"`          // Voted-on comment, if any.

	Power int `gorm:"not null"` // Signed vote weight; negative is a downvote.

	CastAt time.Time `gorm:"not null;index"` // When the vote was cast.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
