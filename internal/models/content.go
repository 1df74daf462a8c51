package models

import "time"

// Post is a top-level submission. Karma caches the sum of all vote powers on
// the post, maintained by the voting pipeline.
type Post struct {
	ID string `gorm:"primaryKey;type:text"` // Primary key.

	AuthorID string `gorm:"type:text;not null;index"` // Authoring user ID.
	Title    string `gorm:"type:text"`                // Post title.

	PostedAt time.Time `gorm:"not null;index"`         // Publication timestamp.
	Draft    bool      `gorm:"not null;default:false"` // Drafts never count against quotas.

	// IgnoreRateLimits exempts all commenters on this post.
	IgnoreRateLimits bool `gorm:"not null;default:false"`

	Karma int `gorm:"not null;default:0"` // Cached total karma.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Comment is a reply on a post. Karma caches the sum of all vote powers on
// the comment.
type Comment struct {
	ID string `gorm:"primaryKey;type:text"` // Primary key.

	AuthorID string `gorm:"type:text;not null;index"` // Authoring user ID.
	PostID   string `gorm:"type:text;not null;index"` // Parent post ID.

	PostedAt time.Time `gorm:"not null;index"` // Publication timestamp.

	Karma int `gorm:"not null;default:0"` // Cached total karma.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
