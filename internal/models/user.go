package models

import "time"

// User represents a forum member profile row. The vote-received counters are
// denormalized by the voting pipeline and only read here.
type User struct {
	ID string `gorm:"primaryKey;type:text"` // Primary key.

	DisplayName string `gorm:"type:text"` // Public display name.

	Karma                  int `gorm:"not null;default:0"` // Cumulative karma.
	SmallUpvotesReceived   int `gorm:"not null;default:0"` // Lifetime small upvotes received.
	BigUpvotesReceived     int `gorm:"not null;default:0"` // Lifetime big upvotes received.
	SmallDownvotesReceived int `gorm:"not null;default:0"` // Lifetime small downvotes received.
	BigDownvotesReceived   int `gorm:"not null;default:0"` // Lifetime big downvotes received.
	VotesReceived          int `gorm:"not null;default:0"` // Lifetime votes received, all strengths.

	IsAdmin     bool `gorm:"not null;default:false"` // Admins bypass rate limits.
	IsModerator bool `gorm:"not null;default:false"` // Moderators bypass rate limits.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
