package models

import "time"

// Vote records that a user has upvoted a complaint. The composite
// primary key is the uniqueness guard: the database rejects a second
// vote for the same (user, complaint) pair, so the upvote counter and
// the vote set cannot drift apart.
type Vote struct {
	UserID      string    `gorm:"primaryKey;type:uuid" json:"user_id"`
	ComplaintID string    `gorm:"primaryKey;type:uuid" json:"complaint_id"`
	CreatedAt   time.Time `json:"created_at"`
}
