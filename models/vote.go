package models

import (
	"time"
)

// Vote is one identity's +1/-1 on a post. The composite unique index gives
// the upsert semantics: at most one row per (post, identity).
type Vote struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    string    `gorm:"not null;uniqueIndex:idx_votes_post_user;type:varchar(36)" json:"post_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_votes_post_user;type:varchar(36)" json:"user_id"`
	SessionID *string   `json:"session_id,omitempty"`
	Value     int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reaction records one reaction click. There is deliberately no dedup: the
// same identity may react any number of times. Rows exist so account merges
// can re-own them; the per-post counters live in Post.Reactions.
type Reaction struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    string    `gorm:"not null;index;type:varchar(36)" json:"post_id"`
	UserID    *string   `gorm:"index;type:varchar(36)" json:"user_id"`
	Key       string    `gorm:"not null;type:varchar(20)" json:"key"`
	CreatedAt time.Time `json:"created_at"`
}
