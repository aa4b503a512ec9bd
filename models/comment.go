package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PostID    string    `gorm:"not null;index;type:varchar(36)" json:"post_id"`
	UserID    *string   `gorm:"index;type:varchar(36)" json:"user_id"`
	SessionID *string   `json:"session_id,omitempty"`
	Text      string    `gorm:"not null;type:text" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
