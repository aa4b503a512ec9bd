package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an identity that owns content and performs actions. Anonymous
// identities carry no email or password; they are minted on first visit and
// superseded (never deleted) when the same browser session authenticates.
type User struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Email         *string        `gorm:"uniqueIndex" json:"email,omitempty"`
	Password      *string        `json:"-"` // Don't expose password in JSON
	IsAnonymous   bool           `gorm:"not null;default:false" json:"is_anonymous"`
	Posts         []Post         `json:"-" gorm:"foreignKey:UserID"`
	Comments      []Comment      `json:"-" gorm:"foreignKey:UserID"`
	Votes         []Vote         `json:"-" gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type RefreshToken struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         string    `gorm:"not null;index;type:varchar(36)" json:"user_id"`
	Token          string    `gorm:"not null;uniqueIndex" json:"-"`
	ExpirationDate time.Time `gorm:"not null" json:"expiration_date"`
	CreatedAt      time.Time `json:"created_at"`
}
