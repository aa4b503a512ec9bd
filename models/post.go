package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// PostDuration is the paid visibility window bought by one checkout.
	PostDuration = 7 * 24 * time.Hour

	// ExpiringSoonWindow is how close to expiry a post is flagged for renewal.
	ExpiringSoonWindow = 48 * time.Hour

	// MaxImages bounds the image list on a single post.
	MaxImages = 6
)

// ReactionTally holds the per-post counters for the fixed reaction set.
type ReactionTally struct {
	Hot        int `json:"hot"`
	Interested int `json:"interested"`
	Watching   int `json:"watching"`
	Question   int `json:"question"`
	Deal       int `json:"deal"`
}

// Increment bumps the named counter. Returns false for an unknown key.
func (t *ReactionTally) Increment(key string) bool {
	switch key {
	case "hot":
		t.Hot++
	case "interested":
		t.Interested++
	case "watching":
		t.Watching++
	case "question":
		t.Question++
	case "deal":
		t.Deal++
	default:
		return false
	}
	return true
}

// ContactChannel is the closed set of ways a poster can be reached.
type ContactChannel string

const (
	ContactPhone    ContactChannel = "phone"
	ContactEmail    ContactChannel = "email"
	ContactWhatsapp ContactChannel = "whatsapp"
	ContactTelegram ContactChannel = "telegram"
	ContactOther    ContactChannel = "other"
)

type ContactEntry struct {
	Value   string `json:"value"`
	Visible bool   `json:"visible"`
}

type ContactInfo map[ContactChannel]ContactEntry

// VisibilityState classifies a post against wall-clock time.
type VisibilityState string

const (
	VisibilityActive       VisibilityState = "active"
	VisibilityExpiringSoon VisibilityState = "expiring_soon"
	VisibilityExpired      VisibilityState = "expired"
)

// Post is a paid, time-boxed classified ad. StripeSessionID is the payment
// token that authorized the post or its latest renewal; its unique index is
// the replay guard, so a token can never pay for two posts.
type Post struct {
	ID              string                           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string                           `gorm:"not null;index;type:varchar(36)" json:"user_id"`
	CityID          string                           `gorm:"not null;index;type:varchar(36)" json:"city_id"`
	CategoryID      string                           `gorm:"not null;index;type:varchar(36)" json:"category_id"`
	Title           string                           `gorm:"not null" json:"title"`
	Description     string                           `gorm:"not null;type:text" json:"description"`
	Price           *string                          `json:"price"`
	Location        string                           `json:"location"`
	Images          datatypes.JSONSlice[string]      `json:"images"`
	ContactInfo     datatypes.JSONType[ContactInfo]  `json:"contact_info"`
	Votes           int                              `gorm:"not null;default:0" json:"votes"`
	Reactions       datatypes.JSONType[ReactionTally] `json:"reactions"`
	StripePaymentID string                           `gorm:"not null" json:"stripe_payment_id"`
	StripeSessionID string                           `gorm:"not null;uniqueIndex" json:"stripe_session_id"`
	CreatedAt       time.Time                        `json:"created_at"`
	UpdatedAt       time.Time                        `json:"updated_at"`
	ExpiresAt       time.Time                        `gorm:"not null;index" json:"expires_at"`
	CommentsCloseAt time.Time                        `gorm:"not null" json:"comments_close_at"`
	IsActive        bool                             `gorm:"not null;default:true;index" json:"is_active"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Post) VisibilityState(now time.Time) VisibilityState {
	if !p.IsActive || !now.Before(p.ExpiresAt) {
		return VisibilityExpired
	}
	if p.ExpiresAt.Sub(now) < ExpiringSoonWindow {
		return VisibilityExpiringSoon
	}
	return VisibilityActive
}

// IsEditable reports whether the owner may still mutate non-engagement
// fields. Expired and deactivated posts are immutable except for renewal.
func (p *Post) IsEditable(now time.Time) bool {
	return p.VisibilityState(now) != VisibilityExpired
}

// CommentsOpen checks only the comment window, not the active flag; the
// comment handler enforces the active flag separately.
func (p *Post) CommentsOpen(now time.Time) bool {
	return now.Before(p.CommentsCloseAt)
}
