package models

import "time"

type City struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Section values are fixed; see SectionSlugs.
type Category struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Section   string    `gorm:"not null;index;type:varchar(20)" json:"section"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

var SectionSlugs = []string{
	"community",
	"for_sale",
	"housing",
	"jobs",
	"services",
	"gigs",
	"discussion",
	"events",
	"resumes",
}

func IsValidSection(s string) bool {
	for _, slug := range SectionSlugs {
		if slug == s {
			return true
		}
	}
	return false
}
