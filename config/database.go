package config

import (
	"log"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dopelist/api-go/models"
)

// InitDB opens the database named by DATABASE_URL and runs migrations.
// A postgres:// URL selects Postgres; sqlite://<path> selects SQLite, which
// is also the default for local development. TranslateError is on so unique
// violations surface as gorm.ErrDuplicatedKey on either dialect — the
// payment-token replay guard depends on that.
func InitDB() *gorm.DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "sqlite://dopelist.db"
		log.Println("DATABASE_URL not set, defaulting to 'sqlite://dopelist.db'")
	}

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dbURL, "postgres://"):
		dialector = postgres.Open(dbURL)
	case strings.HasPrefix(dbURL, "sqlite://"):
		dialector = sqlite.Open(strings.TrimPrefix(dbURL, "sqlite://"))
	default:
		log.Fatalf("Invalid DATABASE_URL prefix. Must start with 'postgres://' or 'sqlite://'")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.City{},
		&models.Category{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
		&models.Reaction{},
		&models.StripeCustomer{},
		&models.StripeSubscription{},
		&models.StripeOrder{},
	)
}

// Seed fills the city and category catalogues when empty.
func Seed(db *gorm.DB) error {
	var cityCount int64
	if err := db.Model(&models.City{}).Count(&cityCount).Error; err != nil {
		return err
	}
	if cityCount == 0 {
		cities := []string{
			"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
			"Philadelphia", "San Antonio", "San Diego", "Dallas", "Austin",
			"Seattle", "Denver", "Portland", "Miami", "Atlanta",
		}
		for _, name := range cities {
			city := models.City{
				ID:   uuid.NewString(),
				Name: name,
				Slug: slugify(name),
			}
			if err := db.Create(&city).Error; err != nil {
				return err
			}
		}
	}

	var categoryCount int64
	if err := db.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		return err
	}
	if categoryCount == 0 {
		type seedCategory struct {
			section, name, icon string
		}
		categories := []seedCategory{
			{"community", "activities", "🎨"},
			{"community", "lost+found", "🔍"},
			{"community", "rideshare", "🚗"},
			{"for_sale", "furniture", "🛋️"},
			{"for_sale", "electronics", "📱"},
			{"for_sale", "bikes", "🚲"},
			{"for_sale", "free stuff", "🎁"},
			{"housing", "apartments", "🏢"},
			{"housing", "rooms", "🚪"},
			{"housing", "sublets", "🔑"},
			{"jobs", "full-time", "💼"},
			{"jobs", "part-time", "⏰"},
			{"services", "skilled trades", "🔧"},
			{"services", "creative", "🎭"},
			{"gigs", "labor", "💪"},
			{"gigs", "computer", "💻"},
			{"discussion", "general", "💭"},
			{"events", "upcoming", "🎉"},
			{"resumes", "resumes", "📄"},
		}
		for _, cat := range categories {
			category := models.Category{
				ID:      uuid.NewString(),
				Section: cat.section,
				Name:    cat.name,
				Slug:    cat.section + "-" + slugify(cat.name),
				Icon:    cat.icon,
			}
			if err := db.Create(&category).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "+", "-")
	return s
}
