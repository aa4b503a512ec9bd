package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dopelist/api-go/models"
)

// MetaController serves the static catalogues the browse UI is built from.
type MetaController struct {
	DB *gorm.DB
}

func NewMetaController(db *gorm.DB) *MetaController {
	return &MetaController{DB: db}
}

func (mc *MetaController) GetCities(c *gin.Context) {
	var cities []models.City
	if err := mc.DB.Order("name ASC").Find(&cities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching cities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

func (mc *MetaController) GetCategories(c *gin.Context) {
	query := mc.DB.Order("section ASC, name ASC")
	if section := c.Query("section"); section != "" {
		if !models.IsValidSection(section) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown section"})
			return
		}
		query = query.Where("section = ?", section)
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching categories"})
		return
	}

	grouped := make(map[string][]models.Category)
	for _, cat := range categories {
		grouped[cat.Section] = append(grouped[cat.Section], cat)
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories, "sections": grouped})
}
