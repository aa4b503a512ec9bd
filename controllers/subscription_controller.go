package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dopelist/api-go/models"
	"github.com/dopelist/api-go/utils"
)

type SubscriptionController struct {
	DB *gorm.DB
}

func NewSubscriptionController(db *gorm.DB) *SubscriptionController {
	return &SubscriptionController{DB: db}
}

// GetSubscription reports the caller's subscription tier. A user with no
// billing linkage simply has a null subscription, not an error.
func (sc *SubscriptionController) GetSubscription(c *gin.Context) {
	claims := utils.GetUser(c)

	var customer models.StripeCustomer
	err := sc.DB.Where("user_id = ?", claims.UserID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"subscription": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching subscription"})
		return
	}

	var subscription models.StripeSubscription
	err = sc.DB.Where("customer_id = ?", customer.CustomerID).First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"subscription": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// GetOrders lists the caller's one-off payments, newest first.
func (sc *SubscriptionController) GetOrders(c *gin.Context) {
	claims := utils.GetUser(c)

	var customer models.StripeCustomer
	err := sc.DB.Where("user_id = ?", claims.UserID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"orders": []models.StripeOrder{}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
		return
	}

	var orders []models.StripeOrder
	err = sc.DB.Where("customer_id = ?", customer.CustomerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
