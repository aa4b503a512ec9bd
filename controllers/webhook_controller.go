package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/dopelist/api-go/config"
	"github.com/dopelist/api-go/models"
)

// WebhookController receives Stripe events and mirrors billing state
// (customer linkage, subscription tier, order history) into the database.
type WebhookController struct {
	DB     *gorm.DB
	Stripe *config.StripeConfig
}

func NewWebhookController(db *gorm.DB, cfg *config.StripeConfig) *WebhookController {
	return &WebhookController{DB: db, Stripe: cfg}
}

func (wc *WebhookController) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), wc.Stripe.WebhookSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event data"})
			return
		}
		wc.handleCheckoutCompleted(&session)
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event data"})
			return
		}
		wc.handleSubscriptionChanged(&subscription)
	default:
		// Other event types are acknowledged and ignored.
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (wc *WebhookController) handleCheckoutCompleted(session *stripe.CheckoutSession) {
	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}

	// Link the paying identity to its customer, once.
	if customerID != "" && session.ClientReferenceID != "" {
		var existing models.StripeCustomer
		err := wc.DB.Where("user_id = ?", session.ClientReferenceID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = wc.DB.Create(&models.StripeCustomer{
				UserID:     session.ClientReferenceID,
				CustomerID: customerID,
			}).Error
			if err != nil {
				log.Printf("webhook: linking customer %s: %v", customerID, err)
			}
		}
	}

	if session.Mode == stripe.CheckoutSessionModePayment && customerID != "" {
		paymentIntentID := ""
		if session.PaymentIntent != nil {
			paymentIntentID = session.PaymentIntent.ID
		}
		order := models.StripeOrder{
			CheckoutSessionID: session.ID,
			PaymentIntentID:   paymentIntentID,
			CustomerID:        customerID,
			AmountSubtotal:    session.AmountSubtotal,
			AmountTotal:       session.AmountTotal,
			Currency:          string(session.Currency),
			PaymentStatus:     string(session.PaymentStatus),
			Status:            "completed",
		}
		if err := wc.DB.Create(&order).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("webhook: recording order for session %s: %v", session.ID, err)
		}
	}
}

func (wc *WebhookController) handleSubscriptionChanged(subscription *stripe.Subscription) {
	if subscription.Customer == nil {
		return
	}

	var priceID *string
	if len(subscription.Items.Data) > 0 && subscription.Items.Data[0].Price != nil {
		id := subscription.Items.Data[0].Price.ID
		priceID = &id
	}

	subID := subscription.ID
	start := subscription.CurrentPeriodStart
	end := subscription.CurrentPeriodEnd

	record := models.StripeSubscription{
		CustomerID:         subscription.Customer.ID,
		SubscriptionID:     &subID,
		PriceID:            priceID,
		Status:             string(subscription.Status),
		CurrentPeriodStart: &start,
		CurrentPeriodEnd:   &end,
		CancelAtPeriodEnd:  subscription.CancelAtPeriodEnd,
	}

	var existing models.StripeSubscription
	err := wc.DB.Where("customer_id = ?", subscription.Customer.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := wc.DB.Create(&record).Error; err != nil {
			log.Printf("webhook: creating subscription for %s: %v", subscription.Customer.ID, err)
		}
		return
	}
	if err != nil {
		log.Printf("webhook: loading subscription for %s: %v", subscription.Customer.ID, err)
		return
	}

	record.ID = existing.ID
	if err := wc.DB.Save(&record).Error; err != nil {
		log.Printf("webhook: updating subscription for %s: %v", subscription.Customer.ID, err)
	}
}
