package controllers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dopelist/api-go/config"
	"github.com/dopelist/api-go/models"
)

func paymentRouter(db *gorm.DB, checkout CheckoutClient, userID string) *gin.Engine {
	pc := NewPaymentController(db, &config.StripeConfig{
		PostPriceID:         "price_post",
		SubscriptionPriceID: "price_sub",
		SuccessURL:          "https://dopelist.example/success",
		CancelURL:           "https://dopelist.example/cancel",
	}, checkout)

	r := gin.New()
	r.Use(authAs(userID, false))
	r.POST("/api/checkout", pc.StartCheckout)
	r.POST("/api/payments/verify", pc.VerifyPayment)
	r.POST("/api/posts/:id/renew", pc.RenewPost)
	return r
}

func validPostData() map[string]interface{} {
	return map[string]interface{}{
		"cityId":      "c1",
		"categoryId":  "cat1",
		"title":       "Bike",
		"description": "Good bike",
		"location":    "Downtown",
		"images":      []string{},
	}
}

func TestVerifyPaymentCreatesPost(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	router := paymentRouter(db, nil, user.ID)

	before := time.Now()
	w := doJSON(t, router, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"sessionId": "demo_1",
		"postData":  validPostData(),
	})
	requireStatus(t, w, http.StatusOK)

	var post models.Post
	require.NoError(t, db.First(&post, "stripe_session_id = ?", "demo_1").Error)
	assert.Equal(t, user.ID, post.UserID)
	assert.True(t, post.IsActive)
	assert.Equal(t, 0, post.Votes)
	assert.Equal(t, models.ReactionTally{}, post.Reactions.Data())
	assert.WithinDuration(t, before.Add(models.PostDuration), post.ExpiresAt, 5*time.Second)
	assert.WithinDuration(t, post.ExpiresAt, post.CommentsCloseAt, time.Second)
}

func TestVerifyPaymentReplayRejected(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	router := paymentRouter(db, nil, user.ID)

	payload := map[string]interface{}{
		"sessionId": "demo_1",
		"postData":  validPostData(),
	}
	requireStatus(t, doJSON(t, router, http.MethodPost, "/api/payments/verify", payload), http.StatusOK)

	w := doJSON(t, router, http.MethodPost, "/api/payments/verify", payload)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "already used")

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVerifyPaymentUnpaidSession(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	checkout := newFakeCheckout()
	checkout.sessions["cs_test_unpaid"] = &CheckoutSession{ID: "cs_test_unpaid", PaymentStatus: "unpaid"}
	router := paymentRouter(db, checkout, user.ID)

	w := doJSON(t, router, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"sessionId": "cs_test_unpaid",
		"postData":  validPostData(),
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "Payment not completed")

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVerifyPaymentPaidSessionStoresIntent(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	checkout := newFakeCheckout()
	checkout.sessions["cs_test_paid"] = &CheckoutSession{
		ID:              "cs_test_paid",
		PaymentStatus:   "paid",
		PaymentIntentID: "pi_123",
	}
	router := paymentRouter(db, checkout, user.ID)

	w := doJSON(t, router, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"sessionId": "cs_test_paid",
		"postData":  validPostData(),
	})
	requireStatus(t, w, http.StatusOK)

	var post models.Post
	require.NoError(t, db.First(&post, "stripe_session_id = ?", "cs_test_paid").Error)
	assert.Equal(t, "pi_123", post.StripePaymentID)
}

func TestVerifyPaymentDemoTokenBypassesProvider(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	// Provider configured but knows nothing about demo tokens.
	router := paymentRouter(db, newFakeCheckout(), user.ID)

	w := doJSON(t, router, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"sessionId": "demo_seed",
		"postData":  validPostData(),
	})
	requireStatus(t, w, http.StatusOK)
}

func TestVerifyPaymentValidation(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	router := paymentRouter(db, nil, user.ID)

	missingTitle := validPostData()
	delete(missingTitle, "title")
	w := doJSON(t, router, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"sessionId": "demo_v1",
		"postData":  missingTitle,
	})
	requireStatus(t, w, http.StatusBadRequest)

	tooManyImages := validPostData()
	images := make([]string, models.MaxImages+1)
	for i := range images {
		images[i] = "https://img.example/x.jpg"
	}
	tooManyImages["images"] = images
	w = doJSON(t, router, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"sessionId": "demo_v2",
		"postData":  tooManyImages,
	})
	requireStatus(t, w, http.StatusBadRequest)

	badChannel := validPostData()
	badChannel["contactInfo"] = map[string]interface{}{
		"pager": map[string]interface{}{"value": "123", "visible": true},
	}
	w = doJSON(t, router, http.MethodPost, "/api/payments/verify", map[string]interface{}{
		"sessionId": "demo_v3",
		"postData":  badChannel,
	})
	requireStatus(t, w, http.StatusBadRequest)
}

func TestPaymentTokenUniqueConstraint(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)

	createTestPost(t, db, user.ID, "demo_dup")
	second := &models.Post{
		UserID:          user.ID,
		CityID:          "c1",
		CategoryID:      "cat1",
		Title:           "Other",
		Description:     "Other",
		StripePaymentID: "demo_dup",
		StripeSessionID: "demo_dup",
		ExpiresAt:       time.Now().Add(models.PostDuration),
		CommentsCloseAt: time.Now().Add(models.PostDuration),
		IsActive:        true,
	}
	err := db.Create(second).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRenewExtendsWithoutDuplicating(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	router := paymentRouter(db, nil, user.ID)

	post := createTestPost(t, db, user.ID, "demo_1")
	// Push the post inside the renewal window.
	nearExpiry := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(post).Updates(map[string]interface{}{
		"expires_at": nearExpiry,
		"is_active":  true,
	}).Error)

	before := time.Now()
	w := doJSON(t, router, http.MethodPost, "/api/posts/"+post.ID+"/renew", map[string]interface{}{
		"sessionId": "demo_2",
	})
	requireStatus(t, w, http.StatusOK)

	var renewed models.Post
	require.NoError(t, db.First(&renewed, "id = ?", post.ID).Error)
	assert.Equal(t, post.ID, renewed.ID)
	assert.True(t, renewed.IsActive)
	assert.Equal(t, "demo_2", renewed.StripeSessionID)
	assert.WithinDuration(t, before.Add(models.PostDuration), renewed.ExpiresAt, 5*time.Second)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRenewRejectsForeignPost(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, true)
	other := createTestUser(t, db, false)
	post := createTestPost(t, db, owner.ID, "demo_1")

	router := paymentRouter(db, nil, other.ID)
	w := doJSON(t, router, http.MethodPost, "/api/posts/"+post.ID+"/renew", map[string]interface{}{
		"sessionId": "demo_2",
	})
	requireStatus(t, w, http.StatusNotFound)
}

func TestRenewRejectsTokenSpentElsewhere(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	first := createTestPost(t, db, user.ID, "demo_1")
	createTestPost(t, db, user.ID, "demo_2")

	router := paymentRouter(db, nil, user.ID)
	w := doJSON(t, router, http.MethodPost, "/api/posts/"+first.ID+"/renew", map[string]interface{}{
		"sessionId": "demo_2",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "already used")
}

func TestStartCheckoutDemoMode(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	router := paymentRouter(db, nil, user.ID)

	w := doJSON(t, router, http.MethodPost, "/api/checkout", map[string]interface{}{"mode": "post"})
	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	sessionID, _ := body["sessionId"].(string)
	assert.True(t, strings.HasPrefix(sessionID, "demo_"))
}

func TestStartCheckoutLiveMode(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	post := createTestPost(t, db, user.ID, "demo_1")
	checkout := newFakeCheckout()
	router := paymentRouter(db, checkout, user.ID)

	w := doJSON(t, router, http.MethodPost, "/api/checkout", map[string]interface{}{
		"mode":   "renew",
		"postId": post.ID,
	})
	requireStatus(t, w, http.StatusOK)

	require.Len(t, checkout.created, 1)
	assert.Equal(t, "price_post", checkout.created[0].PriceID)
	assert.Equal(t, "payment", checkout.created[0].Mode)
	assert.Equal(t, post.ID, checkout.created[0].TargetPostID)
	assert.Equal(t, user.ID, checkout.created[0].UserID)

	body := decodeBody(t, w)
	assert.Equal(t, "https://checkout.example.com/pay", body["url"])
}

func TestStartCheckoutRenewRequiresOwnedPost(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, true)
	router := paymentRouter(db, newFakeCheckout(), user.ID)

	w := doJSON(t, router, http.MethodPost, "/api/checkout", map[string]interface{}{
		"mode":   "renew",
		"postId": "nonexistent",
	})
	requireStatus(t, w, http.StatusNotFound)
}
