package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dopelist/api-go/config"
	"github.com/dopelist/api-go/models"
	"github.com/dopelist/api-go/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Named shared-memory database so every pooled connection sees the
	// same tables, isolated per test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

// authAs injects claims the way the auth middleware would.
func authAs(userID string, anon bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(utils.UserContextKey), &utils.UserClaims{UserID: userID, Anonymous: anon})
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createTestUser(t *testing.T, db *gorm.DB, anonymous bool) *models.User {
	t.Helper()
	user := &models.User{IsAnonymous: anonymous}
	if !anonymous {
		email := uuid.NewString() + "@example.com"
		user.Email = &email
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID, sessionID string) *models.Post {
	t.Helper()
	now := time.Now()
	post := &models.Post{
		UserID:          userID,
		CityID:          "c1",
		CategoryID:      "cat1",
		Title:           "Bike",
		Description:     "Good bike",
		Location:        "Downtown",
		Images:          datatypes.NewJSONSlice([]string{}),
		Reactions:       datatypes.NewJSONType(models.ReactionTally{}),
		StripePaymentID: sessionID,
		StripeSessionID: sessionID,
		ExpiresAt:       now.Add(models.PostDuration),
		CommentsCloseAt: now.Add(models.PostDuration),
		IsActive:        true,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// fakeCheckout stands in for the payment provider.
type fakeCheckout struct {
	sessions  map[string]*CheckoutSession
	created   []CreateSessionParams
	createErr error
}

func newFakeCheckout() *fakeCheckout {
	return &fakeCheckout{sessions: map[string]*CheckoutSession{}}
}

func (f *fakeCheckout) CreateSession(p CreateSessionParams) (*CheckoutSession, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, p)
	sess := &CheckoutSession{
		ID:            "cs_test_" + uuid.NewString(),
		URL:           "https://checkout.example.com/pay",
		PaymentStatus: "unpaid",
	}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeCheckout) RetrieveSession(id string) (*CheckoutSession, error) {
	sess, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	return sess, nil
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}
