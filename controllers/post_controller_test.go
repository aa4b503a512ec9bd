package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dopelist/api-go/models"
)

func postRouter(db *gorm.DB, userID string) *gin.Engine {
	pc := NewPostController(db)
	r := gin.New()
	r.GET("/api/posts", pc.ListPosts)
	r.GET("/api/posts/view/:id", func(c *gin.Context) {
		// Public view: no claims in context.
		pc.GetPost(c)
	})

	auth := r.Group("/api", authAs(userID, false))
	auth.GET("/posts/:id", pc.GetPost)
	auth.PUT("/posts/:id", pc.UpdatePost)
	auth.DELETE("/posts/:id", pc.DeletePost)
	auth.GET("/posts/mine", pc.GetMyPosts)
	auth.GET("/posts/mine/expiring", pc.GetExpiringPosts)
	return r
}

func listedIDs(t *testing.T, w *json.Decoder) []string {
	t.Helper()
	var resp struct {
		Data []models.Post `json:"data"`
	}
	require.NoError(t, w.Decode(&resp))
	ids := make([]string, 0, len(resp.Data))
	for _, p := range resp.Data {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestListPostsHidesExpiredAndInactive(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, false)

	visible := createTestPost(t, db, owner.ID, "demo_1")
	expired := createTestPost(t, db, owner.ID, "demo_2")
	require.NoError(t, db.Model(expired).Update("expires_at", time.Now().Add(-time.Hour)).Error)
	inactive := createTestPost(t, db, owner.ID, "demo_3")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	router := postRouter(db, owner.ID)
	w := doJSON(t, router, http.MethodGet, "/api/posts", nil)
	requireStatus(t, w, http.StatusOK)

	ids := listedIDs(t, json.NewDecoder(w.Body))
	assert.Equal(t, []string{visible.ID}, ids)
}

func TestListPostsCityAndSectionFilters(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, false)
	require.NoError(t, db.Create(&models.Category{ID: "cat1", Name: "Bikes", Slug: "bikes", Section: "for_sale"}).Error)
	require.NoError(t, db.Create(&models.Category{ID: "cat2", Name: "Apartments", Slug: "apartments", Section: "housing"}).Error)

	inCity := createTestPost(t, db, owner.ID, "demo_1")
	other := createTestPost(t, db, owner.ID, "demo_2")
	require.NoError(t, db.Model(other).Updates(map[string]interface{}{
		"city_id": "c2", "category_id": "cat2",
	}).Error)

	router := postRouter(db, owner.ID)

	w := doJSON(t, router, http.MethodGet, "/api/posts?cityId=c1", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, []string{inCity.ID}, listedIDs(t, json.NewDecoder(w.Body)))

	w = doJSON(t, router, http.MethodGet, "/api/posts?section=housing", nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, []string{other.ID}, listedIDs(t, json.NewDecoder(w.Body)))

	w = doJSON(t, router, http.MethodGet, "/api/posts?section=nope", nil)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestGetPostExpiredVisibleOnlyToOwner(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, false)
	stranger := createTestUser(t, db, false)

	post := createTestPost(t, db, owner.ID, "demo_1")
	require.NoError(t, db.Model(post).Update("expires_at", time.Now().Add(-time.Hour)).Error)

	asOwner := postRouter(db, owner.ID)
	w := doJSON(t, asOwner, http.MethodGet, "/api/posts/"+post.ID, nil)
	requireStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	assert.Equal(t, "expired", body["state"])

	asStranger := postRouter(db, stranger.ID)
	requireStatus(t, doJSON(t, asStranger, http.MethodGet, "/api/posts/"+post.ID, nil), http.StatusNotFound)

	// Anonymous public view gets the same 404.
	requireStatus(t, doJSON(t, asStranger, http.MethodGet, "/api/posts/view/"+post.ID, nil), http.StatusNotFound)
}

func TestUpdatePostByOwner(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, false)
	post := createTestPost(t, db, owner.ID, "demo_1")

	router := postRouter(db, owner.ID)
	w := doJSON(t, router, http.MethodPut, "/api/posts/"+post.ID, map[string]interface{}{
		"title": "Better bike",
		"price": "120",
	})
	requireStatus(t, w, http.StatusOK)

	var got models.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.Equal(t, "Better bike", got.Title)
	require.NotNil(t, got.Price)
	assert.Equal(t, "120", *got.Price)
	assert.Equal(t, "Good bike", got.Description)
}

func TestUpdatePostExpiredRejected(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, false)
	post := createTestPost(t, db, owner.ID, "demo_1")
	require.NoError(t, db.Model(post).Update("expires_at", time.Now().Add(-time.Hour)).Error)

	router := postRouter(db, owner.ID)
	w := doJSON(t, router, http.MethodPut, "/api/posts/"+post.ID, map[string]interface{}{
		"title": "Too late",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "cannot be edited")
}

func TestUpdatePostForeignOwnerRejected(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, false)
	stranger := createTestUser(t, db, false)
	post := createTestPost(t, db, owner.ID, "demo_1")

	router := postRouter(db, stranger.ID)
	w := doJSON(t, router, http.MethodPut, "/api/posts/"+post.ID, map[string]interface{}{
		"title": "Hijacked",
	})
	requireStatus(t, w, http.StatusNotFound)
}

func TestDeletePostSoftDeletes(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, false)
	post := createTestPost(t, db, owner.ID, "demo_1")

	router := postRouter(db, owner.ID)
	requireStatus(t, doJSON(t, router, http.MethodDelete, "/api/posts/"+post.ID, nil), http.StatusOK)

	var got models.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.False(t, got.IsActive)
}

func TestGetMyPostsIncludesAllStates(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, false)
	createTestPost(t, db, owner.ID, "demo_1")
	expired := createTestPost(t, db, owner.ID, "demo_2")
	require.NoError(t, db.Model(expired).Update("expires_at", time.Now().Add(-time.Hour)).Error)

	router := postRouter(db, owner.ID)
	w := doJSON(t, router, http.MethodGet, "/api/posts/mine", nil)
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		Posts []struct {
			State    string `json:"state"`
			TimeLeft string `json:"time_left"`
		} `json:"posts"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Posts, 2)

	states := map[string]bool{}
	for _, p := range resp.Posts {
		states[p.State] = true
	}
	assert.True(t, states["active"])
	assert.True(t, states["expired"])
}

func TestGetExpiringPostsWindow(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, false)

	soon := createTestPost(t, db, owner.ID, "demo_1")
	require.NoError(t, db.Model(soon).Update("expires_at", time.Now().Add(12*time.Hour)).Error)
	createTestPost(t, db, owner.ID, "demo_2") // full week left

	router := postRouter(db, owner.ID)
	w := doJSON(t, router, http.MethodGet, "/api/posts/mine/expiring", nil)
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		Posts []models.Post `json:"posts"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, soon.ID, resp.Posts[0].ID)
}
