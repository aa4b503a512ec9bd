package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dopelist/api-go/models"
	"github.com/dopelist/api-go/utils"
)

type PostController struct {
	DB *gorm.DB
}

func NewPostController(db *gorm.DB) *PostController {
	return &PostController{DB: db}
}

type UpdatePostRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Price       *string             `json:"price"`
	Location    *string             `json:"location"`
	Images      *[]string           `json:"images"`
	ContactInfo *models.ContactInfo `json:"contactInfo"`
}

func parsePagination(c *gin.Context) (page, pageSize, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize, (page - 1) * pageSize
}

// ListPosts returns publicly visible posts, filterable by city, category,
// section, and a title/description search, best-voted first.
func (pc *PostController) ListPosts(c *gin.Context) {
	page, pageSize, offset := parsePagination(c)

	query := pc.DB.Model(&models.Post{}).
		Where("is_active = ? AND expires_at > ?", true, time.Now())

	if cityID := c.Query("cityId"); cityID != "" {
		query = query.Where("city_id = ?", cityID)
	}
	if categoryID := c.Query("categoryId"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if section := c.Query("section"); section != "" {
		if !models.IsValidSection(section) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown section"})
			return
		}
		query = query.Where("category_id IN (?)",
			pc.DB.Model(&models.Category{}).Select("id").Where("section = ?", section))
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching posts"})
		return
	}

	var posts []models.Post
	err := query.Order("votes DESC, created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching posts"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    posts,
		Pagination: &PaginationMeta{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  total,
			TotalPages:  (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}

// GetPost serves a single post. Expired or deactivated posts are visible
// only to their owner.
func (pc *PostController) GetPost(c *gin.Context) {
	var post models.Post
	if err := pc.DB.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	now := time.Now()
	if post.VisibilityState(now) == models.VisibilityExpired {
		claims := utils.GetUser(c)
		if claims == nil || claims.UserID != post.UserID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"post":      post,
		"state":     post.VisibilityState(now),
		"time_left": utils.FormatTimeLeft(post.ExpiresAt, now),
	})
}

// UpdatePost lets the owner edit listing fields while the post is still
// visible. Expired and deactivated posts are immutable except for renewal.
func (pc *PostController) UpdatePost(c *gin.Context) {
	claims := utils.GetUser(c)

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Images != nil && len(*req.Images) > models.MaxImages {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many images"})
		return
	}

	var post models.Post
	if err := pc.DB.Where("id = ? AND user_id = ?", c.Param("id"), claims.UserID).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found or unauthorized"})
		return
	}

	if !post.IsEditable(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expired posts cannot be edited"})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
			return
		}
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		if *req.Description == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Description cannot be empty"})
			return
		}
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Images != nil {
		updates["images"] = datatypes.NewJSONSlice(*req.Images)
	}
	if req.ContactInfo != nil {
		updates["contact_info"] = datatypes.NewJSONType(*req.ContactInfo)
	}

	if len(updates) > 0 {
		if err := pc.DB.Model(&post).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
			return
		}
	}

	if err := pc.DB.First(&post, "id = ?", post.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost soft-deletes by clearing the active flag; the row and its
// engagement history stay around.
func (pc *PostController) DeletePost(c *gin.Context) {
	claims := utils.GetUser(c)

	var post models.Post
	if err := pc.DB.Where("id = ? AND user_id = ?", c.Param("id"), claims.UserID).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found or unauthorized"})
		return
	}

	if err := pc.DB.Model(&post).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMyPosts returns everything the caller owns, including expired and
// deactivated posts, for the manage screen.
func (pc *PostController) GetMyPosts(c *gin.Context) {
	claims := utils.GetUser(c)

	var posts []models.Post
	err := pc.DB.Where("user_id = ?", claims.UserID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching posts"})
		return
	}

	now := time.Now()
	result := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		result = append(result, gin.H{
			"post":      post,
			"state":     post.VisibilityState(now),
			"time_left": utils.FormatTimeLeft(post.ExpiresAt, now),
		})
	}

	c.JSON(http.StatusOK, gin.H{"posts": result})
}

// GetExpiringPosts returns the caller's active posts inside the renewal
// window, so the client can prompt for renewal.
func (pc *PostController) GetExpiringPosts(c *gin.Context) {
	claims := utils.GetUser(c)
	now := time.Now()

	var posts []models.Post
	err := pc.DB.Where(
		"user_id = ? AND is_active = ? AND expires_at > ? AND expires_at <= ?",
		claims.UserID, true, now, now.Add(models.ExpiringSoonWindow),
	).Order("expires_at ASC").Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}
