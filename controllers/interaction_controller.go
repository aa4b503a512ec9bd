package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dopelist/api-go/models"
	"github.com/dopelist/api-go/utils"
)

const maxCommentLength = 1000

type InteractionController struct {
	DB *gorm.DB
}

func NewInteractionController(db *gorm.DB) *InteractionController {
	return &InteractionController{DB: db}
}

// recomputeVoteTotal writes the current vote sum back to the denormalized
// counter. Deliberately not transactional with the vote mutation: counts
// are approximate under concurrent voters.
func (ic *InteractionController) recomputeVoteTotal(postID string) {
	var total int64
	err := ic.DB.Model(&models.Vote{}).
		Where("post_id = ?", postID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&total).Error
	if err != nil {
		log.Printf("vote total for post %s: %v", postID, err)
		return
	}
	if err := ic.DB.Model(&models.Post{}).Where("id = ?", postID).Update("votes", total).Error; err != nil {
		log.Printf("vote total for post %s: %v", postID, err)
	}
}

// CastVote upserts the caller's vote on a post. Repeated votes by the same
// identity replace the previous value rather than accumulating.
func (ic *InteractionController) CastVote(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		PostID    string  `json:"postId" binding:"required"`
		VoteValue int     `json:"voteValue" binding:"required,oneof=1 -1"`
		SessionID *string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postId and voteValue (1 or -1) required"})
		return
	}

	var post models.Post
	if err := ic.DB.First(&post, "id = ?", input.PostID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var existingVote models.Vote
	result := ic.DB.Where("post_id = ? AND user_id = ?", input.PostID, claims.UserID).First(&existingVote)

	var vote models.Vote
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		vote = models.Vote{
			PostID:    post.ID,
			UserID:    claims.UserID,
			SessionID: input.SessionID,
			Value:     input.VoteValue,
		}
		if err := ic.DB.Create(&vote).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cast vote"})
			return
		}
	} else {
		if err := ic.DB.Model(&existingVote).Update("value", input.VoteValue).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vote"})
			return
		}
		existingVote.Value = input.VoteValue
		vote = existingVote
	}

	ic.recomputeVoteTotal(post.ID)

	c.JSON(http.StatusOK, gin.H{"vote": vote})
}

// RemoveVote deletes the caller's vote, if any.
func (ic *InteractionController) RemoveVote(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		PostID string `json:"postId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postId required"})
		return
	}

	err := ic.DB.Where("post_id = ? AND user_id = ?", input.PostID, claims.UserID).
		Delete(&models.Vote{}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove vote"})
		return
	}

	ic.recomputeVoteTotal(input.PostID)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReactToPost bumps one of the fixed reaction counters and records the
// click. There is no per-identity dedup; the same caller may react again.
func (ic *InteractionController) ReactToPost(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		PostID   string `json:"postId" binding:"required"`
		Reaction string `json:"reaction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postId and reaction required"})
		return
	}

	var post models.Post
	if err := ic.DB.First(&post, "id = ?", input.PostID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	tally := post.Reactions.Data()
	if !tally.Increment(input.Reaction) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown reaction"})
		return
	}

	userID := claims.UserID
	reaction := models.Reaction{
		PostID: post.ID,
		UserID: &userID,
		Key:    input.Reaction,
	}
	if err := ic.DB.Create(&reaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record reaction"})
		return
	}

	if err := ic.DB.Model(&post).Update("reactions", datatypes.NewJSONType(tally)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record reaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reactions": tally})
}

// GetComments lists a post's comments, oldest first. No credential needed.
func (ic *InteractionController) GetComments(c *gin.Context) {
	postID := c.Query("postId")
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postId required"})
		return
	}

	var comments []models.Comment
	err := ic.DB.Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// PostComment appends a comment while the post is active and its comment
// window is open. The window check uses comments_close_at only; expiry of
// the listing itself does not close comments.
func (ic *InteractionController) PostComment(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		PostID    string  `json:"postId" binding:"required"`
		Text      string  `json:"text" binding:"required"`
		SessionID *string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postId and text required"})
		return
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postId and text required"})
		return
	}
	if len(text) > maxCommentLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment is too long"})
		return
	}

	var post models.Post
	if err := ic.DB.First(&post, "id = ?", input.PostID).Error; err != nil || !post.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found or inactive"})
		return
	}

	if !post.CommentsOpen(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comments are closed for this post"})
		return
	}

	userID := claims.UserID
	comment := models.Comment{
		PostID:    post.ID,
		UserID:    &userID,
		SessionID: input.SessionID,
		Text:      text,
	}
	if err := ic.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}
