package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dopelist/api-go/models"
	"github.com/dopelist/api-go/utils"
)

const (
	accessTokenTTL  = time.Hour * 24 * 7
	refreshTokenTTL = time.Hour * 24 * 30
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

func (ac *AuthController) issueTokens(user *models.User) (string, string, error) {
	accessBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"anon":    user.IsAnonymous,
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
	})
	refreshBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(refreshTokenTTL).Unix(),
	})

	secret := []byte(os.Getenv("JWT_SECRET"))
	accessToken, err := accessBase.SignedString(secret)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := refreshBase.SignedString(secret)
	if err != nil {
		return "", "", err
	}

	if err := ac.DB.Create(&models.RefreshToken{
		UserID:         user.ID,
		Token:          refreshToken,
		ExpirationDate: time.Now().Add(refreshTokenTTL),
	}).Error; err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// RegisterAnonymous mints a fresh anonymous identity for a first-time
// visitor. The client keeps the token in the browser session; content
// created under it is re-owned by the merge flow if the visitor later
// signs up.
func (ac *AuthController) RegisterAnonymous(c *gin.Context) {
	user := models.User{IsAnonymous: true}
	if err := ac.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create anonymous session"})
		return
	}

	accessToken, refreshToken, err := ac.issueTokens(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate tokens"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"user":          gin.H{"id": user.ID, "is_anonymous": true},
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password", "success": false})
		return
	}
	hashedPasswordStr := string(hashedPassword)

	user := models.User{
		Email:       &input.Email,
		Password:    &hashedPasswordStr,
		IsAnonymous: false,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered", "success": false})
		return
	}

	accessToken, refreshToken, err := ac.issueTokens(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate tokens"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"message":       "User registered successfully",
		"user":          gin.H{"id": user.ID, "email": user.Email},
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if user.Password == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	accessToken, refreshToken, err := ac.issueTokens(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"user":          gin.H{"id": user.ID, "email": user.Email},
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var stored models.RefreshToken
	if err := ac.DB.Where("token = ?", input.RefreshToken).First(&stored).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if time.Now().After(stored.ExpirationDate) {
		ac.DB.Delete(&stored)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, "id = ?", stored.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	accessBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"anon":    user.IsAnonymous,
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
	})
	accessToken, err := accessBase.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "access_token": accessToken})
}

func (ac *AuthController) Logout(c *gin.Context) {
	user := utils.GetUser(c)

	if err := ac.DB.Where("user_id = ?", user.UserID).Delete(&models.RefreshToken{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	claims := utils.GetUser(c)

	var user models.User
	if err := ac.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// MergeAccounts re-owns everything the anonymous identity created to the
// newly authenticated identity. The caller's token must belong to the
// authenticated side. Each reassignment is an idempotent bulk update;
// failures are logged and skipped, never rolled back, so retrying the whole
// call is the recovery path.
func (ac *AuthController) MergeAccounts(c *gin.Context) {
	claims := utils.GetUser(c)

	var input struct {
		AnonymousUserID     string `json:"anonymousUserId" binding:"required"`
		AuthenticatedUserID string `json:"authenticatedUserId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}

	if claims.UserID != input.AuthenticatedUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	reassign := []struct {
		name  string
		model interface{}
	}{
		{"posts", &models.Post{}},
		{"comments", &models.Comment{}},
		{"votes", &models.Vote{}},
		{"reactions", &models.Reaction{}},
	}
	for _, step := range reassign {
		err := ac.DB.Model(step.model).
			Where("user_id = ?", input.AnonymousUserID).
			Update("user_id", input.AuthenticatedUserID).Error
		if err != nil {
			log.Printf("merge: reassigning %s from %s failed: %v", step.name, input.AnonymousUserID, err)
		}
	}

	// Billing linkage: keep the authenticated identity's customer when it has
	// one, otherwise adopt the anonymous identity's.
	var anonCustomer models.StripeCustomer
	err := ac.DB.Where("user_id = ?", input.AnonymousUserID).First(&anonCustomer).Error
	if err == nil {
		var existing models.StripeCustomer
		err = ac.DB.Where("user_id = ?", input.AuthenticatedUserID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := ac.DB.Model(&anonCustomer).Update("user_id", input.AuthenticatedUserID).Error; err != nil {
				log.Printf("merge: adopting stripe customer failed: %v", err)
			}
		} else if err == nil {
			if err := ac.DB.Delete(&anonCustomer).Error; err != nil {
				log.Printf("merge: discarding stripe customer failed: %v", err)
			}
		} else {
			log.Printf("merge: looking up stripe customer failed: %v", err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("merge: looking up stripe customer failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account merged successfully"})
}
