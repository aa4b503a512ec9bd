package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/dopelist/api-go/config"
	"github.com/dopelist/api-go/controllers"
	"github.com/dopelist/api-go/middleware"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client) {
	stripeConfig := config.GetStripeConfig()
	checkout := controllers.NewStripeCheckoutClient(stripeConfig)

	// Initialize controllers
	authController := controllers.NewAuthController(db)
	metaController := controllers.NewMetaController(db)
	postController := controllers.NewPostController(db)
	paymentController := controllers.NewPaymentController(db, stripeConfig, checkout)
	interactionController := controllers.NewInteractionController(db)
	subscriptionController := controllers.NewSubscriptionController(db)
	webhookController := controllers.NewWebhookController(db, stripeConfig)
	uploadController := controllers.NewUploadController()

	// One write per two seconds per IP on engagement endpoints.
	engagementLimiter := middleware.NewIPRateLimiter(rate.Limit(0.5), 3)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/auth/anonymous", authController.RegisterAnonymous)
		public.POST("/auth/register", authController.Register)
		public.POST("/auth/login", authController.Login)
		public.POST("/webhooks/stripe", webhookController.HandleStripeWebhook)

		public.GET("/cities", middleware.CacheMiddleware(rdb, 10*time.Minute), metaController.GetCities)
		public.GET("/categories", middleware.CacheMiddleware(rdb, 10*time.Minute), metaController.GetCategories)
		public.GET("/posts", postController.ListPosts)
		public.GET("/posts/:id", middleware.OptionalAuthMiddleware(), postController.GetPost)
		public.GET("/comments", interactionController.GetComments)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/refresh-token", authController.RefreshToken)
		protected.POST("/auth/logout", authController.Logout)
		protected.GET("/profile", authController.GetProfile)
		protected.POST("/account/merge", authController.MergeAccounts)

		SetupPostRoutes(protected, postController)
		SetupPaymentRoutes(protected, paymentController, subscriptionController)
		SetupInteractionRoutes(protected, interactionController, engagementLimiter)
		SetupUploadRoutes(protected, uploadController)
	}
}
