package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dopelist/api-go/controllers"
	"github.com/dopelist/api-go/middleware"
)

func SetupInteractionRoutes(rg *gin.RouterGroup, interactionController *controllers.InteractionController, limiter *middleware.IPRateLimiter) {
	limited := middleware.RateLimitMiddleware(limiter)

	rg.POST("/votes", limited, interactionController.CastVote)
	rg.DELETE("/votes", limited, interactionController.RemoveVote)
	rg.POST("/reactions", limited, interactionController.ReactToPost)
	rg.POST("/comments", limited, interactionController.PostComment)
}
