package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dopelist/api-go/controllers"
)

func SetupPostRoutes(rg *gin.RouterGroup, postController *controllers.PostController) {
	rg.PUT("/posts/:id", postController.UpdatePost)
	rg.DELETE("/posts/:id", postController.DeletePost)
	rg.GET("/posts/mine", postController.GetMyPosts)
	rg.GET("/posts/mine/expiring", postController.GetExpiringPosts)
}
