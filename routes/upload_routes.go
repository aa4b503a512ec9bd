package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dopelist/api-go/controllers"
)

func SetupUploadRoutes(rg *gin.RouterGroup, uploadController *controllers.UploadController) {
	rg.POST("/uploads/presign", uploadController.GetPresignedURL)
	rg.POST("/uploads/presign-batch", uploadController.GetMultiplePresignedURLs)
}
