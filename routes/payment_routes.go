package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dopelist/api-go/controllers"
)

func SetupPaymentRoutes(rg *gin.RouterGroup, paymentController *controllers.PaymentController, subscriptionController *controllers.SubscriptionController) {
	rg.POST("/checkout", paymentController.StartCheckout)
	rg.POST("/payments/verify", paymentController.VerifyPayment)
	rg.POST("/posts/:id/renew", paymentController.RenewPost)

	rg.GET("/subscription", subscriptionController.GetSubscription)
	rg.GET("/orders", subscriptionController.GetOrders)
}
