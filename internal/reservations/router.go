package reservations

import (
	"eventbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(router *gin.RouterGroup, controller Controller) {
	// All reservation routes require an authenticated user.
	reservations := router.Group("/reservations")
	reservations.Use(middleware.JWTAuth())
	{
		reservations.POST("", controller.CreateReservation)
		reservations.DELETE("/:id", controller.CancelReservation)
		reservations.GET("/me", controller.GetMyReservations)
	}
}
