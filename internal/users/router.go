package users

import (
	"eventbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(router *gin.RouterGroup, controller Controller) {
	// Admin routes - user administration
	adminUsers := router.Group("/admin/users")
	adminUsers.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminUsers.GET("", controller.GetAllUsers)
		adminUsers.GET("/:id", controller.GetUser)
		adminUsers.PUT("/:id", controller.UpdateUser)
		adminUsers.DELETE("/:id", controller.DeleteUser)
	}
}
