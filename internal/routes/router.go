package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes инициализирует все маршруты приложения.
func SetupRoutes(r *gin.Engine) {
	RegisterAPIRoutes(r.Group("/"))
}
