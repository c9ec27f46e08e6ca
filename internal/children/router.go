package children

import "github.com/gin-gonic/gin"

func SetupChildRoutes(router *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	children := router.Group("/children")
	children.Use(auth)
	{
		children.POST("", controller.CreateChild)  // POST /api/v1/children - Create child profile
		children.GET("/:id", controller.GetChild) // GET /api/v1/children/:id - Get own child profile
	}
}
