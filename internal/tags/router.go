package tags

import (
	"carebaby/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTagRoutes(router *gin.RouterGroup, controller Controller, auth gin.HandlerFunc) {
	// Public routes
	publicTags := router.Group("/tags")
	{
		publicTags.GET("/suggest", controller.SuggestTags)     // GET /api/v1/tags/suggest?q=&limit= - Ranked suggestions
		publicTags.GET("/active", controller.GetActiveTags)    // GET /api/v1/tags/active - All active tags
		publicTags.GET("/slug/:slug", controller.GetTagBySlug) // GET /api/v1/tags/slug/:slug - Get tag by slug
	}

	// Caregiver routes
	childTags := router.Group("/children/:id/tags")
	childTags.Use(auth)
	{
		childTags.GET("", controller.GetChildTags)     // GET /api/v1/children/:id/tags - Current tag set
		childTags.PUT("", controller.ReplaceChildTags) // PUT /api/v1/children/:id/tags - Replace tag set
	}

	// Admin routes
	adminTags := router.Group("/admin/tags")
	adminTags.Use(auth, middleware.RequireAdmin())
	{
		adminTags.PATCH("/:id/active", controller.SetTagActive) // PATCH /api/v1/admin/tags/:id/active - Soft enable/disable
	}
}
