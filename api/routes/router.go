// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"carebaby/internal/children"
	"carebaby/internal/shared/config"
	"carebaby/internal/shared/database"
	"carebaby/internal/shared/middleware"
	"carebaby/internal/synonyms"
	"carebaby/internal/tags"
	"carebaby/pkg/cache"
	"carebaby/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	dict     *synonyms.Dictionary
	notifier tags.ChangeNotifier
	log      *logger.Logger

	childService children.Service
}

// NewRouter creates a new router instance. dict must already be loaded.
func NewRouter(cfg *config.Config, db *database.DB, dict *synonyms.Dictionary, notifier tags.ChangeNotifier, log *logger.Logger) *Router {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Router{
		config:   cfg,
		db:       db,
		dict:     dict,
		notifier: notifier,
		log:      log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	auth := middleware.JWTAuth(r.config.JWT.Secret, r.log)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// children first: tag routes check ownership through the child service
		r.setupChildRoutes(api, auth)
		r.setupTagRoutes(api, auth)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			r.log.WithError(err).WarnContext(c.Request.Context(), "health check failed")
			body := gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now(),
				"service":   "carebaby-tags",
			}
			// driver errors can carry hostnames and DSN fragments
			if !r.config.IsProduction() {
				body["error"] = err.Error()
			}
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "carebaby-tags",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"synonyms":    r.dict.Len(),
			"redis_cache": r.db.Redis != nil,
			"timestamp":   time.Now(),
		})
	})
}

// setupChildRoutes configures child profile routes
func (r *Router) setupChildRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	childRepo := children.NewRepository(r.db.PostgreSQL)
	r.childService = children.NewService(childRepo)
	childController := children.NewController(r.childService, r.log)

	children.SetupChildRoutes(rg, childController, auth)
}

// setupTagRoutes configures tag, child tag and suggestion routes
func (r *Router) setupTagRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	tagRepo := tags.NewRepository(r.db.PostgreSQL)
	tagService := tags.NewService(tagRepo, r.dict, r.log)

	if r.db.Redis != nil {
		tagService.SetCacheService(cache.NewService(r.db.Redis, r.log), r.config.Redis.SuggestTTL, r.config.Redis.ChildTagsTTL)
	}
	if r.notifier != nil {
		tagService.SetNotificationProducer(r.notifier)
	}

	tagController := tags.NewController(tagService, r.childService, r.log)
	tags.SetupTagRoutes(rg, tagController, auth)
}
