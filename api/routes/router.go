package routes

import (
	"net/http"
	"time"

	"eventbook/internal/auth"
	"eventbook/internal/events"
	"eventbook/internal/notifications"
	"eventbook/internal/reservations"
	"eventbook/internal/shared/config"
	"eventbook/internal/shared/database"
	"eventbook/internal/users"
	"eventbook/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config              *config.Config
	db                  *database.DB
	notificationService *notifications.Service
	cacheService        cache.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notificationService *notifications.Service) *Router {
	r := &Router{
		config:              cfg,
		db:                  db,
		notificationService: notificationService,
	}
	if db.Redis != nil {
		r.cacheService = cache.NewService(db.GetRedisClient())
	}
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupEventRoutes(api)
		r.setupReservationRoutes(api)
		r.setupUserRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "eventbook-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "eventbook-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		cacheStatus := "disabled"
		if r.cacheService != nil {
			cacheStatus = "ok"
			if err := r.cacheService.Ping(c.Request.Context()); err != nil {
				cacheStatus = "unreachable"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"cache":       cacheStatus,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
}

// setupEventRoutes configures event management routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	eventService := events.NewService(eventRepo, r.config)

	if r.cacheService != nil {
		eventService.SetCacheService(r.cacheService)
	}

	eventController := events.NewController(eventService)

	events.SetupEventRoutes(rg, eventController)
}

// setupReservationRoutes configures the booking flow routes
func (r *Router) setupReservationRoutes(rg *gin.RouterGroup) {
	reservationRepo := reservations.NewRepository(r.db.GetPostgreSQL())
	reservationService := reservations.NewService(reservationRepo, r.config)

	if r.cacheService != nil {
		reservationService.SetCacheService(r.cacheService)
	}
	if r.notificationService != nil {
		reservationService.SetNotifier(r.notificationService)
	}

	reservationController := reservations.NewController(reservationService)

	reservations.SetupReservationRoutes(rg, reservationController)
}

// setupUserRoutes configures user administration routes
func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	userRepo := users.NewRepository(r.db.GetPostgreSQL())
	userService := users.NewService(userRepo)
	userController := users.NewController(userService)

	users.SetupUserRoutes(rg, userController)
}
