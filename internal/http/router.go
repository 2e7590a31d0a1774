package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/placeshare-backend/internal/http/handlers"
	httpMW "github.com/yungbote/placeshare-backend/internal/http/middleware"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
	// UploadsDir, when set, is served read-only at /uploads.
	UploadsDir string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	UserHandler    *httpH.UserHandler
	PlaceHandler   *httpH.PlaceHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if name := strings.TrimSpace(cfg.ServiceName); name != "" {
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.RequestTrace())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", "/healthcheck"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if dir := strings.TrimSpace(cfg.UploadsDir); dir != "" {
		r.StaticFS("/uploads", gin.Dir(dir, false))
	}

	api := r.Group("/api")
	{
		// Public
		if cfg.PlaceHandler != nil {
			api.GET("/places/:pid", cfg.PlaceHandler.GetPlace)
			api.GET("/places/user/:uid", cfg.PlaceHandler.ListUserPlaces)
		}
		if cfg.UserHandler != nil {
			api.GET("/users", cfg.UserHandler.ListUsers)
		}
		if cfg.AuthHandler != nil {
			api.POST("/users/signup", cfg.AuthHandler.Signup)
			api.POST("/users/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}
		if cfg.PlaceHandler != nil {
			protected.POST("/places", cfg.PlaceHandler.CreatePlace)
			protected.PATCH("/places/:pid", cfg.PlaceHandler.UpdatePlace)
			protected.DELETE("/places/:pid", cfg.PlaceHandler.DeletePlace)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Could not find this route.", "code": "not_found"}})
	})
	return r
}
