package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/grayola/task-manager/internal/access"
	httpapi "github.com/grayola/task-manager/internal/api/http"
	"github.com/grayola/task-manager/internal/api/http/middleware"
	authhttp "github.com/grayola/task-manager/internal/auth/http"
	authmw "github.com/grayola/task-manager/internal/auth/middleware"
	dashhttp "github.com/grayola/task-manager/internal/dashboard/http"
	"github.com/grayola/task-manager/internal/logger"
	projecthttp "github.com/grayola/task-manager/internal/projects/http"
)

type RouterDeps struct {
	ServiceName      string
	Version          string
	Logger           *zap.Logger
	AllowedOrigins   []string
	TrustedProxies   []string
	RateLimitRPS     float64
	RateLimitBurst   int
	SessionCookie    string
	HealthChecks     map[string]httpapi.Pinger
	Sessions         authmw.CallerResolver
	AuthHandler      *authhttp.Handler
	ProjectsHandler  *projecthttp.Handler
	DashboardHandler *dashhttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	httpapi.RegisterValidators()

	r := gin.New()
	// X-Forwarded-For is honoured only from the listed proxies.
	if err := r.SetTrustedProxies(dep.TrustedProxies); err != nil {
		dep.Logger.Warn("invalid trusted proxies, ignoring forwarded headers", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.RequestID())
	r.Use(logger.GinMiddleware(dep.Logger))
	r.Use(logger.Recovery(dep.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(dep.RateLimitRPS, dep.RateLimitBurst)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.HealthChecks)
	healthHandler.RegisterRoutes(r)

	pages := r.Group("")
	pages.Use(access.Middleware(access.NewRouter(dep.Sessions), dep.SessionCookie, dep.Logger))
	dep.DashboardHandler.Register(pages)

	api := r.Group("/api/v1")
	dep.AuthHandler.RegisterPublic(api)
	dep.ProjectsHandler.RegisterPublic(api)

	protected := api.Group("")
	protected.Use(authmw.RequireCaller(dep.Sessions, dep.SessionCookie))
	dep.AuthHandler.RegisterProtected(protected)
	dep.ProjectsHandler.Register(protected)

	return r
}
