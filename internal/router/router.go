package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/cursova/cursova-api/internal/handler"
	"github.com/cursova/cursova-api/internal/middleware"
	"github.com/cursova/cursova-api/internal/models"
	"github.com/cursova/cursova-api/internal/service"
	"github.com/cursova/cursova-api/pkg/config"
	"github.com/cursova/cursova-api/pkg/logger"
	corsmiddleware "github.com/cursova/cursova-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cursova/cursova-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Registrations *handler.RegistrationHandler
	Users         *handler.UserHandler
	Invitations   *handler.InvitationHandler
	Courses       *handler.CourseHandler
	Blog          *handler.BlogHandler
	Subscribers   *handler.SubscriberHandler
	Metrics       *handler.MetricsHandler
}

// Deps carries the cross-cutting services middleware needs.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    *service.AuthService
	Metrics *service.MetricsService
	Ready   func() error
}

// New builds the gin engine with all routes mounted.
func New(deps Deps, h Handlers) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", h.Metrics.Prometheus)

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authRequired := middleware.JWT(deps.Auth)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group(deps.Config.APIPrefix)

	// Public surface: no token required.
	api.POST("/registrations", h.Registrations.Submit)
	api.GET("/courses", h.Courses.List)
	api.GET("/blog", h.Blog.List)
	api.GET("/blog/categories", h.Blog.Categories)
	api.GET("/blog/:slug", h.Blog.Get)
	api.POST("/subscribers", h.Subscribers.Subscribe)
	api.POST("/auth/login", h.Auth.Login)

	// Onboarding: secured by action codes and invitation tokens, not JWTs.
	api.POST("/users/verify-email", h.Users.VerifyEmail)
	api.POST("/users/set-password", h.Users.SetPassword)
	api.GET("/invitations/verify", h.Invitations.Verify)
	api.POST("/invitations/accept", h.Invitations.Accept)

	authed := api.Group("")
	authed.Use(authRequired)
	{
		authed.GET("/auth/me", h.Auth.Me)
		authed.POST("/notifications/tokens", h.Subscribers.RegisterDevice)
		authed.GET("/courses/:id", h.Courses.Get)
	}

	moderation := api.Group("")
	moderation.Use(authRequired, staff)
	{
		moderation.GET("/registrations", h.Registrations.List)
		moderation.GET("/registrations/export", h.Registrations.Export)
		moderation.GET("/registrations/:id", h.Registrations.Get)
		moderation.PATCH("/registrations/:id", h.Registrations.Transition)
		moderation.DELETE("/registrations/:id", h.Registrations.Delete)

		moderation.GET("/invitations", h.Invitations.List)

		moderation.POST("/courses", h.Courses.Create)
		moderation.PUT("/courses/:id", h.Courses.Update)
		moderation.DELETE("/courses/:id", h.Courses.Delete)

		moderation.POST("/blog", h.Blog.CreatePost)
	}

	admin := api.Group("")
	admin.Use(authRequired, adminOnly)
	{
		admin.POST("/users", h.Users.Create)
		admin.GET("/users", h.Users.List)
		admin.DELETE("/users/:uid", h.Users.Delete)
		admin.POST("/users/:uid/resend-invitation", h.Users.ResendInvitation)
		admin.POST("/users/:uid/suspend", h.Users.Suspend)
		admin.POST("/users/:uid/reactivate", h.Users.Reactivate)
	}

	// Admins and the user themselves may read one profile.
	api.GET("/users/:uid", authRequired, middleware.RBAC(string(models.RoleAdmin), "SELF"), h.Users.Get)

	return r
}
