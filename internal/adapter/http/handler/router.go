package handler

import (
	"github.com/robavelii/FusionForms/internal/adapter/http/middleware"
	redisStore "github.com/robavelii/FusionForms/internal/adapter/storage/redis"
	"github.com/robavelii/FusionForms/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	FormSvc        ports.FormService
	SubmissionSvc  ports.SubmissionService
	WebhookSvc     ports.WebhookService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	formHandler := NewFormHandler(deps.FormSvc)
	submissionHandler := NewSubmissionHandler(deps.SubmissionSvc)
	public := v1.Group("/public/forms")
	{
		public.GET("/:id", formHandler.GetPublished)
		public.POST("/:id/view", formHandler.TrackView)
		public.POST("/:id/submissions", rl("submit"), submissionHandler.SubmitPublic)
	}

	// --- JWT-authenticated routes (dashboard) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	webhookHandler := NewWebhookHandler(deps.WebhookSvc)

	forms := v1.Group("/forms", jwtAuth)
	{
		forms.POST("", rl("dashboard"), formHandler.Create)
		forms.GET("", rl("dashboard"), formHandler.List)
		forms.GET("/:id", rl("dashboard"), formHandler.Get)
		forms.POST("/:id/publish", rl("dashboard"), formHandler.Publish)
		forms.GET("/:id/analytics", rl("dashboard"), formHandler.Analytics)
		forms.GET("/:id/submissions", rl("dashboard"), submissionHandler.ListByForm)
		forms.POST("/:id/submissions", rl("submit"), submissionHandler.Submit)
		forms.POST("/:id/webhooks", rl("dashboard"), webhookHandler.Create)
		forms.GET("/:id/webhooks", rl("dashboard"), webhookHandler.ListByForm)
	}

	submissions := v1.Group("/submissions", jwtAuth)
	{
		submissions.GET("/:id", rl("dashboard"), submissionHandler.Get)
	}

	webhooks := v1.Group("/webhooks", jwtAuth)
	{
		webhooks.DELETE("/:id", rl("dashboard"), webhookHandler.Delete)
		webhooks.POST("/:id/test", rl("webhook_test"), webhookHandler.Test)
		webhooks.GET("/:id/logs", rl("dashboard"), webhookHandler.Logs)
	}

	return r
}
