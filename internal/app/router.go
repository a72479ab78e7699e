package app

import (
	"flowlearn_backend/internal/config"
	"flowlearn_backend/internal/middleware"
	"flowlearn_backend/internal/model"
	"flowlearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerUserRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// Stripe authenticates webhooks with its own signature header, not
		// a user token.
		public.POST("/webhooks/stripe", c.subscription.Webhook)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.user.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.POST("/user/avatar/upload", c.user.UploadAvatar)

	rg.GET("/challenges", c.challenge.List)
	rg.GET("/challenges/:id", c.challenge.Get)

	rg.POST("/submissions", c.submission.Create)
	rg.GET("/submissions", c.submission.ListMine)
	rg.GET("/submissions/:id", c.submission.Get)
	rg.POST("/evaluate-workflow", c.submission.Evaluate)

	rg.POST("/translate", c.translation.Translate)

	rg.GET("/assessment/questions", c.assessment.GetQuestions)
	rg.POST("/assessment/submit", c.assessment.Submit)

	rg.GET("/achievements", c.achievement.GetMine)
	rg.GET("/leaderboard", c.achievement.Leaderboard)

	rg.POST("/subscriptions/checkout", c.subscription.CreateCheckout)
	rg.GET("/subscriptions/status", c.subscription.Status)

	// Invoked by trusted auth hooks, hence the role check.
	rg.POST("/send-auth-email", middleware.RoleMiddleware(model.Admin), c.email.Send)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/challenges", c.challenge.Create)
		admin.PUT("/challenges/:id", c.challenge.Update)
		admin.DELETE("/challenges/:id", c.challenge.Delete)
	}
}
