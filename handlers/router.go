package handlers

import (
	"zhiyi-cms/editor"
	"zhiyi-cms/helper"
	"zhiyi-cms/middleware"
	"zhiyi-cms/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	DB              *gorm.DB
	Helper          *helper.HTTPHelper
	Log             zerolog.Logger
	ArticleService  services.ArticleService
	AuthService     services.AuthService
	SettingsService services.SettingsService
	Generator       editor.Generator
	Drafts          *editor.Store
	LoginLimiter    *middleware.RateLimiter
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logging(d.Log),
		middleware.Recovery(d.Log),
		middleware.CORS(),
		middleware.Metrics(),
	)

	health := NewHealthHandler(d.DB)
	articles := NewArticleHandler(d.ArticleService, d.Helper)
	auth := NewAuthHandler(d.AuthService, d.Helper)
	settings := NewSettingsHandler(d.SettingsService, d.Helper)
	drafts := NewDraftHandler(d.Drafts, d.ArticleService, d.Generator, d.Helper)

	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	public := v1.Group("/public")
	{
		public.GET("/articles", articles.GetPublicArticles)
		public.GET("/articles/:id", articles.GetPublicArticle)
		public.GET("/articles/:id/reader", articles.GetReadingView)
		public.GET("/categories/:category/articles", articles.GetCategoryArticles)
		public.GET("/search", articles.SearchPublic)
	}

	authGroup := v1.Group("/auth")
	{
		authGroup.GET("/admin-exists", auth.AdminExists)
		authGroup.POST("/register", auth.Register)
		login := []gin.HandlerFunc{auth.Login}
		if d.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{d.LoginLimiter.Middleware(d.Helper)}, login...)
		}
		authGroup.POST("/login", login...)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.Helper), middleware.RequireRole(d.Helper, "admin"))
	{
		admin.GET("/profile", auth.GetProfile)
		admin.PUT("/password", auth.ChangePassword)
		admin.GET("/dashboard", articles.GetDashboard)
		admin.GET("/search", articles.SearchArticles)

		admin.GET("/articles", articles.GetArticles)
		admin.GET("/articles/:id", articles.GetArticle)
		admin.POST("/articles", articles.CreateArticle)
		admin.PUT("/articles/:id", articles.UpdateArticle)
		admin.DELETE("/articles/:id", articles.DeleteArticle)

		admin.GET("/settings", settings.GetSettings)
		admin.PUT("/settings", settings.UpdateSettings)
		admin.POST("/settings/test", settings.TestConnection)

		admin.POST("/drafts", drafts.OpenDraft)
		admin.GET("/drafts/:draft_id", drafts.GetDraft)
		admin.PATCH("/drafts/:draft_id", drafts.UpdateHeader)
		admin.DELETE("/drafts/:draft_id", drafts.CloseDraft)
		admin.POST("/drafts/:draft_id/save", drafts.SaveDraft)
		admin.POST("/drafts/:draft_id/items/:collection", drafts.AppendItem)
		admin.PUT("/drafts/:draft_id/items/:collection/:item_id", drafts.UpdateItem)
		admin.DELETE("/drafts/:draft_id/items/:collection/:item_id", drafts.RemoveItem)
		admin.POST("/drafts/:draft_id/items/:collection/:item_id/autofill", drafts.AutoFill)
	}

	return router
}
