package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"phPortfolio/internal/ai"
	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/auth"
	"phPortfolio/internal/cache"
	"phPortfolio/internal/config"
	"phPortfolio/internal/cv"
	"phPortfolio/internal/github"
	"phPortfolio/internal/media"
	"phPortfolio/internal/notify"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/store"
)

// Dependencies 汇总路由层需要的全部服务。
type Dependencies struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	AsynqClient *asynq.Client
	Logger      *slog.Logger

	Store       *store.Store
	Cache       *cache.Cache
	Storage     *storage.Client
	Media       *media.Service
	GitHub      *github.Client
	AIGenerator *ai.Generator
	Notifier    *notify.Publisher
	CVBuilder   *cv.Builder
	AuthService *auth.AuthService
}

// RegisterRoutes 注册全部 API 路由。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	authHandler := NewAuthHandler(
		deps.DB,
		deps.AuthService,
		deps.Redis,
		deps.Logger,
		cfg.Auth.LoginRateLimitPerHour,
		cfg.Auth.LoginLockThreshold,
		time.Duration(cfg.Auth.LoginLockTTLMinutes)*time.Minute,
		cfg.API.CookieDomain,
	)
	wsHandler := NewWsHandler(deps.Redis, deps.AuthService, deps.Logger, cfg.API.AllowedOrigins)
	publicHandler := NewPublicHandler(deps.Store, deps.Cache, deps.Logger)
	adminHandler := NewAdminHandler(deps.Store, deps.Cache, deps.Logger)
	mediaHandler := NewMediaHandler(deps.Media, deps.Logger, cfg.Media.MaxUploadBytes)
	importHandler := NewImportHandler(deps.GitHub, deps.AIGenerator, deps.Notifier, deps.Logger)
	cvHandler := NewCVHandler(deps.DB, deps.CVBuilder, deps.AsynqClient, deps.Storage, deps.Logger)

	authMiddleware := middleware.AuthMiddleware(deps.AuthService)
	passwordGate := middleware.RequirePasswordChangeCompletedMiddleware()

	// 公开站点接口，不需要认证。
	public := router.Group("/api")
	{
		public.GET("/entities", publicHandler.GetEntities)
		public.GET("/profile", publicHandler.GetProfile)
		public.GET("/skills", publicHandler.GetSkills)
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)
		v1.GET("/cv", cvHandler.GetDocument)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
			// 改密接口不能挂 passwordGate，否则首登用户被锁死。
			authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
		}

		admin := v1.Group("/admin")
		admin.Use(authMiddleware, passwordGate)
		{
			admin.GET("/form/:type", adminHandler.GetForm)
			admin.POST("/save/:type", adminHandler.Save)
			admin.DELETE("/delete/:type/:id", adminHandler.Delete)
			admin.GET("/data", adminHandler.GetData)
			admin.GET("/check", adminHandler.Check)
			admin.GET("/backup", adminHandler.Backup)

			admin.POST("/upload-image", mediaHandler.UploadImage)
			admin.POST("/delete-image", mediaHandler.DeleteImage)
			admin.GET("/media/browse", mediaHandler.Browse)

			admin.POST("/ai/import-github", importHandler.ImportGithub)

			admin.POST("/cv/generate-pdf", cvHandler.Generate)
			admin.GET("/cv/download-link", cvHandler.DownloadLink)
		}

		internal := v1.Group("/internal")
		internal.Use(middleware.InternalSecretMiddleware(cfg.API.InternalSecret))
		{
			internal.GET("/cv/print-data/:lang", cvHandler.PrintData)
		}
	}
}
