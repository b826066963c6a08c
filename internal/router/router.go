package router

import (
	"log/slog"
	"net/http"

	"opinions/internal/anon"
	"opinions/internal/config"
	"opinions/internal/handlers"
	"opinions/internal/middleware"
	"opinions/internal/observability/metrics"
	"opinions/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// New 组装服务、中间件和路由
func New(cfg *config.Config, conn *gorm.DB, mailer services.Mailer, google services.GoogleProvider) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.MustRegister()

	r := gin.New()
	// 只信任配置的反向代理，否则 X-Forwarded-For / X-Real-IP 可被伪造绕过限流
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		slog.Error("invalid trusted proxies, forwarding headers ignored", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.Cors(cfg.CORSOrigins))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 600, HttpOnly: true, Secure: cfg.IsProduction(), SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("opinions_session", store))

	RegisterRoutes(r, cfg, conn, mailer, google)
	return r
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, conn *gorm.DB, mailer services.Mailer, google services.GoogleProvider) {
	// Services
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	topics := services.NewTopicService(conn)
	notifications := services.NewNotificationService(conn)
	authService := services.NewAuthService(conn, mailer, google, tokens)
	opinions := services.NewOpinionService(conn, topics)
	comments := services.NewCommentService(conn, anon.New(cfg.AnonSecret), notifications)
	users := services.NewUserService(conn)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, google, cfg.ClientURL)
	opinionHandler := handlers.NewOpinionHandler(opinions)
	commentHandler := handlers.NewCommentHandler(comments)
	topicHandler := handlers.NewTopicHandler(topics)
	userHandler := handlers.NewUserHandler(users)
	notificationHandler := handlers.NewNotificationHandler(notifications)
	seoHandler := handlers.NewSEOHandler(opinions, cfg.SiteURL, cfg.ClientURL)

	authRequired := middleware.AuthRequired(tokens)

	// 公共路由 (Public Routes)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/feed.xml", seoHandler.RSSFeed)
	r.GET("/robots.txt", seoHandler.RobotsTxt)

	api := r.Group("/api")

	// 认证 (Auth)
	auth := api.Group("/auth")
	{
		auth.POST("/otp/send", middleware.RateLimit(cfg.OTPRatePerMinute, cfg.OTPBurst, nil), authHandler.SendOTP)                 // 发送验证码
		auth.POST("/otp/verify", middleware.RateLimit(cfg.OTPVerifyRatePerMinute, cfg.OTPVerifyBurst, nil), authHandler.VerifyOTP) // 校验验证码并登录
		auth.POST("/google", authHandler.Google)                                                                                   // Google ID token / 授权码登录
		auth.GET("/google/login", authHandler.GoogleLogin)                                                                         // 跳转 Google 授权
		auth.GET("/google/callback", authHandler.GoogleCallback)                                                                   // Google 回调
		auth.GET("/user", authRequired, authHandler.User)                                                                          // 当前用户
	}

	// 观点 (Opinions)
	opinionGroup := api.Group("/opinions")
	{
		opinionGroup.GET("", middleware.LoadUser(tokens), opinionHandler.List)   // feed，登录后可看到自己的匿名观点
		opinionGroup.POST("", authRequired, opinionHandler.Create)               // 发布观点
		opinionGroup.GET("/:id", opinionHandler.Get)                             // 详情，浏览数 +1
		opinionGroup.PUT("/:id/interact", authRequired, opinionHandler.Interact) // 有用 / 没用
	}

	// 评论 (Comments)
	commentGroup := api.Group("/comments")
	{
		commentGroup.POST("", authRequired, commentHandler.Create)       // 发表评论或回复
		commentGroup.GET("/:opinionId", commentHandler.List)             // 扁平列表
		commentGroup.GET("/:opinionId/thread", commentHandler.Thread)    // 树形结构
		commentGroup.DELETE("/:id", authRequired, commentHandler.Delete) // 删除评论
	}

	// 话题 (Topics)
	api.GET("/topics", topicHandler.List)
	api.POST("/topics", authRequired, topicHandler.Create)

	// 用户主页
	api.GET("/users/:id", userHandler.Profile)

	// 通知 (Notifications)
	notificationGroup := api.Group("/notifications", authRequired)
	{
		notificationGroup.GET("", notificationHandler.List)
		notificationGroup.POST("/read-all", notificationHandler.ReadAll)
		notificationGroup.POST("/:id/read", notificationHandler.Read)
		notificationGroup.DELETE("/:id", notificationHandler.Delete)
	}
}
