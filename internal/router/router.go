package router

import (
	"net/http"
	"time"

	"sufganiot/internal/config"
	"sufganiot/internal/handlers"
	"sufganiot/internal/middleware"
	"sufganiot/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New 组装 gin 引擎：全局中间件、模板、静态文件和全部路由
func New(svc *services.Services, cfg *config.Config, loginLimiter *middleware.IPRateLimiter) (*gin.Engine, error) {
	r := gin.Default()
	r.Use(middleware.Metrics())

	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("sufganiot_session", store))
	r.Use(middleware.LoadPrincipal(svc.Tokens))

	renderer, err := handlers.LoadTemplates()
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	r.Static(services.PhotoURLPrefix, svc.Photos.Dir())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(r, svc, loginLimiter)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, svc *services.Services, loginLimiter *middleware.IPRateLimiter) {
	// Handlers
	authHandler := handlers.NewAuthHandler(svc)
	adminHandler := handlers.NewAdminHandler(svc)
	votingHandler := handlers.NewVotingHandler(svc)
	resultsHandler := handlers.NewResultsHandler(svc)

	// 公共页面 (Public Pages)
	r.GET("/board", resultsHandler.Board)         // 排行榜（发布前显示等待页）
	r.GET("/gallery", resultsHandler.GalleryPage) // 作品相册

	api := r.Group("/api")
	api.GET("/health", handlers.Health) // 健康检查

	// 认证 (Auth)
	auth := api.Group("/auth")
	{
		auth.POST("/admin/login", middleware.RateLimit(loginLimiter), authHandler.AdminLogin)   // 管理员登录
		auth.POST("/couple/login", middleware.RateLimit(loginLimiter), authHandler.CoupleLogin) // 情侣登录码登录
		auth.GET("/verify", middleware.AuthRequired(), authHandler.Verify)                      // 当前身份
		auth.POST("/logout", authHandler.Logout)                                                // 退出登录
	}

	// 管理后台 (Admin)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/couples", adminHandler.ListCouples)                         // 情侣列表
		admin.POST("/couples", adminHandler.CreateCouple)                       // 新建情侣
		admin.POST("/couples/import", adminHandler.ImportCouples)               // XLSX 批量导入
		admin.PUT("/couples/:id", adminHandler.UpdateCouple)                    // 修改名称
		admin.DELETE("/couples/:id", adminHandler.DeleteCouple)                 // 级联删除
		admin.POST("/couples/:id/regenerate-code", adminHandler.RegenerateCode) // 重新生成登录码

		admin.GET("/sufganiot", adminHandler.ListSufganiot)          // 作品列表
		admin.POST("/sufganiot", adminHandler.CreateSufgania)        // 新建作品
		admin.PUT("/sufganiot/:id", adminHandler.UpdateSufgania)     // 修改作品
		admin.DELETE("/sufganiot/:id", adminHandler.DeleteSufgania)  // 级联删除
		admin.POST("/sufganiot/:id/photo", adminHandler.UploadPhoto) // 上传照片

		admin.GET("/results", adminHandler.Results)                     // 完整结果（不受发布限制）
		admin.GET("/results/export", adminHandler.ExportResults)        // 导出 XLSX
		admin.GET("/results/checks", adminHandler.PublishChecks)        // 发布前检查
		admin.POST("/results/publish", adminHandler.PublishResults)     // 发布结果
		admin.POST("/results/unpublish", adminHandler.UnpublishResults) // 撤回发布
		admin.GET("/comments", adminHandler.Comments)                   // 全部评论

		admin.GET("/settings", adminHandler.Settings)                 // 当前设置
		admin.POST("/voting/open", adminHandler.OpenVoting)           // 开启投票
		admin.POST("/voting/close", adminHandler.CloseVoting)         // 关闭投票
		admin.POST("/voting/end-time", adminHandler.SetVotingEndTime) // 设置截止时间（仅展示）

		admin.GET("/activities", adminHandler.Activities) // 最近活动
	}

	// 投票 (Voting)
	voting := api.Group("/voting")
	voting.GET("/status", votingHandler.Status) // 投票状态（公开）
	couple := voting.Group("")
	couple.Use(middleware.CoupleRequired())
	{
		couple.GET("/sufganiot", votingHandler.Sufganiot)                  // 可投票作品
		couple.GET("/my-votes", votingHandler.MyVotes)                     // 我的投票
		couple.POST("/rankings", votingHandler.SubmitRankings)             // 提交类别排名
		couple.POST("/comments", votingHandler.SubmitComment)              // 提交/更新评论
		couple.GET("/sufganiot/:id/comments", votingHandler.EntryComments) // 作品评论
	}

	// 结果 (Results)
	api.GET("/results", middleware.AuthRequired(), resultsHandler.Results) // 发布后可见
	api.GET("/results/gallery", resultsHandler.Gallery)                    // 公开相册
}
