package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/nextflix/internal/handler"
	"github.com/user/nextflix/internal/middleware"
	"github.com/user/nextflix/internal/service"
)

// New 创建 gin 引擎并挂载全局中间件与全部路由
func New(h *handler.Handler, limiter *middleware.RateLimiter) *gin.Engine {
	middleware.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.Logger(h.Log))
	r.Use(middleware.Security())
	r.Use(middleware.CORS(h.Config.CORSOrigin))

	RegisterRoutes(r, h, limiter)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler, limiter *middleware.RateLimiter) {
	// 健康检查与指标
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 公开 API ====================
	// 同一组接口同时挂载在根路径与 /api 下
	for _, g := range []*gin.RouterGroup{r.Group(""), r.Group("/api")} {
		if limiter != nil {
			g.Use(middleware.RateLimit(limiter))
		}
		registerPublic(g, h)
	}

	// ==================== 管理后台 ====================
	r.POST("/admin/login", h.AdminLogin)
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin(h.Config.AppSecret))
	{
		admin.GET("/movies", h.AdminMovies)
		admin.GET("/movies/:id", h.AdminMovie)
		admin.POST("/movies", h.AdminMovieCreate)
		admin.PUT("/movies/:id", h.AdminMovieUpdate)
		admin.DELETE("/movies/:id", h.AdminMovieDelete)

		admin.POST("/upload_csv", h.AdminUploadCSV)

		admin.GET("/reports", h.ListReports)
		admin.DELETE("/reports/:id", h.AdminReportDelete)
	}
}

func registerPublic(g *gin.RouterGroup, h *handler.Handler) {
	g.GET("/search", h.Search)
	g.GET("/similar", h.Similar)
	g.GET("/movie", h.Movie)
	g.GET("/movie/enrich", h.MovieEnrich)
	g.GET("/catalog/options", h.CatalogOptions)
	g.POST("/recommend/user", h.RecommendUser)

	user := g.Group("/user")
	{
		user.POST("/preferences", h.SavePreferences)
		user.GET("/preferences/:user_id", h.GetPreferences)

		for _, kind := range []service.ListKind{service.ListWatchlist, service.ListFavorites, service.ListSeen} {
			path := "/" + string(kind)
			user.POST(path, h.AddToList(kind))
			user.POST(path+"/remove", h.RemoveFromList(kind))
			user.GET(path+"/:user_id", h.GetList(kind))
		}

		user.POST("/feedback", h.SaveFeedback)
		user.GET("/feedback/:user_id", h.GetFeedback)
	}

	g.POST("/reports", h.CreateReport)
	g.GET("/reports", h.ListReports)
}
