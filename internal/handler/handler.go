package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/nextflix/internal/config"
	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/recommend"
	"github.com/user/nextflix/internal/repository"
	"github.com/user/nextflix/internal/service"
	"github.com/user/nextflix/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Config    *config.Config
	Log       *logger.Logger
	Recommend *service.RecommendationService
	Users     *service.UserService
	Catalog   *service.CatalogService
	Movies    *service.MovieAdminService
	Importer  *service.Importer
	Reports   *service.ReportService
	Auth      *service.AuthService
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config, repos *repository.Repositories, enricher service.Enrichment, pub events.Publisher, log *logger.Logger) *Handler {
	catalog := service.NewCatalogService(repos.Movie)

	return &Handler{
		Config:    cfg,
		Log:       log,
		Recommend: service.NewRecommendationService(repos.Movie, repos.Profiles, enricher, pub, log),
		Users:     service.NewUserService(repos.Profiles, pub, log),
		Catalog:   catalog,
		Movies:    service.NewMovieAdminService(repos.Movie, catalog, pub, log),
		Importer:  service.NewImporter(repos.Movie, catalog, pub, log),
		Reports:   service.NewReportService(repos.Report, pub, log),
		Auth:      service.NewAuthService(cfg.AdminPasswordHash),
	}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError 将业务错误映射为 HTTP 状态码
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recommend.ErrMovieNotFound):
		utils.NotFound(c, "Movie not found")
	case errors.Is(err, recommend.ErrProfileNotFound):
		utils.NotFound(c, "No preferences found for user")
	case errors.Is(err, service.ErrNotFound):
		utils.NotFound(c, "")
	case errors.Is(err, recommend.ErrNoMetadata),
		errors.Is(err, recommend.ErrNoPreferences),
		errors.Is(err, service.ErrInvalidRequest):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrDuplicateTitle):
		utils.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrAdminDisabled):
		utils.Forbidden(c, err.Error())
	default:
		h.Log.Error("请求处理失败", "path", c.Request.URL.Path, "error", err)
		_ = c.Error(err)
		utils.InternalServerError(c, "")
	}
}

// bindError 请求体格式或校验失败
func bindError(c *gin.Context, err error) {
	utils.BadRequest(c, "invalid request: "+err.Error())
}

// queryInt 解析整数查询参数，缺省时返回 def
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		utils.BadRequest(c, "invalid '"+name+"' query parameter")
		return 0, false
	}
	return n, true
}

func queryBool(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(c.Query(name)))
	return b
}

// paramID 解析路径中的数字 ID
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}
