package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/nextflix/internal/middleware"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/service"
	"github.com/user/nextflix/internal/utils"
)

const maxUploadBytes = 32 << 20

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin 口令登录，返回 Bearer 令牌
func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Auth.VerifyAdmin(req.Password); err != nil {
		h.Log.Warn("管理员登录失败", "ip", c.ClientIP(), "error", err)
		h.respondError(c, err)
		return
	}

	token, expiresAt, err := middleware.GenerateToken("admin", middleware.RoleAdmin, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Log.Info("管理员登录", "ip", c.ClientIP())
	utils.Success(c, gin.H{"token": token, "token_type": "Bearer", "expires_at": expiresAt})
}

// AdminMovies 电影列表（可按标题、导演、演员、类型、标签筛选）
func (h *Handler) AdminMovies(c *gin.Context) {
	movies, err := h.Movies.List(c.Request.Context(), model.SearchFilter{
		Title:    c.Query("title"),
		Director: c.Query("director"),
		Actor:    c.Query("actor"),
		Genre:    c.Query("genres"),
		Tags:     c.Query("tags"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"count": len(movies), "results": movies})
}

func (h *Handler) AdminMovie(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	m, err := h.Movies.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, m)
}

func (h *Handler) AdminMovieCreate(c *gin.Context) {
	var req service.MovieInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.Movies.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Created(c, m)
}

func (h *Handler) AdminMovieUpdate(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req service.MovieInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.Movies.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, m)
}

func (h *Handler) AdminMovieDelete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Movies.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"deleted": id})
}

// AdminUploadCSV multipart 字段 csv_file
func (h *Handler) AdminUploadCSV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("csv_file")
	if err != nil {
		utils.BadRequest(c, "No file uploaded")
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.BadRequest(c, "No file uploaded")
		return
	}
	defer f.Close()

	res, err := h.Importer.Import(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, res)
}
