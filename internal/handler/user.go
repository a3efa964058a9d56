package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/service"
	"github.com/user/nextflix/internal/utils"
)

type preferencesRequest struct {
	UserID      string                 `json:"user_id" binding:"required,notblank,max=128"`
	Preferences *model.PreferenceInput `json:"preferences" binding:"required"`
}

// SavePreferences 保存偏好，提供的列表整体替换
func (h *Handler) SavePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Missing user_id or preferences")
		return
	}
	p, err := h.Users.SavePreferences(c.Request.Context(), req.UserID, *req.Preferences)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"status": "saved", "user_id": p.UserID, "preferences": p.Preferences})
}

// GetPreferences 用户不存在时返回 404
func (h *Handler) GetPreferences(c *gin.Context) {
	p, err := h.Users.GetProfile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"user_id": p.UserID, "preferences": p.Preferences})
}

type listItemRequest struct {
	UserID string `json:"user_id" binding:"required,notblank,max=128"`
	Movie  string `json:"movie" binding:"required,notblank,max=255"`
}

// AddToList 返回 gin handler：加入想看/收藏/看过
func (h *Handler) AddToList(kind service.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.changeList(c, kind, h.Users.AddToList)
	}
}

// RemoveFromList 返回 gin handler：移出想看/收藏/看过
func (h *Handler) RemoveFromList(kind service.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.changeList(c, kind, h.Users.RemoveFromList)
	}
}

func (h *Handler) changeList(c *gin.Context, kind service.ListKind,
	fn func(ctx context.Context, kind service.ListKind, userID, movie string) (*model.Profile, error)) {
	var req listItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Missing user_id or movie")
		return
	}
	p, err := fn(c.Request.Context(), kind, req.UserID, req.Movie)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, userLists(p))
}

// GetList 未知用户返回空列表
func (h *Handler) GetList(kind service.ListKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.Param("user_id"))
		list, err := h.Users.List(c.Request.Context(), kind, userID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		utils.Success(c, gin.H{"user_id": userID, string(kind): list})
	}
}

func userLists(p *model.Profile) gin.H {
	return gin.H{
		"user_id":   p.UserID,
		"watchlist": p.Watchlist,
		"seen":      p.Seen,
		"favorites": p.Favorites,
	}
}

type feedbackRequest struct {
	UserID string `json:"user_id" binding:"required,notblank,max=128"`
	Movie  string `json:"movie" binding:"required,notblank,max=255"`
	Rating *int   `json:"rating" binding:"required"`
	Text   string `json:"text" binding:"max=2000"`
}

// SaveFeedback 评分 1..5，同一电影后写覆盖
func (h *Handler) SaveFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Missing user_id, movie, or rating")
		return
	}
	entry, err := h.Users.SaveFeedback(c.Request.Context(), req.UserID, req.Movie, *req.Rating, req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"status": "saved", "entry": entry})
}

// GetFeedback 用户全部反馈
func (h *Handler) GetFeedback(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	fb, err := h.Users.Feedback(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"user_id": userID, "feedback": fb})
}
