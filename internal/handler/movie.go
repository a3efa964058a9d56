package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/recommend"
	"github.com/user/nextflix/internal/service"
	"github.com/user/nextflix/internal/utils"
)

const maxTop = 100

// Search 按标题、类型、导演、演员、标签搜索
func (h *Handler) Search(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}
	results, err := h.Catalog.Search(c.Request.Context(), model.SearchFilter{
		Title:    c.Query("title"),
		Genre:    c.Query("genre"),
		Director: c.Query("director"),
		Actor:    c.Query("actor"),
		Tags:     c.Query("tags"),
		Limit:    limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"count": len(results), "results": results})
}

// Similar 相似电影
func (h *Handler) Similar(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		utils.BadRequest(c, "Missing 'title' query parameter")
		return
	}
	top, ok := queryInt(c, "top", recommend.DefaultSimilarTop)
	if !ok {
		return
	}
	if top > maxTop {
		top = maxTop
	}

	res, err := h.Recommend.FindSimilar(c.Request.Context(), service.SimilarRequest{
		Title:  title,
		Top:    top,
		UserID: strings.TrimSpace(c.Query("user_id")),
		Enrich: queryBool(c, "enrich"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, res)
}

// Movie 单部电影详情
func (h *Handler) Movie(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		utils.BadRequest(c, "Missing 'title' query parameter")
		return
	}
	m, err := h.Recommend.GetMovie(c.Request.Context(), title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, m)
}

// MovieEnrich 评分、简介与流媒体平台
func (h *Handler) MovieEnrich(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		utils.BadRequest(c, "Missing 'title' query parameter")
		return
	}
	m, e, err := h.Recommend.EnrichMovie(c.Request.Context(), title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"movie": m, "enrichment": e})
}

// CatalogOptions 前端下拉选项
func (h *Handler) CatalogOptions(c *gin.Context) {
	opts, err := h.Catalog.Options(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, opts)
}

type recommendUserRequest struct {
	UserID string `json:"user_id" binding:"required,notblank,max=128"`
	TopN   *int   `json:"top_n"`
	Enrich bool   `json:"enrich"`
}

// RecommendUser 基于用户偏好推荐
func (h *Handler) RecommendUser(c *gin.Context) {
	var req recommendUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	top := recommend.DefaultUserTop
	if req.TopN != nil {
		top = *req.TopN
	}
	if top > maxTop {
		top = maxTop
	}

	userID := strings.TrimSpace(req.UserID)
	recs, err := h.Recommend.RecommendForUser(c.Request.Context(), userID, top, req.Enrich)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"user_id": userID, "recommendations": recs})
}
