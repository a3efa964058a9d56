package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/nextflix/internal/service"
	"github.com/user/nextflix/internal/utils"
)

// CreateReport 提交问题反馈
func (h *Handler) CreateReport(c *gin.Context) {
	var req service.ReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "subject and description are required")
		return
	}
	report, err := h.Reports.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{
		Code:    http.StatusCreated,
		Message: "received",
		Data:    gin.H{"status": "received", "report": report},
		Success: true,
	})
}

// ListReports 反馈列表，最新的在前
func (h *Handler) ListReports(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	reports, err := h.Reports.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"reports": reports})
}

// AdminReportDelete 删除反馈
func (h *Handler) AdminReportDelete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Reports.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"deleted": id})
}
