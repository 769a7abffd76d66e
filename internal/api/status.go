package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"costetl/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized bool             `json:"initialized"` // 是否已有事实数据
	Stats       *store.Stats     `json:"stats"`
	LastRunID   string           `json:"lastRunId"`
	LastRunAt   string           `json:"lastRunAt"`
	LastImport  *store.ImportLog `json:"lastImport,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.store.GetStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := StatusResponse{
		Initialized: stats.Facts > 0,
		Stats:       stats,
	}
	if v, err := h.store.GetSetting(ctx, store.SettingLastRunID); err == nil {
		resp.LastRunID = v
	} else if !errors.Is(err, store.ErrNotFound) {
		h.logger.WithError(err).Warn("failed to read last run id")
	}
	if v, err := h.store.GetSetting(ctx, store.SettingLastRunAt); err == nil {
		resp.LastRunAt = v
	}
	if logs, err := h.store.ListImportLogs(ctx, 1); err == nil && len(logs) > 0 {
		resp.LastImport = &logs[0]
	}

	c.JSON(http.StatusOK, resp)
}

// ListImports 最近的导入日志
// GET /api/imports
func (h *Handler) ListImports(c *gin.Context) {
	limit := parseIntWithDefault(c.Query("limit"), 50)
	logs, err := h.store.ListImportLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []store.ImportLog{}
	}
	c.JSON(http.StatusOK, gin.H{"items": logs, "total": len(logs)})
}
