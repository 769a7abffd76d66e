package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"costetl/internal/exporter"
	"costetl/internal/model"
	"costetl/internal/store"
)

// Export 导出成本事实 Excel（条件同 /facts）
// GET /api/export
func (h *Handler) Export(c *gin.Context) {
	measure := model.Measure(strings.TrimSpace(c.Query("measure")))
	if measure != "" && !measure.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid measure"})
		return
	}

	file, err := exporter.NewExporter(h.store).Export(c.Request.Context(), exporter.ExportOptions{
		Filter: store.FactFilter{
			Measure:     measure,
			AccountCode: strings.TrimSpace(c.Query("account")),
			SourceFile:  strings.TrimSpace(c.Query("sourceFile")),
		},
	}, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("cost-facts-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("failed to write export")
	}
}
