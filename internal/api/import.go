package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"costetl/internal/importer"
)

// Import 上传并导入 Excel 成本表 (SSE 流式响应)
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的表单数据"})
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	// 每次上传单独一个目录，保留原文件名作为 source_file
	runID := uuid.NewString()
	uploadDir := filepath.Join(h.uploadDir, runID)
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建上传目录失败"})
		return
	}
	defer os.RemoveAll(uploadDir)

	var paths []string
	for _, f := range files {
		path := filepath.Join(uploadDir, filepath.Base(f.Filename))
		if err := c.SaveUploadedFile(f, path); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
			return
		}
		paths = append(paths, path)
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	h.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"files":  len(paths),
	}).Info("upload import started")

	progressChan := h.coordinator.Import(c.Request.Context(), importer.ImportOptions{
		RunID:  runID,
		Files:  paths,
		Sheet:  c.PostForm("sheet"),
		DryRun: c.DefaultPostForm("dryRun", "false") == "true",
	})

	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}
