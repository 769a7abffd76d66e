package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"costetl/internal/integrate"
	"costetl/internal/model"
)

// ListUnmatchedVendors 未关联既存系统的协力会社及候选
// GET /api/vendors/unmatched?q=
func (h *Handler) ListUnmatchedVendors(c *gin.Context) {
	ctx := c.Request.Context()

	names, err := h.store.UnmatchedVendorNames(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 每次请求重新读取参照数据
	h.matcher.Reset()
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		names = filterNames(names, q)
	}
	rows := integrate.BuildUnmatchedReport(ctx, h.matcher, names)
	if rows == nil {
		rows = []model.UnmatchedVendor{}
	}
	c.JSON(http.StatusOK, gin.H{"items": rows, "total": len(rows)})
}

// filterNames 按输入顺序保留依次包含 q 各字符（忽略大小写与变音符号）的名称
func filterNames(names []string, q string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if fuzzy.MatchNormalizedFold(q, name) {
			out = append(out, name)
		}
	}
	return out
}
