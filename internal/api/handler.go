package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"costetl/internal/importer"
	"costetl/internal/integrate"
	"costetl/internal/store"
)

// Handler API 处理器
type Handler struct {
	store       *store.Store
	coordinator *importer.Coordinator
	matcher     *integrate.Matcher
	uploadDir   string
	logger      logrus.FieldLogger
}

// NewHandler 创建 API 处理器；上传的文件暂存在 uploadDir
func NewHandler(st *store.Store, coordinator *importer.Coordinator, matcher *integrate.Matcher, uploadDir string, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		store:       st,
		coordinator: coordinator,
		matcher:     matcher,
		uploadDir:   uploadDir,
		logger:      logger,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 数据导入
	router.POST("/import", h.Import)
	router.GET("/imports", h.ListImports)

	// 成本事实
	router.GET("/facts", h.ListFacts)
	router.GET("/facts/:id", h.GetFact)
	router.PATCH("/facts/:id", h.UpdateFact)

	// 数据导出
	router.GET("/export", h.Export)

	// 协力会社对账
	router.GET("/vendors/unmatched", h.ListUnmatchedVendors)
}
