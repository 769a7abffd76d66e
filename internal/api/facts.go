package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"costetl/internal/model"
	"costetl/internal/parser"
	"costetl/internal/store"
)

// factPatchRequest 事实修改请求，缺省字段不修改
type factPatchRequest struct {
	Amount      *float64 `json:"amount"`
	EventDate   *string  `json:"eventDate"`
	PaymentDate *string  `json:"paymentDate"`
	Notes       *string  `json:"notes"`
}

type listFactsResponse struct {
	Items    []model.FactRecord `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// ListFacts 查询成本事实
// GET /api/facts?measure=&account=&sourceFile=&page=&pageSize=
func (h *Handler) ListFacts(c *gin.Context) {
	measure := model.Measure(strings.TrimSpace(c.Query("measure")))
	if measure != "" && !measure.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid measure"})
		return
	}

	page := parseIntWithDefault(c.Query("page"), 1)
	pageSize := parseIntWithDefault(c.Query("pageSize"), 100)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 100
	}

	items, total, err := h.store.ListFacts(c.Request.Context(), store.FactFilter{
		Measure:     measure,
		AccountCode: strings.TrimSpace(c.Query("account")),
		SourceFile:  strings.TrimSpace(c.Query("sourceFile")),
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []model.FactRecord{}
	}

	c.JSON(http.StatusOK, listFactsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetFact 获取单条事实
// GET /api/facts/:id
func (h *Handler) GetFact(c *gin.Context) {
	id, ok := parseFactID(c)
	if !ok {
		return
	}
	fact, err := h.store.GetFact(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fact)
}

// UpdateFact 修改金额/日期/备注
// PATCH /api/facts/:id
func (h *Handler) UpdateFact(c *gin.Context) {
	id, ok := parseFactID(c)
	if !ok {
		return
	}

	var req factPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	patch := store.FactPatch{AmountJPY: req.Amount, Notes: req.Notes}
	var err error
	if patch.EventDate, err = parsePatchDate(req.EventDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid eventDate"})
		return
	}
	if patch.PaymentDate, err = parsePatchDate(req.PaymentDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid paymentDate"})
		return
	}

	ctx := c.Request.Context()
	existing, err := h.store.GetFact(ctx, id)
	if err != nil {
		h.storeError(c, err)
		return
	}
	if msg := checkFactPatch(existing, patch); msg != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}

	if err := h.store.UpdateFact(ctx, id, patch); err != nil {
		h.storeError(c, err)
		return
	}
	updated, err := h.store.GetFact(ctx, id)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// checkFactPatch 修改后的事实仍需满足：金额非零；确定金额的支付日不早于发生日
func checkFactPatch(existing *model.FactRecord, patch store.FactPatch) string {
	if patch.AmountJPY != nil && *patch.AmountJPY == 0 {
		return "amount must be non-zero"
	}
	if existing.Measure != model.MeasureConfirmed {
		return ""
	}

	eventDate := existing.EventDate
	if patch.EventDate != nil {
		eventDate = patch.EventDate
	}
	paymentDate := existing.PaymentDate
	if patch.PaymentDate != nil {
		paymentDate = patch.PaymentDate
	}
	if eventDate != nil && paymentDate != nil && paymentDate.Before(*eventDate) {
		return "paymentDate must not be before eventDate"
	}
	return ""
}

func parsePatchDate(v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t := parser.ParseDate(*v)
	if t == nil {
		return nil, errors.New("invalid date")
	}
	return t, nil
}

func parseFactID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseIntWithDefault(v string, d int) int {
	if v == "" {
		return d
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return i
}
