package exporter

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"costetl/internal/model"
	"costetl/internal/store"
)

// 输出工作簿的 Sheet 名
const (
	SheetFacts   = "facts"
	SheetSummary = "summary"
)

const pageSize = 1000

var factHeader = []interface{}{
	"cost_id", "pjcd", "account_code", "vendor_name", "measure", "amount_jpy",
	"event_date", "payment_date", "notes", "source_file", "source_row",
}

var measureOrder = []model.Measure{model.MeasureBudget, model.MeasureActualOrPlan, model.MeasureConfirmed}

// Exporter 成本事实导出器：明细 Sheet + 科目×口径汇总 Sheet
type Exporter struct {
	store *store.Store
}

// NewExporter 创建导出器
func NewExporter(st *store.Store) *Exporter {
	return &Exporter{store: st}
}

// ExportOptions 导出条件（分页字段忽略）
type ExportOptions struct {
	Filter store.FactFilter
}

// Export 导出 Excel；progress 可为 nil
func (e *Exporter) Export(ctx context.Context, opts ExportOptions, progress func(ProgressEvent)) (*excelize.File, error) {
	facts, err := e.collectFacts(ctx, opts.Filter, progress)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetFacts); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(progress, 60, "写入明细", len(facts))
	if err := writeFacts(f, facts, amountStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(progress, 85, "写入汇总", len(facts))
	if err := writeSummary(f, facts, amountStyle); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "完成", len(facts))
	return f, nil
}

func (e *Exporter) collectFacts(ctx context.Context, filter store.FactFilter, progress func(ProgressEvent)) ([]model.FactRecord, error) {
	filter.Limit = pageSize
	filter.Offset = 0

	var out []model.FactRecord
	for {
		page, total, err := e.store.ListFacts(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("读取成本事实失败: %w", err)
		}
		out = append(out, page...)
		if total > 0 {
			reportProgress(progress, len(out)*50/total, "读取数据", len(out))
		}
		if len(page) < pageSize || len(out) >= total {
			return out, nil
		}
		filter.Offset += pageSize
	}
}

func writeFacts(f *excelize.File, facts []model.FactRecord, amountStyle int) error {
	if err := f.SetSheetRow(SheetFacts, "A1", &factHeader); err != nil {
		return err
	}
	for i, fact := range facts {
		row := []interface{}{
			fact.ID, fact.PJCD, fact.AccountCode, derefString(fact.VendorName), string(fact.Measure), fact.AmountJPY,
			formatDate(fact.EventDate), formatDate(fact.PaymentDate), fact.Notes, fact.SourceFile, fact.SourceRow,
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetFacts, axis, &row); err != nil {
			return err
		}
	}
	if len(facts) > 0 {
		last := fmt.Sprintf("F%d", len(facts)+1)
		if err := f.SetCellStyle(SheetFacts, "F2", last, amountStyle); err != nil {
			return err
		}
	}
	return f.SetPanes(SheetFacts, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// writeSummary 科目×口径合计，最后一行为总计
func writeSummary(f *excelize.File, facts []model.FactRecord, amountStyle int) error {
	totals := make(map[string]map[model.Measure]float64)
	grand := make(map[model.Measure]float64)
	for _, fact := range facts {
		byMeasure, ok := totals[fact.AccountCode]
		if !ok {
			byMeasure = make(map[model.Measure]float64)
			totals[fact.AccountCode] = byMeasure
		}
		byMeasure[fact.Measure] += fact.AmountJPY
		grand[fact.Measure] += fact.AmountJPY
	}

	accounts := make([]string, 0, len(totals))
	for code := range totals {
		accounts = append(accounts, code)
	}
	sort.Strings(accounts)

	header := []interface{}{"account_code"}
	for _, m := range measureOrder {
		header = append(header, string(m))
	}
	if err := f.SetSheetRow(SheetSummary, "A1", &header); err != nil {
		return err
	}

	rowNo := 2
	writeRow := func(label string, values map[model.Measure]float64) error {
		row := []interface{}{label}
		for _, m := range measureOrder {
			row = append(row, values[m])
		}
		axis, err := excelize.CoordinatesToCellName(1, rowNo)
		if err != nil {
			return err
		}
		rowNo++
		return f.SetSheetRow(SheetSummary, axis, &row)
	}
	for _, code := range accounts {
		if err := writeRow(code, totals[code]); err != nil {
			return err
		}
	}
	if err := writeRow("合計", grand); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(measureOrder)+1, rowNo-1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetSummary, "B2", last, amountStyle)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
