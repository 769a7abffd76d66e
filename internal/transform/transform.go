package transform

import (
	"strings"

	"costetl/internal/model"
	"costetl/internal/parser"
)

// Columns 规范化列名配置（与 config.ColumnsConfig 字段一致，可直接转换）
type Columns struct {
	AccountCode string
	AccountName string
	Vendor      string
	PaymentDate string
	Notes       []string
	Measures    []model.MeasureColumn
}

// MeltMeasures 宽表一行展开为各口径事件，金额为空或为 0 的口径不产生事件
func MeltMeasures(row *model.DetailRow, cols Columns) []model.MeasureEvent {
	var events []model.MeasureEvent
	for _, m := range cols.Measures {
		amount := parser.ToNumber(row.Get(m.Amount))
		if amount == nil || *amount == 0 {
			continue
		}

		events = append(events, model.MeasureEvent{
			Measure:     m.Name,
			AmountJPY:   *amount,
			EventDate:   parser.ToDate(row.Get(m.Date)),
			PaymentDate: parser.ToDate(row.Get(cols.PaymentDate)),
			Notes:       CombineNotes(row, cols.Notes),
			SourceFile:  row.SourceFile,
			SourceRow:   row.SourceRow,
			SourceHash:  row.SourceHash,
		})
	}
	return events
}

// CombineNotes 按顺序拼接备注类列，以 " | " 分隔
func CombineNotes(row *model.DetailRow, columns []string) string {
	var parts []string
	for _, col := range columns {
		c := row.Get(col)
		if c.IsNull() {
			continue
		}
		if v := strings.TrimSpace(c.String()); v != "" && !model.IsNullMarker(v) {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}

// ToFacts 明细行转事实记录
func ToFacts(details []*model.DetailRow, cols Columns) []model.FactRecord {
	var facts []model.FactRecord
	for _, row := range details {
		accountCode := strings.TrimSpace(row.Get(cols.AccountCode).String())
		vendor := optionalText(row.Get(cols.Vendor))

		for _, ev := range MeltMeasures(row, cols) {
			facts = append(facts, model.FactRecord{
				AccountCode: accountCode,
				VendorName:  vendor,
				Measure:     ev.Measure,
				AmountJPY:   ev.AmountJPY,
				EventDate:   ev.EventDate,
				PaymentDate: ev.PaymentDate,
				Notes:       ev.Notes,
				SourceFile:  ev.SourceFile,
				SourceRow:   ev.SourceRow,
				SourceHash:  ev.SourceHash,
			})
		}
	}
	return facts
}

// optionalText 去空白后的文本，缺失值返回 nil
func optionalText(c model.Cell) *string {
	if c.IsNull() {
		return nil
	}
	v := strings.TrimSpace(c.String())
	if model.IsNullMarker(v) {
		return nil
	}
	return &v
}
