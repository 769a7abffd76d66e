package parser

import (
	"testing"

	"costetl/internal/model"
)

func newTestClassifier(t *testing.T) *RowClassifier {
	t.Helper()

	c, err := NewRowClassifier(Rules{
		AccountCodeColumn: "項目CD",
		AccountCodeRegex:  `^[A-Z]\.[0-9]+(\.[0-9]+)*$`,
		SubtotalKeywords:  []string{"合計", "小計", "累計", "売上合計", "kW単価"},
	})
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	return c
}

func detailRow(cells ...model.Cell) *model.DetailRow {
	return &model.DetailRow{
		Columns: []string{"項目CD", "内容", "協力会社", "金額"},
		Cells:   cells,
	}
}

func TestIsDetailRow_ValidCode(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	row := detailRow(model.Text("A.1.1"), model.Text("工事費"), model.Text("ABC建設"), model.Number(1000000))
	if !c.IsDetailRow(row) {
		t.Fatalf("A.1.1 without subtotal keyword should be a detail row")
	}

	row = detailRow(model.Text(" B.12 "), model.Text("設計費"), model.Empty(), model.Number(5))
	if !c.IsDetailRow(row) {
		t.Fatalf("trimmed code B.12 should be a detail row")
	}
}

func TestIsDetailRow_SubtotalKeywordRejects(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	row := detailRow(model.Text("A.1.1"), model.Text("工事費 小計"), model.Empty(), model.Number(1000000))
	if c.IsDetailRow(row) {
		t.Fatalf("row containing 小計 must be rejected")
	}
}

func TestIsDetailRow_InvalidCodes(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	for _, code := range []model.Cell{
		model.Empty(),
		model.Text("A"),
		model.Text("a.1"),
		model.Text("A.1.x"),
		model.Text("XA.1"),
		model.Number(1.1),
	} {
		row := detailRow(code, model.Text("工事費"), model.Empty(), model.Number(1))
		if c.IsDetailRow(row) {
			t.Fatalf("code %q should not be a detail row", code.String())
		}
	}
}

func TestNewRowClassifier_InvalidRegex(t *testing.T) {
	t.Parallel()

	if _, err := NewRowClassifier(Rules{AccountCodeRegex: "("}); err == nil {
		t.Fatalf("want compile error")
	}
}
