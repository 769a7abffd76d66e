package exporter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"costetl/internal/model"
	"costetl/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "costetl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	paid := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	vendor := "ABC建設"
	_, err = st.LoadFacts(context.Background(), store.LoadInput{
		Project:  &model.ProjectDim{PJCD: "EM20"},
		Accounts: []model.AccountDim{{Code: "A.1.1"}, {Code: "A.2.1"}},
		Vendors:  []model.VendorDim{{Name: vendor}},
		Facts: []model.FactRecord{
			{AccountCode: "A.2.1", Measure: model.MeasureBudget, AmountJPY: 300000000, SourceFile: "EM20.xlsx", SourceRow: 12, SourceHash: "h3"},
			{AccountCode: "A.1.1", VendorName: &vendor, Measure: model.MeasureBudget, AmountJPY: 100000000, SourceFile: "EM20.xlsx", SourceRow: 10, SourceHash: "h1"},
			{AccountCode: "A.1.1", VendorName: &vendor, Measure: model.MeasureConfirmed, AmountJPY: 85000000, PaymentDate: &paid, SourceFile: "EM20.xlsx", SourceRow: 10, SourceHash: "h1"},
		},
	}, nil, nil)
	require.NoError(t, err)
	return st
}

func TestExport_FactsAndSummary(t *testing.T) {
	t.Parallel()

	st := seedStore(t)
	var events []ProgressEvent
	f, err := NewExporter(st).Export(context.Background(), ExportOptions{}, func(e ProgressEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	require.Equal(t, []string{SheetFacts, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetFacts)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, "account_code", rows[0][2])
	require.Equal(t, "EM20", rows[1][1])
	require.Equal(t, "2024-04-01", rows[3][7])

	summary, err := f.GetRows(SheetSummary, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Equal(t, []string{"account_code", "budget", "actual_or_plan", "confirmed"}, summary[0])
	require.Equal(t, "A.1.1", summary[1][0])
	require.Equal(t, "100000000", summary[1][1])
	require.Equal(t, "85000000", summary[1][3])
	require.Equal(t, "A.2.1", summary[2][0])
	require.Equal(t, "合計", summary[3][0])
	require.Equal(t, "400000000", summary[3][1])

	require.NotEmpty(t, events)
	require.Equal(t, 100, events[len(events)-1].Percent)
	require.Equal(t, 3, events[len(events)-1].Rows)
}

func TestExport_Filter(t *testing.T) {
	t.Parallel()

	st := seedStore(t)
	f, err := NewExporter(st).Export(context.Background(), ExportOptions{
		Filter: store.FactFilter{Measure: model.MeasureConfirmed},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(SheetFacts)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "confirmed", rows[1][4])
}
