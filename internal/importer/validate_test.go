package importer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"costetl/internal/model"
)

// rowsWithoutConfirmed 去掉表头中的 確定金額 列名
func rowsWithoutConfirmed() [][]interface{} {
	var rows [][]interface{}
	rows = append(rows, sampleMeta...)
	for _, h := range sampleHeader {
		row := append([]interface{}(nil), h...)
		row[5] = ""
		rows = append(rows, row)
	}
	return append(rows, sampleDetails...)
}

func rowsWithoutHeader() [][]interface{} {
	var rows [][]interface{}
	rows = append(rows, sampleMeta...)
	return append(rows, sampleDetails...)
}

func TestValidateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeWorkbook(t, dir, "good.xlsx", sampleRows())
	noConfirmed := writeWorkbook(t, dir, "no_confirmed.xlsx", rowsWithoutConfirmed())
	noHeader := writeWorkbook(t, dir, "no_header.xlsx", rowsWithoutHeader())

	wrongTotals := map[model.Measure]float64{
		model.MeasureBudget:       900000000,
		model.MeasureActualOrPlan: 778222542,
		model.MeasureConfirmed:    147640758,
	}

	tests := []struct {
		name           string
		path           string
		expected       map[model.Measure]float64
		readable       bool
		structureValid bool
		missing        []string
		totalsPassed   *bool
		passed         bool
	}{
		{name: "totals match", path: good, expected: sampleTotals, readable: true, structureValid: true, totalsPassed: boolPtr(true), passed: true},
		{name: "totals mismatch", path: good, expected: wrongTotals, readable: true, structureValid: true, totalsPassed: boolPtr(false)},
		{name: "no expected totals", path: good, readable: true, structureValid: true, passed: true},
		{name: "missing confirmed column", path: noConfirmed, readable: true, missing: []string{"確定"}},
		{name: "header not found", path: noHeader, expected: sampleTotals, readable: true, missing: RequiredColumnKeywords},
		{name: "unreadable", path: filepath.Join(dir, "missing.xlsx")},
	}

	c := newTestCoordinator(t, nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ValidateFile(tt.path, "", tt.expected)

			require.Equal(t, filepath.Base(tt.path), got.File)
			require.Equal(t, tt.readable, got.Readable)
			require.Equal(t, tt.structureValid, got.StructureValid)
			require.Equal(t, tt.missing, got.MissingKeywords)
			require.Equal(t, tt.passed, got.Passed)
			if tt.totalsPassed == nil {
				require.Nil(t, got.Totals)
				return
			}
			require.NotNil(t, got.Totals)
			require.Equal(t, *tt.totalsPassed, got.Totals.Passed)
		})
	}

	mismatch := c.ValidateFile(good, "", wrongTotals)
	failed := mismatch.Totals.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, model.MeasureBudget, failed[0].Measure)
}

func TestParseMeasureTotals(t *testing.T) {
	t.Parallel()

	got, err := ParseMeasureTotals(map[string]float64{"budget": 1, "confirmed": 2})
	require.NoError(t, err)
	require.Equal(t, map[model.Measure]float64{model.MeasureBudget: 1, model.MeasureConfirmed: 2}, got)

	_, err = ParseMeasureTotals(map[string]float64{"forecast": 1})
	require.Error(t, err)
}

func boolPtr(b bool) *bool { return &b }
