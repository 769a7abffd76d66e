package parser

import (
	"fmt"
	"strings"

	"costetl/internal/model"
)

// HeaderDetector 两行合并表头识别器
type HeaderDetector struct {
	keywords []string
	scanRows int
	minHits  int
}

// NewHeaderDetector 创建识别器
func NewHeaderDetector() *HeaderDetector {
	return &HeaderDetector{
		keywords: HeaderKeywords,
		scanRows: headerScanRows,
		minHits:  headerMinKeywords,
	}
}

// Detect 定位表头行并合成列名（上行前向填充，与下行以 "__" 连接）
func (d *HeaderDetector) Detect(grid model.Grid) (*model.HeaderResult, error) {
	headerRow := d.findHeaderRow(grid)
	if headerRow < 0 {
		return nil, fmt.Errorf("no row with %d+ header keywords in first %d rows: %w", d.minHits, d.scanRows, ErrHeaderNotFound)
	}

	width := grid.Width()
	top := forwardFill(grid, headerRow, width)

	columns := make([]string, width)
	for i := 0; i < width; i++ {
		topStr := top[i]
		subStr := cellLabel(grid.At(headerRow+1, i))

		var combined string
		switch {
		case topStr != "" && subStr != "":
			combined = topStr + "__" + subStr
		case topStr != "":
			combined = topStr
		case subStr != "":
			combined = subStr
		default:
			combined = fmt.Sprintf("col_%d", i)
		}
		columns[i] = NormalizeColumnName(combined)
	}

	return &model.HeaderResult{
		HeaderRow:    headerRow,
		DataStartRow: headerRow + 2,
		ColumnNames:  columns,
	}, nil
}

// findHeaderRow 第一个关键词命中数达标的行，找不到返回 -1
func (d *HeaderDetector) findHeaderRow(grid model.Grid) int {
	limit := d.scanRows
	if len(grid) < limit {
		limit = len(grid)
	}
	for i := 0; i < limit; i++ {
		if CountKeywords(rowText(grid[i]), d.keywords) >= d.minHits {
			return i
		}
	}
	return -1
}

// rowText 行内所有非空单元格以空格拼接
func rowText(row []model.Cell) string {
	parts := make([]string, 0, len(row))
	for _, c := range row {
		if c.IsEmpty() {
			continue
		}
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}

// forwardFill 合并单元格只有首格有值，空白格继承左侧最近的非空值
func forwardFill(grid model.Grid, row, width int) []string {
	out := make([]string, width)
	last := ""
	for i := 0; i < width; i++ {
		if label := cellLabel(grid.At(row, i)); label != "" {
			last = label
		}
		out[i] = last
	}
	return out
}

// cellLabel 表头单元格文本，缺失值返回空串
func cellLabel(c model.Cell) string {
	if c.IsNull() {
		return ""
	}
	return strings.TrimSpace(c.String())
}
