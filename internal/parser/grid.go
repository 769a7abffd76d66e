package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"costetl/internal/model"
)

// ReadGrid 打开工作簿读取指定 Sheet，sheet 为空时读取第一个 Sheet
// 返回补齐为矩形的网格和实际读取的 Sheet 名
func ReadGrid(path, sheet string) (model.Grid, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheet, err = resolveSheet(f, sheet)
	if err != nil {
		return nil, "", err
	}

	grid, err := ReadSheetGrid(f, sheet)
	if err != nil {
		return nil, "", err
	}
	return grid, sheet, nil
}

// ReadSheetGrid 从已打开的工作簿读取 Sheet，按单元格类型生成文本/数值/空单元格
func ReadSheetGrid(f *excelize.File, sheet string) (model.Grid, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	grid := make(model.Grid, len(rows))
	for r, row := range rows {
		cells := make([]model.Cell, len(row))
		for c, raw := range row {
			cells[c] = typedCell(f, sheet, r, c, raw)
		}
		grid[r] = cells
	}
	return grid.Rectangular(), nil
}

// resolveSheet 解析 Sheet 名称
func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets: %w", ErrSheetNotFound)
	}
	if sheet == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if name == sheet {
			return name, nil
		}
	}
	return "", fmt.Errorf("%q: %w", sheet, ErrSheetNotFound)
}

// typedCell 原始值转为单元格：字符串类型保持文本，其余可解析为数值的视为数值
func typedCell(f *excelize.File, sheet string, row, col int, raw string) model.Cell {
	if raw == "" {
		return model.Empty()
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return model.Text(raw)
	}
	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return model.Text(raw)
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return model.Text(raw)
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "TRUE") {
			return model.Text("TRUE")
		}
		return model.Text("FALSE")
	}

	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return model.Number(v)
	}
	return model.Text(raw)
}
