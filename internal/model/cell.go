package model

import (
	"strconv"
	"strings"
	"time"
)

// CellKind 单元格取值类型
type CellKind int

const (
	CellEmpty  CellKind = iota // 空单元格
	CellText                   // 文本
	CellNumber                 // 数值
	CellTime                   // 日期/时间
)

// Cell 原始表格单元格（空/文本/数值/日期 四选一）
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Time time.Time
}

// Empty 空单元格
func Empty() Cell { return Cell{Kind: CellEmpty} }

// Text 文本单元格
func Text(s string) Cell { return Cell{Kind: CellText, Str: s} }

// Number 数值单元格
func Number(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }

// Time 日期单元格
func Time(t time.Time) Cell { return Cell{Kind: CellTime, Time: t} }

// IsEmpty 是否为空单元格
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// IsText 是否为文本单元格
func (c Cell) IsText() bool { return c.Kind == CellText }

// String 单元格的文本形式；空单元格返回 ""
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellTime:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// IsNullMarker 判断文本是否表示缺失值（空串或 "nan"）
func IsNullMarker(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}

// IsNull 空单元格或缺失值标记
func (c Cell) IsNull() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return IsNullMarker(c.Str)
	default:
		return false
	}
}
