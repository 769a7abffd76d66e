package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"costetl/internal/model"
)

const (
	// Excel 序列日期有效范围（1900 日期系统）
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// excelEpoch 1899-12-30，沿用 Excel 的 1900 闰年误差
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var (
	numberCleaner = strings.NewReplacer(",", "", "¥", "", "￥", "")
	newlineRun    = regexp.MustCompile(`(\r?\n)+`)
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	dateLayouts   = []string{
		"2006-01-02",
		"2006/01/02",
		"2006-1-2",
		"2006/1/2",
		"2006.1.2",
		"2006年1月2日",
		"2006-01-02 15:04:05",
		"2006/01/02 15:04:05",
		"2006-1-2 15:04:05",
		"2006/1/2 15:04:05",
		"2006-01-02 15:04",
		"2006/1/2 15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"20060102",
		"Jan 2, 2006",
		"2 Jan 2006",
		"January 2, 2006",
	}
)

// FoldWidth 全角转半角（NFKC 兼容规范化）
func FoldWidth(text string) string {
	return norm.NFKC.String(text)
}

// ToNumber 单元格转数值，无法转换时返回 nil
func ToNumber(c model.Cell) *float64 {
	switch c.Kind {
	case model.CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return nil
		}
		v := c.Num
		return &v
	case model.CellText:
		return ParseNumber(c.Str)
	}
	return nil
}

// ParseNumber 解析日式金额文本：去掉千分位和円记号，括号表示负数
func ParseNumber(text string) *float64 {
	text = strings.TrimSpace(text)
	if model.IsNullMarker(text) {
		return nil
	}

	cleaned := FoldWidth(numberCleaner.Replace(text))
	cleaned = strings.TrimSpace(cleaned)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") && len(cleaned) >= 2 {
		cleaned = "-" + strings.TrimSpace(cleaned[1:len(cleaned)-1])
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ToDate 单元格转日期，支持日期单元格、日期文本和 Excel 序列值
func ToDate(c model.Cell) *time.Time {
	switch c.Kind {
	case model.CellTime:
		t := c.Time
		return &t
	case model.CellNumber:
		return FromExcelSerial(c.Num)
	case model.CellText:
		return ParseDate(c.Str)
	}
	return nil
}

// FromExcelSerial Excel 序列值转日期，超出 [1, 2958465] 返回 nil
func FromExcelSerial(serial float64) *time.Time {
	if math.IsNaN(serial) || serial < minExcelSerial || serial > maxExcelSerial {
		return nil
	}
	days := math.Floor(serial)
	seconds := math.Round((serial - days) * 86400)
	t := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(seconds) * time.Second)
	return &t
}

// ParseDate 解析日期文本
func ParseDate(text string) *time.Time {
	text = strings.TrimSpace(FoldWidth(text))
	if model.IsNullMarker(text) {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}

// NormalizeVendorName 协力会社名称规范化：NFKC、按顺序替换、压缩空白
func NormalizeVendorName(name string, patterns []model.ReplacePattern) string {
	name = strings.TrimSpace(name)
	if model.IsNullMarker(name) {
		return ""
	}

	name = FoldWidth(name)
	for _, p := range patterns {
		if p.Match == "" {
			continue
		}
		name = strings.ReplaceAll(name, p.Match, p.Replace)
	}
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeColumnName 规范化列名：换行折叠为字面量 \n，空白压缩为单个空格
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = newlineRun.ReplaceAllLiteralString(name, `\n`)
	name = whitespaceRun.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// ExtractAccountHierarchy 项目CD 的上级编码，如 A.1.2 -> A.1；不足三段返回 nil
func ExtractAccountHierarchy(code string) *string {
	if !strings.Contains(code, ".") {
		return nil
	}
	parts := strings.Split(code, ".")
	if len(parts) <= 2 {
		return nil
	}
	parent := strings.Join(parts[:len(parts)-1], ".")
	return &parent
}

// CountKeywords 统计文本中命中的关键词个数
func CountKeywords(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
