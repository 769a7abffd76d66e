package parser

import (
	"errors"

	"costetl/internal/model"
)

var (
	// ErrHeaderNotFound 扫描范围内没有满足关键词密度的表头行，整个文件无法处理
	ErrHeaderNotFound = errors.New("header row not found")
	// ErrSheetNotFound 指定的 Sheet 不存在
	ErrSheetNotFound = errors.New("sheet not found")
)

// HeaderKeywords 表头关键词（列名片段）
var HeaderKeywords = []string{"項目CD", "内容", "協力会社", "予算", "現時点", "確定", "請求", "金額", "日付", "支払"}

// MetaKeyFragments 元信息键名片段（相邻单元格取值时使用）
var MetaKeyFragments = []string{"PJCD", "案件名", "住所", "AC", "DC", "区分"}

const (
	headerScanRows    = 20 // 表头最多扫描前 20 行
	headerMinKeywords = 2  // 至少命中 2 个关键词
)

// Rules 明细行识别规则
type Rules struct {
	AccountCodeColumn string   // 规范化后的項目CD 列名
	AccountCodeRegex  string   // 項目CD 格式（整体匹配）
	SubtotalKeywords  []string // 小计类关键词
}

// Extraction 单个 Sheet 的抽取结果
type Extraction struct {
	SourceFile string
	Header     *model.HeaderResult
	Meta       *model.ProjectMeta
	Details    []*model.DetailRow
	Rejected   []*model.DetailRow
}
