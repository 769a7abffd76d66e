package parser

import (
	"fmt"
	"regexp"
	"strings"

	"costetl/internal/model"
)

// RowClassifier 明细行 / 小计行分类器
type RowClassifier struct {
	accountColumn    string
	codePattern      *regexp.Regexp
	subtotalKeywords []string
}

// NewRowClassifier 创建分类器，项目CD 正则按整串匹配编译
func NewRowClassifier(rules Rules) (*RowClassifier, error) {
	re, err := compileAnchored(rules.AccountCodeRegex)
	if err != nil {
		return nil, err
	}
	return &RowClassifier{
		accountColumn:    rules.AccountCodeColumn,
		codePattern:      re,
		subtotalKeywords: rules.SubtotalKeywords,
	}, nil
}

// IsDetailRow 項目CD 格式合法且文本单元格中不含小计关键词
func (c *RowClassifier) IsDetailRow(row *model.DetailRow) bool {
	return IsDetailRow(row, c.accountColumn, c.codePattern, c.subtotalKeywords)
}

// IsDetailRow 判断一行是否为明细行
func IsDetailRow(row *model.DetailRow, accountColumn string, codePattern *regexp.Regexp, subtotalKeywords []string) bool {
	code := strings.TrimSpace(row.Get(accountColumn).String())
	if !codePattern.MatchString(code) {
		return false
	}

	texts := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		if cell.IsText() {
			texts = append(texts, cell.Str)
		}
	}
	return !ContainsAny(strings.Join(texts, "|"), subtotalKeywords)
}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile account code regex %q: %w", pattern, err)
	}
	return re, nil
}
