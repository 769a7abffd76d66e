package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"costetl/internal/model"
	"costetl/internal/parser"
	"costetl/internal/transform"
)

// RequiredColumnKeywords 合格的成本表必须包含的列名片段
var RequiredColumnKeywords = []string{"項目CD", "内容", "協力会社", "予算", "現時点", "確定"}

// FileValidation 单个文件的校验结果
type FileValidation struct {
	File            string                      `json:"file"`
	Readable        bool                        `json:"readable"`
	StructureValid  bool                        `json:"structureValid"`
	MissingKeywords []string                    `json:"missingKeywords,omitempty"`
	Totals          *transform.ValidationReport `json:"totals,omitempty"`
	Passed          bool                        `json:"passed"`
}

// ValidateFile 检查文件可读、表头包含必需列、各口径合计与期望值一致（expected 为空时跳过合计）
func (c *Coordinator) ValidateFile(path, sheet string, expected map[model.Measure]float64) *FileValidation {
	if sheet == "" {
		sheet = c.sheet
	}
	sourceFile := filepath.Base(path)
	out := &FileValidation{File: sourceFile}
	log := c.logger.WithField("file", sourceFile)

	grid, _, err := parser.ReadGrid(path, sheet)
	if err != nil {
		log.WithError(err).Error("file not readable")
		return out
	}
	out.Readable = len(grid) > 0

	ext, err := c.extractor.Extract(grid, sourceFile)
	if err != nil {
		log.WithError(err).Error("structure invalid")
		out.MissingKeywords = RequiredColumnKeywords
		return out
	}

	columnText := strings.Join(ext.Header.ColumnNames, " ")
	for _, kw := range RequiredColumnKeywords {
		if !strings.Contains(columnText, kw) {
			out.MissingKeywords = append(out.MissingKeywords, kw)
		}
	}
	out.StructureValid = len(out.MissingKeywords) == 0

	totalsPassed := true
	if len(expected) > 0 {
		facts := transform.ToFacts(ext.Details, c.columns)
		out.Totals = transform.ValidateTotals(facts, expected)
		totalsPassed = out.Totals.Passed
	}

	out.Passed = out.Readable && out.StructureValid && totalsPassed
	log.WithFields(logrus.Fields{
		"readable":        out.Readable,
		"structure_valid": out.StructureValid,
		"totals_match":    totalsPassed,
		"overall_result":  resultLabel(out.Passed),
	}).Info("validation complete")
	return out
}

func resultLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

// ParseMeasureTotals 把 {口径名: 合计} 转换为 Measure 键，拒绝未知口径
func ParseMeasureTotals(raw map[string]float64) (map[model.Measure]float64, error) {
	out := make(map[model.Measure]float64, len(raw))
	for k, v := range raw {
		m := model.Measure(k)
		if !m.Valid() {
			return nil, fmt.Errorf("unknown measure %q", k)
		}
		out[m] = v
	}
	return out, nil
}
