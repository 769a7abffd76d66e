package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"costetl/internal/model"
)

// Extractor 单个 Sheet 的抽取流程：表头 -> 元信息 -> 来源追踪 -> 明细分类
type Extractor struct {
	detector      *HeaderDetector
	classifier    *RowClassifier
	accountColumn string
	logger        logrus.FieldLogger
}

// NewExtractor 创建抽取器
func NewExtractor(rules Rules, logger logrus.FieldLogger) (*Extractor, error) {
	classifier, err := NewRowClassifier(rules)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Extractor{
		detector:      NewHeaderDetector(),
		classifier:    classifier,
		accountColumn: rules.AccountCodeColumn,
		logger:        logger,
	}, nil
}

// Extract 从网格中抽取明细行；表头缺失时返回 ErrHeaderNotFound
func (e *Extractor) Extract(grid model.Grid, sourceFile string) (*Extraction, error) {
	header, err := e.detector.Detect(grid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourceFile, err)
	}
	log := e.logger.WithField("file", sourceFile)
	log.WithFields(logrus.Fields{
		"header_row": header.HeaderRow,
		"columns":    len(header.ColumnNames),
	}).Debug("header detected")

	meta := ExtractProjectMeta(grid, header.DataStartRow)
	if meta.Len() > 0 {
		log.WithField("keys", meta.Keys).Debug("project meta extracted")
	}

	project, _ := meta.Get(MetaKeyProjectCode)
	project = strings.TrimSpace(project)

	out := &Extraction{
		SourceFile: sourceFile,
		Header:     header,
		Meta:       meta,
	}

	for r := header.DataStartRow; r < len(grid); r++ {
		row := &model.DetailRow{
			Columns:    header.ColumnNames,
			Cells:      grid[r],
			SourceFile: sourceFile,
			SourceRow:  r + 1,
		}
		row.SourceHash = SourceHash(project, sourceFile, row.SourceRow, row.Get(e.accountColumn).String())

		if e.classifier.IsDetailRow(row) {
			out.Details = append(out.Details, row)
		} else {
			out.Rejected = append(out.Rejected, row)
		}
	}

	log.WithFields(logrus.Fields{
		"detail_rows":   len(out.Details),
		"rejected_rows": len(out.Rejected),
	}).Info("rows classified")
	return out, nil
}

// SourceHash 行级内容地址：sha256("pjcd|file|row|code") 的十六进制
// 同名文件属于不同项目时得到不同的地址
func SourceHash(project, file string, row int, accountCode string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%s", project, file, row, accountCode)))
	return hex.EncodeToString(sum[:])
}
