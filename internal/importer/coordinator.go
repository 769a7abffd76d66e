package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"costetl/internal/config"
	"costetl/internal/model"
	"costetl/internal/parser"
	"costetl/internal/store"
	"costetl/internal/transform"
)

// 进度事件类型
const (
	EventStart     = "start"
	EventFileStart = "file_start"
	EventInfo      = "info"
	EventWarning   = "warning"
	EventFileDone  = "file_done"
	EventError     = "error"
	EventDone      = "done"
)

// Coordinator 导入协调器：逐个文件执行 抽取 -> 转换 -> 校验 -> 入库
type Coordinator struct {
	store     *store.Store
	matcher   store.Matcher
	extractor *parser.Extractor
	columns   transform.Columns
	patterns  []model.ReplacePattern
	sheet     string
	metrics   *Metrics
	logger    logrus.FieldLogger
}

// NewCoordinator 创建导入协调器；st 为 nil 时只能 dry-run
func NewCoordinator(cfg *config.AppConfig, st *store.Store, matcher store.Matcher, metrics *Metrics, logger logrus.FieldLogger) (*Coordinator, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	extractor, err := parser.NewExtractor(parser.Rules{
		AccountCodeColumn: cfg.Columns.AccountCode,
		AccountCodeRegex:  cfg.Rules.AccountCodeRegex,
		SubtotalKeywords:  cfg.Rules.SubtotalKeywords,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build extractor: %w", err)
	}
	return &Coordinator{
		store:     st,
		matcher:   matcher,
		extractor: extractor,
		columns:   transform.Columns(cfg.Columns),
		patterns:  cfg.Rules.VendorNormalizePatterns,
		sheet:     cfg.App.DefaultSheet,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// ImportOptions 导入选项
type ImportOptions struct {
	RunID          string
	Files          []string
	Sheet          string                    // 为空时使用配置的 default_sheet
	DryRun         bool                      // 只抽取和校验，不入库
	ExpectedTotals map[model.Measure]float64 // 为空时不做合计校验
	ArchiveDir     string                    // 入库成功的文件移动到此目录（为空则不移动）
	RejectDir      string                    // 处理失败的文件移动到此目录（为空则不移动）
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/file_start/info/warning/file_done/error/done
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// FileResult 单个文件的处理结果
type FileResult struct {
	File         string                      `json:"file"`
	Sheet        string                      `json:"sheet,omitempty"`
	Status       string                      `json:"status"`
	DetailRows   int                         `json:"detailRows"`
	RejectedRows int                         `json:"rejectedRows"`
	Load         model.LoadSummary           `json:"load"`
	Validation   *transform.ValidationReport `json:"validation,omitempty"`
	Error        string                      `json:"error,omitempty"`
	Duration     time.Duration               `json:"duration"`
}

// RunReport 一次批处理的结果
type RunReport struct {
	Summary  model.RunSummary `json:"summary"`
	Files    []FileResult     `json:"files"`
	Duration time.Duration    `json:"duration"`
}

// Import 异步执行导入，返回进度通道
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.run(ctx, opts, progressChan)
	}()

	return progressChan
}

// Run 同步执行导入
func (c *Coordinator) Run(ctx context.Context, opts ImportOptions) *RunReport {
	return c.run(ctx, opts, nil)
}

func (c *Coordinator) run(ctx context.Context, opts ImportOptions, progressChan chan ProgressEvent) *RunReport {
	startTime := time.Now()
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Sheet == "" {
		opts.Sheet = c.sheet
	}
	log := c.logger.WithField("run_id", opts.RunID)

	report := &RunReport{Summary: model.RunSummary{RunID: opts.RunID}}

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventStart,
		Message: fmt.Sprintf("开始导入 %d 个文件", len(opts.Files)),
		Data: map[string]interface{}{
			"run_id":  opts.RunID,
			"files":   len(opts.Files),
			"dry_run": opts.DryRun,
		},
		Timestamp: time.Now(),
	})

	for _, path := range opts.Files {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("import cancelled")
			c.sendProgress(progressChan, ProgressEvent{
				Type:      EventError,
				Message:   fmt.Sprintf("导入已取消: %v", err),
				Timestamp: time.Now(),
			})
			break
		}

		result := c.processFile(ctx, opts, path, progressChan)
		c.recordFileResult(report, result)
		c.metrics.observeFile(result.Status, result.Duration)
		c.metrics.observeFacts(result.Load.Loaded, result.Load.Skipped, result.Load.Errors)

		c.sendProgress(progressChan, ProgressEvent{
			Type:      EventFileDone,
			Message:   fmt.Sprintf("%s: %s", result.File, result.Status),
			Data:      result,
			Timestamp: time.Now(),
		})
	}

	if c.store != nil && !opts.DryRun {
		c.rememberRun(ctx, opts.RunID, log)
	}

	report.Duration = time.Since(startTime)
	log.WithFields(logrus.Fields{
		"files_processed": report.Summary.FilesProcessed,
		"files_failed":    report.Summary.FilesFailed,
		"files_skipped":   report.Summary.FilesSkipped,
		"loaded_facts":    report.Summary.LoadedFacts,
		"skipped_facts":   report.Summary.SkippedFacts,
	}).Info("ingestion complete")

	c.sendProgress(progressChan, ProgressEvent{
		Type:      EventDone,
		Message:   "导入完成",
		Data:      report,
		Timestamp: time.Now(),
	})
	return report
}

// processFile 处理单个文件；任何错误都只影响本文件
func (c *Coordinator) processFile(ctx context.Context, opts ImportOptions, path string, progressChan chan ProgressEvent) FileResult {
	fileStart := time.Now()
	sourceFile := filepath.Base(path)
	log := c.logger.WithFields(logrus.Fields{"run_id": opts.RunID, "file": sourceFile})
	result := FileResult{File: sourceFile}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      EventFileStart,
		Message:   fmt.Sprintf("正在处理文件: %s", sourceFile),
		Data:      map[string]string{"file": sourceFile},
		Timestamp: time.Now(),
	})

	loading := c.store != nil && !opts.DryRun
	var logID int64
	if loading {
		id, err := c.createImportLog(ctx, opts.RunID, path)
		if err != nil {
			log.WithError(err).Warn("import log not created")
		}
		logID = id
	}

	fail := func(err error) FileResult {
		result.Status = store.ImportStatusFailed
		result.Error = err.Error()
		result.Duration = time.Since(fileStart)
		log.WithError(err).Error("file failed")
		c.sendProgress(progressChan, ProgressEvent{
			Type:      EventError,
			Message:   fmt.Sprintf("%s 处理失败: %v", sourceFile, err),
			Data:      map[string]string{"file": sourceFile},
			Timestamp: time.Now(),
		})
		c.finishImportLog(ctx, logID, result, log)
		if opts.RejectDir != "" && !opts.DryRun {
			if err := archiveFile(path, opts.RejectDir); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.WithError(err).Warn("move to reject dir failed")
			}
		}
		return result
	}

	grid, sheet, err := parser.ReadGrid(path, opts.Sheet)
	if err != nil {
		return fail(err)
	}
	result.Sheet = sheet

	ext, err := c.extractor.Extract(grid, sourceFile)
	if err != nil {
		return fail(err)
	}
	result.DetailRows = len(ext.Details)
	result.RejectedRows = len(ext.Rejected)

	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("表头位于第 %d 行，明细 %d 行，排除 %d 行", ext.Header.HeaderRow+1, len(ext.Details), len(ext.Rejected)),
		Data: map[string]interface{}{
			"file":          sourceFile,
			"header_row":    ext.Header.HeaderRow,
			"detail_rows":   len(ext.Details),
			"rejected_rows": len(ext.Rejected),
		},
		Timestamp: time.Now(),
	})

	if len(ext.Details) == 0 {
		result.Status = store.ImportStatusSkipped
		result.Duration = time.Since(fileStart)
		log.Warn("no detail rows found")
		c.sendProgress(progressChan, ProgressEvent{
			Type:      EventWarning,
			Message:   fmt.Sprintf("%s 没有明细行", sourceFile),
			Data:      map[string]string{"file": sourceFile},
			Timestamp: time.Now(),
		})
		c.finishImportLog(ctx, logID, result, log)
		return result
	}

	dims := transform.ExtractDimensions(ext.Meta, ext.Details, c.columns)
	facts := transform.ToFacts(ext.Details, c.columns)
	result.Load.Total = len(facts)
	log.WithFields(logrus.Fields{
		"projects": len(dims.Projects),
		"accounts": len(dims.Accounts),
		"vendors":  len(dims.Vendors),
		"facts":    len(facts),
	}).Info("facts transformed")

	if len(opts.ExpectedTotals) > 0 {
		result.Validation = transform.ValidateTotals(facts, opts.ExpectedTotals)
		if !result.Validation.Passed {
			for _, check := range result.Validation.Failed() {
				log.WithFields(logrus.Fields{
					"measure":  check.Measure,
					"actual":   check.Actual,
					"expected": check.Expected,
				}).Warn("total mismatch")
			}
			c.sendProgress(progressChan, ProgressEvent{
				Type:      EventWarning,
				Message:   fmt.Sprintf("%s 合计校验未通过", sourceFile),
				Data:      result.Validation,
				Timestamp: time.Now(),
			})
		}
	}

	if !loading {
		result.Status = store.ImportStatusValidated
		result.Duration = time.Since(fileStart)
		return result
	}

	var project *model.ProjectDim
	if len(dims.Projects) > 0 {
		project = &dims.Projects[0]
	}
	load, err := c.store.LoadFacts(ctx, store.LoadInput{
		Project:        project,
		Accounts:       dims.Accounts,
		Vendors:        dims.Vendors,
		Facts:          facts,
		VendorPatterns: c.patterns,
	}, c.matcher, log)
	if err != nil {
		if errors.Is(err, store.ErrProjectCodeMissing) {
			log.Warn("project code missing in metadata")
		}
		return fail(err)
	}
	result.Load = load
	result.Status = store.ImportStatusLoaded
	result.Duration = time.Since(fileStart)

	if opts.ArchiveDir != "" {
		if err := archiveFile(path, opts.ArchiveDir); err != nil {
			log.WithError(err).Warn("archive failed")
		}
	}

	c.finishImportLog(ctx, logID, result, log)
	return result
}

// recordFileResult 累加到批处理汇总
func (c *Coordinator) recordFileResult(report *RunReport, result FileResult) {
	report.Files = append(report.Files, result)

	s := &report.Summary
	switch result.Status {
	case store.ImportStatusFailed:
		s.FilesFailed++
		return
	case store.ImportStatusSkipped:
		s.FilesSkipped++
		return
	}
	s.FilesProcessed++
	if result.Validation != nil && !result.Validation.Passed {
		s.ValidationFail++
	}
	if result.Status == store.ImportStatusLoaded {
		s.Add(result.Load)
	} else {
		s.TotalFacts += result.Load.Total
	}
}

func (c *Coordinator) createImportLog(ctx context.Context, runID, path string) (int64, error) {
	size, hash, err := fileDigest(path)
	if err != nil {
		return 0, err
	}
	return c.store.CreateImportLog(ctx, runID, filepath.Base(path), path, size, hash)
}

func (c *Coordinator) finishImportLog(ctx context.Context, logID int64, r FileResult, log logrus.FieldLogger) {
	if logID == 0 {
		return
	}
	err := c.store.UpdateImportLog(ctx, logID, store.ImportLogResult{
		Status:       r.Status,
		DetailRows:   r.DetailRows,
		RejectedRows: r.RejectedRows,
		TotalFacts:   r.Load.Total,
		LoadedFacts:  r.Load.Loaded,
		SkippedFacts: r.Load.Skipped,
		ErrorFacts:   r.Load.Errors,
		ErrorMessage: r.Error,
	})
	if err != nil {
		log.WithError(err).Warn("import log not updated")
	}
}

func (c *Coordinator) rememberRun(ctx context.Context, runID string, log logrus.FieldLogger) {
	if err := c.store.SetSetting(ctx, store.SettingLastRunID, runID); err != nil {
		log.WithError(err).Warn("failed to save last run id")
		return
	}
	if err := c.store.SetSetting(ctx, store.SettingLastRunAt, time.Now().Format(time.RFC3339)); err != nil {
		log.WithError(err).Warn("failed to save last run time")
	}
}

// sendProgress 发送进度事件（非阻塞，通道为 nil 或已满时丢弃）
func (c *Coordinator) sendProgress(progressChan chan ProgressEvent, event ProgressEvent) {
	select {
	case progressChan <- event:
	default:
	}
}

// fileDigest 文件大小和 SHA-256
func fileDigest(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}

func archiveFile(path, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dir, filepath.Base(path)))
}
