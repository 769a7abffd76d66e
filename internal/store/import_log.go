package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// 导入日志状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusLoaded     = "loaded"
	ImportStatusValidated  = "validated" // dry-run：只抽取和校验，不入库
	ImportStatusSkipped    = "skipped"
	ImportStatusFailed     = "failed"
)

// ImportLog 单个文件的导入记录
type ImportLog struct {
	ID           int64      `json:"id"`
	RunID        string     `json:"runId"`
	Filename     string     `json:"filename"`
	FilePath     string     `json:"filePath"`
	FileSize     int64      `json:"fileSize"`
	FileHash     string     `json:"fileHash"`
	Status       string     `json:"status"`
	DetailRows   int        `json:"detailRows"`
	RejectedRows int        `json:"rejectedRows"`
	TotalFacts   int        `json:"totalFacts"`
	LoadedFacts  int        `json:"loadedFacts"`
	SkippedFacts int        `json:"skippedFacts"`
	ErrorFacts   int        `json:"errorFacts"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// ImportLogResult 导入完成时回写的计数
type ImportLogResult struct {
	Status       string
	DetailRows   int
	RejectedRows int
	TotalFacts   int
	LoadedFacts  int
	SkippedFacts int
	ErrorFacts   int
	ErrorMessage string
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(ctx context.Context, runID, filename, filePath string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (run_id, filename, file_path, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, filename, filePath, fileSize, fileHash, ImportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(ctx context.Context, id int64, r ImportLogResult) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			status = ?,
			detail_rows = ?,
			rejected_rows = ?,
			total_facts = ?,
			loaded_facts = ?,
			skipped_facts = ?,
			error_facts = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, r.Status, r.DetailRows, r.RejectedRows, r.TotalFacts, r.LoadedFacts, r.SkippedFacts, r.ErrorFacts, r.ErrorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 最近的导入日志
func (s *Store) ListImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, filename, file_path, file_size, file_hash, status,
			detail_rows, rejected_rows, total_facts, loaded_facts, skipped_facts, error_facts,
			error_message, started_at, completed_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	var out []ImportLog
	for rows.Next() {
		var l ImportLog
		var completed sql.NullTime
		if err := rows.Scan(
			&l.ID, &l.RunID, &l.Filename, &l.FilePath, &l.FileSize, &l.FileHash, &l.Status,
			&l.DetailRows, &l.RejectedRows, &l.TotalFacts, &l.LoadedFacts, &l.SkippedFacts, &l.ErrorFacts,
			&l.ErrorMessage, &l.StartedAt, &completed,
		); err != nil {
			return nil, err
		}
		if completed.Valid {
			t := completed.Time
			l.CompletedAt = &t
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
