package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"costetl/internal/model"
	"costetl/internal/parser"
)

// Matcher 既存系统匹配（可为 nil）
type Matcher interface {
	MatchProject(ctx context.Context, code string) *int64
	MatchVendor(ctx context.Context, name string) model.MatchResult
}

// LoadInput 单个文件的入库内容
type LoadInput struct {
	Project        *model.ProjectDim
	Accounts       []model.AccountDim
	Vendors        []model.VendorDim
	Facts          []model.FactRecord
	VendorPatterns []model.ReplacePattern
}

// LoadFacts 写入维度和事实；(source_hash, measure) 已存在的事实计为跳过
func (s *Store) LoadFacts(ctx context.Context, in LoadInput, matcher Matcher, logger logrus.FieldLogger) (model.LoadSummary, error) {
	summary := model.LoadSummary{Total: len(in.Facts)}
	if in.Project == nil || strings.TrimSpace(in.Project.PJCD) == "" {
		return summary, ErrProjectCodeMissing
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	projectID, accountIDs, vendorIDs, err := s.upsertDimensions(ctx, in, matcher)
	if err != nil {
		return summary, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fct_cost (
			project_id, account_id, vendor_id, measure, amount_jpy,
			event_date, payment_date, notes, source_file, source_row, source_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_hash, measure) DO NOTHING
	`)
	if err != nil {
		return summary, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range in.Facts {
		accountID, ok := accountIDs[f.AccountCode]
		if !ok {
			logger.WithField("account_code", f.AccountCode).Warn("account not found for fact")
			summary.Errors++
			continue
		}

		var vendorID interface{}
		if f.VendorName != nil {
			if id, ok := vendorIDs[*f.VendorName]; ok {
				vendorID = id
			}
		}

		res, err := stmt.ExecContext(ctx,
			projectID, accountID, vendorID, string(f.Measure), f.AmountJPY,
			nullDate(f.EventDate), nullDate(f.PaymentDate), f.Notes,
			f.SourceFile, f.SourceRow, f.SourceHash,
		)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"source_row": f.SourceRow,
				"measure":    f.Measure,
			}).Error("failed to load fact")
			summary.Errors++
			continue
		}

		n, err := res.RowsAffected()
		if err != nil {
			return summary, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			summary.Skipped++
		} else {
			summary.Loaded++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("failed to commit facts: %w", err)
	}
	return summary, nil
}

// upsertDimensions 维度先行提交，返回项目 ID 与科目/协力会社查找表
// 匹配在事务外完成：参照数据可能来自同一个 SQLite 连接
func (s *Store) upsertDimensions(ctx context.Context, in LoadInput, matcher Matcher) (int64, map[string]int64, map[string]int64, error) {
	pjcd := strings.TrimSpace(in.Project.PJCD)
	var existingProjectID *int64
	vendorMatches := make(map[string]model.MatchResult, len(in.Vendors))
	if matcher != nil {
		existingProjectID = matcher.MatchProject(ctx, pjcd)
		for _, v := range in.Vendors {
			if strings.TrimSpace(v.Name) != "" {
				vendorMatches[v.Name] = matcher.MatchVendor(ctx, v.Name)
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	projectID, err := upsertProject(ctx, tx, in.Project, existingProjectID)
	if err != nil {
		return 0, nil, nil, err
	}

	accountIDs := make(map[string]int64, len(in.Accounts))
	for _, a := range in.Accounts {
		id, err := upsertAccount(ctx, tx, a)
		if err != nil {
			return 0, nil, nil, err
		}
		accountIDs[a.Code] = id
	}

	vendorIDs := make(map[string]int64, len(in.Vendors))
	for _, v := range in.Vendors {
		if strings.TrimSpace(v.Name) == "" {
			continue
		}
		match, matched := vendorMatches[v.Name]
		id, err := upsertVendor(ctx, tx, v, parser.NormalizeVendorName(v.Name, in.VendorPatterns), match, matched)
		if err != nil {
			return 0, nil, nil, err
		}
		vendorIDs[v.Name] = id
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, nil, fmt.Errorf("failed to commit dimensions: %w", err)
	}
	return projectID, accountIDs, vendorIDs, nil
}

// upsertProject 按 PJCD 查找，不存在时插入
func upsertProject(ctx context.Context, tx *sql.Tx, p *model.ProjectDim, existingID *int64) (int64, error) {
	pjcd := strings.TrimSpace(p.PJCD)

	var id int64
	err := tx.QueryRowContext(ctx, `SELECT project_id FROM dim_project WHERE pjcd = ?`, pjcd).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query project %s: %w", pjcd, err)
	}

	var metaJSON interface{}
	if len(p.Meta) > 0 {
		data, err := json.Marshal(p.Meta)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal project meta: %w", err)
		}
		metaJSON = string(data)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO dim_project (pjcd, project_name, address, ac_kw, dc_kw, meta_json, existing_project_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, pjcd, nullString(p.Name), nullString(p.Address), nullFloat(p.ACKW), nullFloat(p.DCKW), metaJSON, nullInt(existingID))
	if err != nil {
		return 0, fmt.Errorf("failed to insert project %s: %w", pjcd, err)
	}
	return res.LastInsertId()
}

// upsertAccount 按項目CD 查找，不存在时插入
func upsertAccount(ctx context.Context, tx *sql.Tx, a model.AccountDim) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT account_id FROM dim_account WHERE account_code = ?`, a.Code).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query account %s: %w", a.Code, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO dim_account (account_code, account_name, parent_code) VALUES (?, ?, ?)
	`, a.Code, nullString(a.Name), nullString(a.ParentCode))
	if err != nil {
		return 0, fmt.Errorf("failed to insert account %s: %w", a.Code, err)
	}
	return res.LastInsertId()
}

// upsertVendor 按 (原始名称, 规范化名称) 查找，不存在时插入
func upsertVendor(ctx context.Context, tx *sql.Tx, v model.VendorDim, normalized string, match model.MatchResult, matched bool) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		SELECT vendor_id FROM dim_vendor WHERE vendor_name = ? AND normalized_name = ?
	`, v.Name, normalized).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query vendor %s: %w", v.Name, err)
	}

	var score interface{}
	if matched {
		score = match.Confidence
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO dim_vendor (vendor_name, normalized_name, existing_vendor_id, match_score)
		VALUES (?, ?, ?, ?)
	`, v.Name, normalized, nullInt(match.MatchedID), score)
	if err != nil {
		return 0, fmt.Errorf("failed to insert vendor %s: %w", v.Name, err)
	}
	return res.LastInsertId()
}
