package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"costetl/internal/model"
)

// FactFilter 事实查询条件
type FactFilter struct {
	Measure     model.Measure
	AccountCode string
	SourceFile  string
	Limit       int
	Offset      int
}

// FactPatch 事实修改项，nil 表示不修改
type FactPatch struct {
	AmountJPY   *float64
	EventDate   *time.Time
	PaymentDate *time.Time
	Notes       *string
}

const factColumns = `
	cost_id, pjcd, account_code, vendor_name, measure, amount_jpy,
	event_date, payment_date, notes, source_file, source_row, source_hash
`

// ListFacts 分页查询事实，返回当前页和总数
func (s *Store) ListFacts(ctx context.Context, filter FactFilter) ([]model.FactRecord, int, error) {
	var where []string
	var args []interface{}
	if filter.Measure != "" {
		where = append(where, "measure = ?")
		args = append(args, string(filter.Measure))
	}
	if filter.AccountCode != "" {
		where = append(where, "account_code = ?")
		args = append(args, filter.AccountCode)
	}
	if filter.SourceFile != "" {
		where = append(where, "source_file = ?")
		args = append(args, filter.SourceFile)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vw_cost_with_existing"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count facts: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := "SELECT " + factColumns + " FROM vw_cost_with_existing" + clause + " ORDER BY cost_id LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	var out []model.FactRecord
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *f)
	}
	return out, total, rows.Err()
}

// GetFact 按 ID 查询事实
func (s *Store) GetFact(ctx context.Context, id int64) (*model.FactRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+factColumns+" FROM vw_cost_with_existing WHERE cost_id = ?", id)
	f, err := scanFact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return f, err
}

// UpdateFact 修改事实的金额/日期/备注
func (s *Store) UpdateFact(ctx context.Context, id int64, patch FactPatch) error {
	var sets []string
	var args []interface{}
	if patch.AmountJPY != nil {
		sets = append(sets, "amount_jpy = ?")
		args = append(args, *patch.AmountJPY)
	}
	if patch.EventDate != nil {
		sets = append(sets, "event_date = ?")
		args = append(args, nullDate(patch.EventDate))
	}
	if patch.PaymentDate != nil {
		sets = append(sets, "payment_date = ?")
		args = append(args, nullDate(patch.PaymentDate))
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	res, err := s.db.ExecContext(ctx, "UPDATE fct_cost SET "+strings.Join(sets, ", ")+" WHERE cost_id = ?", append(args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update fact %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFact(r rowScanner) (*model.FactRecord, error) {
	var (
		f           model.FactRecord
		vendor      sql.NullString
		measure     string
		eventDate   sql.NullString
		paymentDate sql.NullString
	)
	if err := r.Scan(
		&f.ID, &f.PJCD, &f.AccountCode, &vendor, &measure, &f.AmountJPY,
		&eventDate, &paymentDate, &f.Notes, &f.SourceFile, &f.SourceRow, &f.SourceHash,
	); err != nil {
		return nil, err
	}
	f.Measure = model.Measure(measure)
	if vendor.Valid {
		v := vendor.String
		f.VendorName = &v
	}
	f.EventDate = parseNullDate(eventDate)
	f.PaymentDate = parseNullDate(paymentDate)
	return &f, nil
}
