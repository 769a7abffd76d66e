package store

import (
	"context"
	"fmt"

	"costetl/internal/model"
)

// SeedReferenceProjects 写入本地既存项目参照数据（按 id 覆盖）
func (s *Store) SeedReferenceProjects(ctx context.Context, projects []model.ReferenceProject) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO existing_projects (id, pjcd, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET pjcd = excluded.pjcd, name = excluded.name
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range projects {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Code, p.Name); err != nil {
			return fmt.Errorf("failed to seed project %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// SeedReferenceVendors 写入本地既存协力会社参照数据（按 id 覆盖）
func (s *Store) SeedReferenceVendors(ctx context.Context, vendors []model.ReferenceVendor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO existing_vendors (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range vendors {
		if _, err := stmt.ExecContext(ctx, v.ID, v.Name); err != nil {
			return fmt.Errorf("failed to seed vendor %d: %w", v.ID, err)
		}
	}
	return tx.Commit()
}

// ExistingProjects 本地既存项目（按 id 排序）
func (s *Store) ExistingProjects(ctx context.Context) ([]model.ReferenceProject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, pjcd, name FROM existing_projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing projects: %w", err)
	}
	defer rows.Close()

	var out []model.ReferenceProject
	for rows.Next() {
		var p model.ReferenceProject
		if err := rows.Scan(&p.ID, &p.Code, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ExistingVendors 本地既存协力会社（按 id 排序）
func (s *Store) ExistingVendors(ctx context.Context) ([]model.ReferenceVendor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM existing_vendors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing vendors: %w", err)
	}
	defer rows.Close()

	var out []model.ReferenceVendor
	for rows.Next() {
		var v model.ReferenceVendor
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UnmatchedVendorNames 未关联既存系统的协力会社原始名称（按入库顺序）
func (s *Store) UnmatchedVendorNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vendor_name FROM dim_vendor
		WHERE existing_vendor_id IS NULL
		GROUP BY vendor_name
		ORDER BY MIN(vendor_id)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched vendors: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
