package integrate

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"

	"costetl/internal/model"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PGSource 从既存系统（PostgreSQL）读取参照数据
type PGSource struct {
	pool          *pgxpool.Pool
	projectsTable string
	vendorsTable  string
}

// NewPGSource 连接既存系统数据库
func NewPGSource(ctx context.Context, dsn, projectsTable, vendorsTable string) (*PGSource, error) {
	for _, table := range []string{projectsTable, vendorsTable} {
		if !tableNamePattern.MatchString(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect existing database: %w", err)
	}
	return &PGSource{
		pool:          pool,
		projectsTable: projectsTable,
		vendorsTable:  vendorsTable,
	}, nil
}

// Close 关闭连接池
func (s *PGSource) Close() {
	s.pool.Close()
}

// ExistingProjects 既存项目列表（按 id 排序）
func (s *PGSource) ExistingProjects(ctx context.Context) ([]model.ReferenceProject, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT id, COALESCE(pjcd, ''), COALESCE(name, '') FROM %s ORDER BY id`, s.projectsTable))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.projectsTable, err)
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

// ExistingVendors 既存协力会社列表（按 id 排序）
func (s *PGSource) ExistingVendors(ctx context.Context) ([]model.ReferenceVendor, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT id, COALESCE(name, '') FROM %s ORDER BY id`, s.vendorsTable))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.vendorsTable, err)
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
