package store

import (
	"context"
	"database/sql"
	"fmt"
)

// 设置项
const (
	SettingLastRunID = "last_run_id"
	SettingLastRunAt = "last_run_at"
)

// GetSetting 获取设置项，不存在返回 ErrNotFound
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
		}
		return "", err
	}
	return value, nil
}

// SetSetting 设置项
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// Stats 各表记录数
type Stats struct {
	Projects         int `json:"projects"`
	Accounts         int `json:"accounts"`
	Vendors          int `json:"vendors"`
	UnmatchedVendors int `json:"unmatchedVendors"`
	Facts            int `json:"facts"`
	ImportLogs       int `json:"importLogs"`
}

// GetStats 统计星型模型各表的记录数
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	queries := []struct {
		dest  *int
		query string
	}{
		{&st.Projects, "SELECT COUNT(*) FROM dim_project"},
		{&st.Accounts, "SELECT COUNT(*) FROM dim_account"},
		{&st.Vendors, "SELECT COUNT(*) FROM dim_vendor"},
		{&st.UnmatchedVendors, "SELECT COUNT(*) FROM dim_vendor WHERE existing_vendor_id IS NULL"},
		{&st.Facts, "SELECT COUNT(*) FROM fct_cost"},
		{&st.ImportLogs, "SELECT COUNT(*) FROM import_logs"},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}
	return &st, nil
}
