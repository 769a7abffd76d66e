package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"costetl/internal/model"
)

// AppConfig 应用配置
type AppConfig struct {
	App         PathsConfig       `toml:"app"`
	DB          DBConfig          `toml:"db"`
	Integration IntegrationConfig `toml:"integration"`
	Rules       RulesConfig       `toml:"rules"`
	Columns     ColumnsConfig     `toml:"columns"`
	Server      ServerConfig      `toml:"server"`
}

// PathsConfig 目录与默认 Sheet
type PathsConfig struct {
	InputDir     string `toml:"input_dir"`
	ArchiveDir   string `toml:"archive_dir"`
	RejectDir    string `toml:"reject_dir"`
	LogDir       string `toml:"log_dir"`
	DefaultSheet string `toml:"default_sheet"`
}

// DBConfig 数据库配置
type DBConfig struct {
	Path          string `toml:"path"`            // SQLite 文件
	ExistingDBURL string `toml:"existing_db_url"` // 既存系统（PostgreSQL），为空时使用本地参照表
}

// IntegrationConfig 与既存系统的名称匹配配置
type IntegrationConfig struct {
	ExistingProjectsTable  string `toml:"existing_projects_table"`
	ExistingVendorsTable   string `toml:"existing_vendors_table"`
	EnableFuzzyVendorMatch bool   `toml:"enable_fuzzy_vendor_match"`
	FuzzyThreshold         int    `toml:"fuzzy_threshold"`
}

// RulesConfig 业务规则
type RulesConfig struct {
	AccountCodeRegex        string                 `toml:"account_code_regex"`
	SubtotalKeywords        []string               `toml:"subtotal_keywords"`
	VendorNormalizePatterns []model.ReplacePattern `toml:"vendor_normalize_patterns"`
}

// ColumnsConfig 规范化后的列名
type ColumnsConfig struct {
	AccountCode string                `toml:"account_code"`
	AccountName string                `toml:"account_name"`
	Vendor      string                `toml:"vendor"`
	PaymentDate string                `toml:"payment_date"`
	Notes       []string              `toml:"notes"`
	Measures    []model.MeasureColumn `toml:"measures"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port int `toml:"port"`
}

// envOverrides 环境变量覆盖项
type envOverrides struct {
	DBPath        string `env:"COSTETL_DB_PATH"`
	ExistingDBURL string `env:"EXISTING_DATABASE_URL"`
	LogDir        string `env:"COSTETL_LOG_DIR"`
	Port          int    `env:"COSTETL_PORT"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		App: PathsConfig{
			InputDir:     "./data/inbox",
			ArchiveDir:   "./data/archive",
			RejectDir:    "./data/rejects",
			LogDir:       "./logs",
			DefaultSheet: "Sheet1",
		},
		DB: DBConfig{
			Path: "./data/costetl.db",
		},
		Integration: IntegrationConfig{
			ExistingProjectsTable:  "existing_projects",
			ExistingVendorsTable:   "existing_vendors",
			EnableFuzzyVendorMatch: true,
			FuzzyThreshold:         90,
		},
		Rules: RulesConfig{
			AccountCodeRegex: `^[A-Z]\.[0-9]+(\.[0-9]+)*$`,
			SubtotalKeywords: []string{"合計", "小計", "累計", "売上合計", "kW単価"},
			VendorNormalizePatterns: []model.ReplacePattern{
				{Match: "（株）", Replace: ""},
				{Match: "(株)", Replace: ""},
				{Match: "株式会社", Replace: ""},
				{Match: "有限会社", Replace: ""},
				{Match: "(有)", Replace: ""},
				{Match: "　", Replace: " "}, // 全角空格
			},
		},
		Columns: ColumnsConfig{
			AccountCode: "項目CD",
			AccountName: "内容",
			Vendor:      `協力会社__売上げの場合：売り先\n仕入れの場合：仕入れ先`,
			PaymentDate: "請求書__支払日",
			Notes:       []string{"備考", "notes", "notes2", "AF契約", "af_contract"},
			Measures: []model.MeasureColumn{
				{Name: model.MeasureBudget, Amount: "事業開始時予算__金額（円）", Date: "事業開始時予算__日付"},
				{Name: model.MeasureActualOrPlan, Amount: "現時点の実施済み及び予定__金額（円）", Date: "現時点の実施済み及び予定__日付"},
				{Name: model.MeasureConfirmed, Amount: "確定金額__金額", Date: "確定金額__日付"},
			},
		},
		Server: ServerConfig{
			Port: 20262,
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// Load 加载配置：默认值 <- config.toml <- .env/环境变量
// path 为空时使用可执行文件同目录下的 config.toml；文件不存在时使用默认配置
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		resetListedArrays(data, cfg)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// 配置文件不存在，使用默认配置
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// .env 可选
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resetListedArrays 文件中出现的表数组整体替换默认值，而不是追加
func resetListedArrays(data []byte, cfg *AppConfig) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return
	}

	has := func(section, key string) bool {
		sectionAny, ok := raw[section]
		if !ok {
			return false
		}
		sectionMap, ok := sectionAny.(map[string]any)
		if !ok {
			return false
		}
		_, ok = sectionMap[key]
		return ok
	}

	if has("rules", "vendor_normalize_patterns") {
		cfg.Rules.VendorNormalizePatterns = nil
	}
	if has("rules", "subtotal_keywords") {
		cfg.Rules.SubtotalKeywords = nil
	}
	if has("columns", "notes") {
		cfg.Columns.Notes = nil
	}
	if has("columns", "measures") {
		cfg.Columns.Measures = nil
	}
}

// applyEnv 环境变量覆盖
func applyEnv(cfg *AppConfig) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to parse env: %w", err)
	}
	if o.DBPath != "" {
		cfg.DB.Path = o.DBPath
	}
	if o.ExistingDBURL != "" {
		cfg.DB.ExistingDBURL = o.ExistingDBURL
	}
	if o.LogDir != "" {
		cfg.App.LogDir = o.LogDir
	}
	if o.Port > 0 {
		cfg.Server.Port = o.Port
	}
	return nil
}

// Save 保存配置到 config.toml
func Save(cfg *AppConfig, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories 确保输入/归档/拒收/日志目录存在
func (c *AppConfig) EnsureDirectories() error {
	for _, dir := range []string{c.App.InputDir, c.App.ArchiveDir, c.App.RejectDir, c.App.LogDir, filepath.Dir(c.DB.Path)} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
