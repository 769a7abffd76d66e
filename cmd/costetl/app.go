package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"costetl/internal/config"
	"costetl/internal/importer"
	"costetl/internal/integrate"
	"costetl/internal/logging"
	"costetl/internal/model"
	"costetl/internal/store"
)

// app 一次命令执行所需的组件
type app struct {
	cfg     *config.AppConfig
	log     *logging.RunLogger
	store   *store.Store
	matcher *integrate.Matcher
	pg      *integrate.PGSource
}

// openApp 加载配置并创建运行日志；withStore 为 true 时打开 SQLite 并构建匹配器
func openApp(ctx context.Context, withStore bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	runLog, err := logging.NewRunLogger(cfg.App.LogDir, uuid.NewString(), os.Stdout)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: runLog}
	if !withStore {
		return a, nil
	}

	a.store, err = store.New(cfg.DB.Path)
	if err != nil {
		a.Close()
		return nil, err
	}

	var source integrate.ReferenceSource = a.store
	if cfg.DB.ExistingDBURL != "" {
		a.pg, err = integrate.NewPGSource(ctx, cfg.DB.ExistingDBURL,
			cfg.Integration.ExistingProjectsTable, cfg.Integration.ExistingVendorsTable)
		if err != nil {
			a.Close()
			return nil, err
		}
		source = a.pg
	}
	a.matcher = integrate.NewMatcher(source, integrate.Options{
		Patterns:    cfg.Rules.VendorNormalizePatterns,
		EnableFuzzy: cfg.Integration.EnableFuzzyVendorMatch,
		Threshold:   float64(cfg.Integration.FuzzyThreshold),
	}, runLog.Entry())
	return a, nil
}

// coordinator 创建导入协调器；未打开 store 时只能 dry-run
func (a *app) coordinator(metrics *importer.Metrics) (*importer.Coordinator, error) {
	if a.store == nil {
		return importer.NewCoordinator(a.cfg, nil, nil, metrics, a.log.Entry())
	}
	return importer.NewCoordinator(a.cfg, a.store, a.matcher, metrics, a.log.Entry())
}

func (a *app) Close() {
	if a.pg != nil {
		a.pg.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.log.Close()
}

// loadExpectedTotals 读取期望合计 YAML（budget / actual_or_plan / confirmed）
func loadExpectedTotals(path string) (map[model.Measure]float64, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return importer.ParseMeasureTotals(raw)
}

// collectInputs 命令行参数优先；否则 --input 指向的文件或目录；都没有时扫描 input_dir
func collectInputs(args []string, input, inputDir string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if input == "" {
		input = inputDir
	}
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", input, err)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	matches, err := filepath.Glob(filepath.Join(input, "*.xlsx"))
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, m := range matches {
		// Excel 打开文件时生成的锁文件
		if strings.HasPrefix(filepath.Base(m), "~$") {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}
