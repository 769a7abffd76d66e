package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"costetl/internal/config"
	"costetl/internal/model"
)

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.xlsx", "~$a.xlsx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	files, err := collectInputs(nil, dir, "")
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.xlsx"), filepath.Join(dir, "b.xlsx")}, files)

	files, err = collectInputs(nil, "", dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	files, err = collectInputs([]string{"x.xlsx"}, dir, "")
	require.NoError(t, err)
	require.Equal(t, []string{"x.xlsx"}, files)

	single := filepath.Join(dir, "a.xlsx")
	files, err = collectInputs(nil, single, "")
	require.NoError(t, err)
	require.Equal(t, []string{single}, files)

	_, err = collectInputs(nil, filepath.Join(dir, "missing"), "")
	require.Error(t, err)
}

func TestLoadExpectedTotals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expected.yaml")
	require.NoError(t, os.WriteFile(path, []byte("budget: 836078000\nactual_or_plan: 778222542\nconfirmed: 147640758\n"), 0644))

	totals, err := loadExpectedTotals(path)
	require.NoError(t, err)
	require.Equal(t, map[model.Measure]float64{
		model.MeasureBudget:       836078000,
		model.MeasureActualOrPlan: 778222542,
		model.MeasureConfirmed:    147640758,
	}, totals)

	none, err := loadExpectedTotals("")
	require.NoError(t, err)
	require.Nil(t, none)

	require.NoError(t, os.WriteFile(path, []byte("forecast: 1\n"), 0644))
	_, err = loadExpectedTotals(path)
	require.Error(t, err)
}

func TestInitCmd_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	root := newRootCmd()
	root.SetOut(&strings.Builder{})
	root.SetArgs([]string{"--config", path, "init"})
	require.NoError(t, root.Execute())

	cfg, err := config.Load(path)
	require.NoError(t, err)
	def := config.DefaultConfig()
	require.Equal(t, def.Columns.AccountCode, cfg.Columns.AccountCode)
	require.Equal(t, def.Columns.Vendor, cfg.Columns.Vendor)
	require.Equal(t, def.Rules.SubtotalKeywords, cfg.Rules.SubtotalKeywords)

	root = newRootCmd()
	root.SetArgs([]string{"--config", path, "init"})
	require.Error(t, root.Execute())
}
