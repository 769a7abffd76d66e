package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"costetl/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "costetl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

type stubMatcher struct {
	projectID *int64
	vendors   map[string]int64
}

func (m *stubMatcher) MatchProject(context.Context, string) *int64 { return m.projectID }

func (m *stubMatcher) MatchVendor(_ context.Context, name string) model.MatchResult {
	if id, ok := m.vendors[name]; ok {
		return model.MatchResult{MatchedID: &id, MatchedName: &name, Confidence: 100}
	}
	return model.MatchResult{Confidence: 42}
}

func strPtr(s string) *string { return &s }

func sampleInput() LoadInput {
	paid := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	vendorA, vendorB := "ABC建設", "DEF工業"
	return LoadInput{
		Project: &model.ProjectDim{PJCD: "EM20", Name: strPtr("BBB"), Meta: map[string]string{"PJCD": "EM20"}},
		Accounts: []model.AccountDim{
			{Code: "A.1.1", Name: strPtr("工事費用1"), ParentCode: strPtr("A.1")},
			{Code: "A.1.2", Name: strPtr("工事費用2"), ParentCode: strPtr("A.1")},
		},
		Vendors: []model.VendorDim{{Name: vendorA}, {Name: vendorB}},
		Facts: []model.FactRecord{
			{AccountCode: "A.1.1", VendorName: &vendorA, Measure: model.MeasureBudget, AmountJPY: 100000000, PaymentDate: &paid, SourceFile: "EM20.xlsx", SourceRow: 10, SourceHash: "h1"},
			{AccountCode: "A.1.1", VendorName: &vendorA, Measure: model.MeasureConfirmed, AmountJPY: 85000000, PaymentDate: &paid, SourceFile: "EM20.xlsx", SourceRow: 10, SourceHash: "h1"},
			{AccountCode: "A.1.2", VendorName: &vendorB, Measure: model.MeasureBudget, AmountJPY: 200000000, SourceFile: "EM20.xlsx", SourceRow: 11, SourceHash: "h2"},
		},
	}
}

func TestLoadFacts_SecondLoadOnlySkips(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	first, err := st.LoadFacts(ctx, sampleInput(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, model.LoadSummary{Total: 3, Loaded: 3}, first)

	second, err := st.LoadFacts(ctx, sampleInput(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, model.LoadSummary{Total: 3, Skipped: 3}, second)

	stats, err := st.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Projects)
	require.Equal(t, 2, stats.Accounts)
	require.Equal(t, 2, stats.Vendors)
	require.Equal(t, 3, stats.Facts)
}

func TestLoadFacts_MissingProjectCode(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	in := sampleInput()
	in.Project = nil

	_, err := st.LoadFacts(context.Background(), in, nil, nil)
	require.True(t, errors.Is(err, ErrProjectCodeMissing))
}

func TestLoadFacts_MissingAccountCountsAsError(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	in := sampleInput()
	in.Facts[2].AccountCode = "Z.9"

	sum, err := st.LoadFacts(context.Background(), in, nil, nil)
	require.NoError(t, err)
	require.Equal(t, model.LoadSummary{Total: 3, Loaded: 2, Errors: 1}, sum)
}

func TestLoadFacts_LinksExistingIDs(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	projectID := int64(501)
	matcher := &stubMatcher{projectID: &projectID, vendors: map[string]int64{"ABC建設": 77}}

	_, err := st.LoadFacts(ctx, sampleInput(), matcher, nil)
	require.NoError(t, err)

	var existingProject int64
	require.NoError(t, st.DB().QueryRow(`SELECT existing_project_id FROM dim_project WHERE pjcd = 'EM20'`).Scan(&existingProject))
	require.Equal(t, int64(501), existingProject)

	unmatched, err := st.UnmatchedVendorNames(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"DEF工業"}, unmatched)
}

func TestFacts_ListAndUpdate(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.LoadFacts(ctx, sampleInput(), nil, nil)
	require.NoError(t, err)

	facts, total, err := st.ListFacts(ctx, FactFilter{Measure: model.MeasureBudget})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, facts, 2)
	require.Equal(t, "EM20", facts[0].PJCD)
	require.Equal(t, "ABC建設", *facts[0].VendorName)
	require.Equal(t, "2024-04-01", facts[0].PaymentDate.Format("2006-01-02"))
	require.Nil(t, facts[0].EventDate)

	amount := 123.0
	notes := "修正"
	require.NoError(t, st.UpdateFact(ctx, facts[0].ID, FactPatch{AmountJPY: &amount, Notes: &notes}))

	got, err := st.GetFact(ctx, facts[0].ID)
	require.NoError(t, err)
	require.Equal(t, 123.0, got.AmountJPY)
	require.Equal(t, "修正", got.Notes)

	_, err = st.GetFact(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, st.UpdateFact(ctx, 9999, FactPatch{Notes: &notes}), ErrNotFound)
}

func TestReferenceTables(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SeedReferenceProjects(ctx, []model.ReferenceProject{{ID: 2, Code: "EM21", Name: "B"}, {ID: 1, Code: "EM20", Name: "A"}}))
	require.NoError(t, st.SeedReferenceVendors(ctx, []model.ReferenceVendor{{ID: 1, Name: "ABC商事"}}))
	require.NoError(t, st.SeedReferenceVendors(ctx, []model.ReferenceVendor{{ID: 1, Name: "ABC商事株式会社"}}))

	projects, err := st.ExistingProjects(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.ReferenceProject{{ID: 1, Code: "EM20", Name: "A"}, {ID: 2, Code: "EM21", Name: "B"}}, projects)

	vendors, err := st.ExistingVendors(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.ReferenceVendor{{ID: 1, Name: "ABC商事株式会社"}}, vendors)
}

func TestImportLogsAndSettings(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.CreateImportLog(ctx, "run-1", "EM20.xlsx", "/tmp/EM20.xlsx", 1024, "abc")
	require.NoError(t, err)
	require.NoError(t, st.UpdateImportLog(ctx, id, ImportLogResult{Status: ImportStatusLoaded, DetailRows: 4, TotalFacts: 10, LoadedFacts: 10}))

	logs, err := st.ListImportLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, ImportStatusLoaded, logs[0].Status)
	require.Equal(t, 10, logs[0].LoadedFacts)
	require.NotNil(t, logs[0].CompletedAt)

	_, err = st.GetSetting(ctx, SettingLastRunID)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, st.SetSetting(ctx, SettingLastRunID, "run-1"))
	require.NoError(t, st.SetSetting(ctx, SettingLastRunID, "run-2"))
	v, err := st.GetSetting(ctx, SettingLastRunID)
	require.NoError(t, err)
	require.Equal(t, "run-2", v)
}
