package integrate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"costetl/internal/model"
)

var defaultPatterns = []model.ReplacePattern{
	{Match: "（株）", Replace: ""},
	{Match: "(株)", Replace: ""},
	{Match: "株式会社", Replace: ""},
	{Match: "有限会社", Replace: ""},
	{Match: "(有)", Replace: ""},
	{Match: "　", Replace: " "},
}

type fakeSource struct {
	projects     []model.ReferenceProject
	vendors      []model.ReferenceVendor
	err          error
	projectCalls int
	vendorCalls  int
}

func (f *fakeSource) ExistingProjects(context.Context) ([]model.ReferenceProject, error) {
	f.projectCalls++
	return f.projects, f.err
}

func (f *fakeSource) ExistingVendors(context.Context) ([]model.ReferenceVendor, error) {
	f.vendorCalls++
	return f.vendors, f.err
}

func newTestMatcher(src ReferenceSource, fuzzyEnabled bool, threshold float64) *Matcher {
	logger, _ := test.NewNullLogger()
	return NewMatcher(src, Options{Patterns: defaultPatterns, EnableFuzzy: fuzzyEnabled, Threshold: threshold}, logger)
}

func TestMatchVendor_NormalizedExact(t *testing.T) {
	t.Parallel()

	src := &fakeSource{vendors: []model.ReferenceVendor{
		{ID: 2, Name: "XYZ工業"},
		{ID: 1, Name: "ABC株式会社商事"},
	}}
	m := newTestMatcher(src, true, 90)

	res := m.MatchVendor(context.Background(), "ABC（株）商事")
	require.True(t, res.Matched())
	require.Equal(t, int64(1), *res.MatchedID)
	require.Equal(t, "ABC株式会社商事", *res.MatchedName)
	require.Equal(t, 100.0, res.Confidence)
}

func TestMatchVendor_FuzzyThreshold(t *testing.T) {
	t.Parallel()

	src := &fakeSource{vendors: []model.ReferenceVendor{
		{ID: 7, Name: "東京電力エナジーパートナー"},
		{ID: 8, Name: "山田電気工業"},
	}}
	ctx := context.Background()

	m := newTestMatcher(src, true, 90)
	res := m.MatchVendor(ctx, "東京電力エナジーパートナ")
	require.True(t, res.Matched())
	require.Equal(t, int64(7), *res.MatchedID)
	require.InDelta(t, 96.0, res.Confidence, 0.01)

	// 末尾多一个字符：2*6/13
	res = m.MatchVendor(ctx, "山田電気工業所")
	require.True(t, res.Matched())
	require.Equal(t, int64(8), *res.MatchedID)
	require.InDelta(t, 92.31, res.Confidence, 0.01)

	// 低于阈值：不匹配，但仍报告最高得分
	strict := newTestMatcher(src, true, 95)
	res = strict.MatchVendor(ctx, "山田電気工業所")
	require.False(t, res.Matched())
	require.Nil(t, res.MatchedName)
	require.InDelta(t, 92.31, res.Confidence, 0.01)
}

func TestMatchVendor_FuzzyDisabled(t *testing.T) {
	t.Parallel()

	src := &fakeSource{vendors: []model.ReferenceVendor{{ID: 7, Name: "東京電力エナジーパートナー"}}}
	res := newTestMatcher(src, false, 90).MatchVendor(context.Background(), "東京電力エナジーパートナ")
	require.False(t, res.Matched())
	require.Zero(t, res.Confidence)
}

func TestMatchVendor_EmptyInputOrReference(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.Equal(t, model.MatchResult{}, newTestMatcher(&fakeSource{vendors: []model.ReferenceVendor{{ID: 1, Name: "A"}}}, true, 90).MatchVendor(ctx, "  "))
	require.Equal(t, model.MatchResult{}, newTestMatcher(&fakeSource{}, true, 90).MatchVendor(ctx, "ABC"))
	require.Equal(t, model.MatchResult{}, newTestMatcher(nil, true, 90).MatchVendor(ctx, "ABC"))
}

func TestCandidates_TieBreak(t *testing.T) {
	t.Parallel()

	src := &fakeSource{vendors: []model.ReferenceVendor{
		{ID: 9, Name: "ABE"},
		{ID: 9, Name: "ABD"},
		{ID: 5, Name: "ABD"},
		{ID: 1, Name: "ZZZ"},
	}}
	got := newTestMatcher(src, true, 90).Candidates(context.Background(), "ABC", 3)
	require.Len(t, got, 3)
	require.Equal(t, model.Candidate{ID: 5, Name: "ABD", Score: got[0].Score}, got[0])
	require.Equal(t, int64(9), got[1].ID)
	require.Equal(t, "ABD", got[1].Name)
	require.Equal(t, "ABE", got[2].Name)
	require.Equal(t, got[0].Score, got[2].Score)
}

func TestMatchProject_CaseInsensitiveExact(t *testing.T) {
	t.Parallel()

	src := &fakeSource{projects: []model.ReferenceProject{
		{ID: 3, Code: "EM19", Name: "A"},
		{ID: 4, Code: " em20 ", Name: "B"},
	}}
	m := newTestMatcher(src, true, 90)
	ctx := context.Background()

	id := m.MatchProject(ctx, "EM20")
	require.NotNil(t, id)
	require.Equal(t, int64(4), *id)
	require.Nil(t, m.MatchProject(ctx, "EM2"))
	require.Nil(t, m.MatchProject(ctx, ""))
	require.Equal(t, 1, src.projectCalls)
}

func TestMatcher_LoadFailureDegradesAndCaches(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: errors.New("connection refused")}
	m := newTestMatcher(src, true, 90)
	ctx := context.Background()

	require.False(t, m.MatchVendor(ctx, "ABC").Matched())
	require.False(t, m.MatchVendor(ctx, "DEF").Matched())
	require.Nil(t, m.MatchProject(ctx, "EM20"))
	require.Equal(t, 1, src.vendorCalls)
	require.Equal(t, 1, src.projectCalls)

	m.Reset()
	src.err = nil
	src.vendors = []model.ReferenceVendor{{ID: 1, Name: "ABC"}}
	require.True(t, m.MatchVendor(ctx, "ABC").Matched())
	require.Equal(t, 2, src.vendorCalls)
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	require.Equal(t, 100.0, Similarity("", ""))
	require.Equal(t, 100.0, Similarity("ABC商事", "ABC商事"))
	require.Equal(t, 0.0, Similarity("ABC", ""))
	require.InDelta(t, 66.67, Similarity("ABC", "ABD"), 0.01)

	tests := []struct {
		a, b string
		want float64
	}{
		{"山田電気工業所", "山田電気工業", 92.31},
		{"ABC建設", "ABC建設工業", 83.33},
		{"abcd", "acbd", 75.0},
		{"東京電力", "東電", 66.67},
	}
	for _, tt := range tests {
		require.InDelta(t, tt.want, Similarity(tt.a, tt.b), 0.01, "%s vs %s", tt.a, tt.b)
		require.InDelta(t, tt.want, Similarity(tt.b, tt.a), 0.01, "%s vs %s", tt.b, tt.a)
	}
}

func TestUnmatchedReport(t *testing.T) {
	t.Parallel()

	src := &fakeSource{vendors: []model.ReferenceVendor{
		{ID: 1, Name: "ABC商事"},
		{ID: 2, Name: "DEF工業"},
		{ID: 3, Name: "GHI商会"},
		{ID: 4, Name: "JKL建設"},
	}}
	m := newTestMatcher(src, true, 90)
	ctx := context.Background()

	rows := BuildUnmatchedReport(ctx, m, []string{"ABC株式会社商事", "DEF工業販売", ""})
	require.Len(t, rows, 1)
	require.Equal(t, "DEF工業販売", rows[0].InputName)
	require.Equal(t, "DEF工業販売", rows[0].NormalizedName)
	require.Equal(t, "DEF工業", rows[0].Candidate1)
	require.InDelta(t, 83.33, rows[0].Score1, 0.01)
	require.NotEmpty(t, rows[0].Candidate3)

	path := filepath.Join(t.TempDir(), "unmatched.csv")
	require.NoError(t, WriteUnmatchedReport(path, rows))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "input_vendor,normalized_vendor,candidate_1,score_1"))

	empty := filepath.Join(t.TempDir(), "none.csv")
	require.NoError(t, WriteUnmatchedReport(empty, nil))
	_, err = os.Stat(empty)
	require.True(t, os.IsNotExist(err))
}
