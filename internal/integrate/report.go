package integrate

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"costetl/internal/model"
	"costetl/internal/parser"
)

// reportCandidates 对账报告中每个协力会社的候选数
const reportCandidates = 3

// BuildUnmatchedReport 未匹配协力会社及前 3 个候选；没有参照数据时返回空
func BuildUnmatchedReport(ctx context.Context, m *Matcher, names []string) []model.UnmatchedVendor {
	var out []model.UnmatchedVendor
	for _, name := range names {
		if name == "" {
			continue
		}
		if m.MatchVendor(ctx, name).Matched() {
			continue
		}
		candidates := m.Candidates(ctx, name, reportCandidates)
		if len(candidates) == 0 {
			continue
		}

		row := model.UnmatchedVendor{
			InputName:      name,
			NormalizedName: parser.NormalizeVendorName(name, m.Patterns()),
		}
		for i, c := range candidates {
			switch i {
			case 0:
				row.Candidate1, row.Score1 = c.Name, c.Score
			case 1:
				row.Candidate2, row.Score2 = c.Name, c.Score
			case 2:
				row.Candidate3, row.Score3 = c.Name, c.Score
			}
		}
		out = append(out, row)
	}
	return out
}

// WriteUnmatchedReport 输出 CSV 对账报告；没有未匹配项时不生成文件
func WriteUnmatchedReport(path string, rows []model.UnmatchedVendor) error {
	if len(rows) == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write unmatched report: %w", err)
	}
	return nil
}
