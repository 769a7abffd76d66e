package transform

import (
	"sort"

	"github.com/shopspring/decimal"

	"costetl/internal/model"
)

// relativeTolerance 合计校验允许的相对误差（0.1%）
var relativeTolerance = decimal.NewFromFloat(0.001)

// MeasureCheck 单个口径的合计校验结果
type MeasureCheck struct {
	Measure    model.Measure   `json:"measure"`
	Expected   decimal.Decimal `json:"expected"`
	Actual     decimal.Decimal `json:"actual"`
	Difference decimal.Decimal `json:"difference"`
	Tolerance  decimal.Decimal `json:"tolerance"`
	Passed     bool            `json:"passed"`
}

// ValidationReport 合计校验报告；不通过只做标记，不中断抽取
type ValidationReport struct {
	Checks []MeasureCheck `json:"checks"`
	Passed bool           `json:"passed"`
}

// Failed 未通过的口径
func (r *ValidationReport) Failed() []MeasureCheck {
	var out []MeasureCheck
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// ValidateTotals 按口径汇总事实金额并与期望合计比较，误差不超过 |期望值| 的 0.1%
func ValidateTotals(facts []model.FactRecord, expected map[model.Measure]float64) *ValidationReport {
	actual := make(map[model.Measure]decimal.Decimal)
	for _, f := range facts {
		actual[f.Measure] = actual[f.Measure].Add(decimal.NewFromFloat(f.AmountJPY))
	}

	measures := make([]model.Measure, 0, len(expected))
	for m := range expected {
		measures = append(measures, m)
	}
	sort.Slice(measures, func(i, j int) bool {
		ri, rj := measureRank(measures[i]), measureRank(measures[j])
		if ri != rj {
			return ri < rj
		}
		return measures[i] < measures[j]
	})

	report := &ValidationReport{Passed: true}
	for _, m := range measures {
		exp := decimal.NewFromFloat(expected[m])
		act := actual[m]
		diff := act.Sub(exp).Abs()
		tol := exp.Abs().Mul(relativeTolerance)

		check := MeasureCheck{
			Measure:    m,
			Expected:   exp,
			Actual:     act,
			Difference: diff,
			Tolerance:  tol,
			Passed:     diff.LessThanOrEqual(tol),
		}
		if !check.Passed {
			report.Passed = false
		}
		report.Checks = append(report.Checks, check)
	}
	return report
}

func measureRank(m model.Measure) int {
	switch m {
	case model.MeasureBudget:
		return 0
	case model.MeasureActualOrPlan:
		return 1
	case model.MeasureConfirmed:
		return 2
	}
	return 3
}
