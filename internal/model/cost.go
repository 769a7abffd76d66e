package model

import "time"

// Measure 金额口径
type Measure string

const (
	MeasureBudget       Measure = "budget"         // 事業開始時予算
	MeasureActualOrPlan Measure = "actual_or_plan" // 現時点の実施済み及び予定
	MeasureConfirmed    Measure = "confirmed"      // 確定金額
)

// Valid 是否为已知口径
func (m Measure) Valid() bool {
	switch m {
	case MeasureBudget, MeasureActualOrPlan, MeasureConfirmed:
		return true
	}
	return false
}

// MeasureEvent 宽表一行中单个口径展开后的事件
type MeasureEvent struct {
	Measure     Measure
	AmountJPY   float64
	EventDate   *time.Time
	PaymentDate *time.Time
	Notes       string
	SourceFile  string
	SourceRow   int
	SourceHash  string
}

// FactRecord 成本事实
type FactRecord struct {
	ID          int64      `json:"id,omitempty"`
	PJCD        string     `json:"pjcd,omitempty"` // 仅查询结果填充
	AccountCode string     `json:"accountCode"`
	VendorName  *string    `json:"vendorName"`
	Measure     Measure    `json:"measure"`
	AmountJPY   float64    `json:"amountJpy"`
	EventDate   *time.Time `json:"eventDate"`
	PaymentDate *time.Time `json:"paymentDate"`
	Notes       string     `json:"notes"`
	SourceFile  string     `json:"sourceFile"`
	SourceRow   int        `json:"sourceRow"`
	SourceHash  string     `json:"sourceHash"`
}

// ProjectDim 项目维度候选
type ProjectDim struct {
	PJCD    string            `json:"pjcd"`
	Name    *string           `json:"name"`
	Address *string           `json:"address"`
	ACKW    *float64          `json:"acKw"`
	DCKW    *float64          `json:"dcKw"`
	Meta    map[string]string `json:"meta"`
}

// AccountDim 科目维度候选
type AccountDim struct {
	Code       string  `json:"code"`
	Name       *string `json:"name"`
	ParentCode *string `json:"parentCode"`
}

// VendorDim 协力会社维度候选
type VendorDim struct {
	Name string `json:"name"`
}

// Dimensions 一个文件抽取出的全部维度候选
type Dimensions struct {
	Projects []ProjectDim `json:"projects"`
	Accounts []AccountDim `json:"accounts"`
	Vendors  []VendorDim  `json:"vendors"`
}

// MeasureColumn 口径与金额列/日期列的对应
type MeasureColumn struct {
	Name   Measure `toml:"name"`
	Amount string  `toml:"amount"`
	Date   string  `toml:"date"`
}

// ReplacePattern 字面替换规则（按顺序依次应用）
type ReplacePattern struct {
	Match   string `toml:"match"`
	Replace string `toml:"replace"`
}
