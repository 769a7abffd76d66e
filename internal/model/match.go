package model

// ReferenceProject 既存系统的项目
type ReferenceProject struct {
	ID   int64  `json:"id" csv:"id"`
	Code string `json:"code" csv:"code"`
	Name string `json:"name" csv:"name"`
}

// ReferenceVendor 既存系统的协力会社
type ReferenceVendor struct {
	ID   int64  `json:"id" csv:"id"`
	Name string `json:"name" csv:"name"`
}

// MatchResult 名称匹配结果
type MatchResult struct {
	MatchedID   *int64  `json:"matchedId"`
	MatchedName *string `json:"matchedName"`
	Confidence  float64 `json:"confidence"` // 0-100
}

// Matched 是否匹配成功
func (r MatchResult) Matched() bool { return r.MatchedID != nil }

// Candidate 模糊匹配候选
type Candidate struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// UnmatchedVendor 未匹配协力会社对账行
type UnmatchedVendor struct {
	InputName      string  `json:"inputVendor" csv:"input_vendor"`
	NormalizedName string  `json:"normalizedVendor" csv:"normalized_vendor"`
	Candidate1     string  `json:"candidate1" csv:"candidate_1"`
	Score1         float64 `json:"score1" csv:"score_1"`
	Candidate2     string  `json:"candidate2" csv:"candidate_2"`
	Score2         float64 `json:"score2" csv:"score_2"`
	Candidate3     string  `json:"candidate3" csv:"candidate_3"`
	Score3         float64 `json:"score3" csv:"score_3"`
}
