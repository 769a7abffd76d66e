package model

// RunSummary 一次批处理的汇总计数
type RunSummary struct {
	RunID          string `json:"run_id"`
	FilesProcessed int    `json:"files_processed"`
	FilesFailed    int    `json:"files_failed"`
	FilesSkipped   int    `json:"files_skipped"`
	TotalFacts     int    `json:"total_facts"`
	LoadedFacts    int    `json:"loaded_facts"`
	SkippedFacts   int    `json:"skipped_facts"`
	Errors         int    `json:"errors"`
	ValidationFail int    `json:"validation_failed"`
}

// LoadSummary 单个文件入库结果
type LoadSummary struct {
	Total   int `json:"total_facts"`
	Loaded  int `json:"loaded_facts"`
	Skipped int `json:"skipped_facts"`
	Errors  int `json:"errors"`
}

// Add 累加单个文件的入库结果
func (s *RunSummary) Add(l LoadSummary) {
	s.TotalFacts += l.Total
	s.LoadedFacts += l.Loaded
	s.SkippedFacts += l.Skipped
	s.Errors += l.Errors
}
