package exporter

// ProgressEvent 导出进度事件
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
	Rows    int    `json:"rows"`
}

func reportProgress(progress func(ProgressEvent), percent int, stage string, rows int) {
	if progress == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	progress(ProgressEvent{
		Percent: percent,
		Stage:   stage,
		Rows:    rows,
	})
}
