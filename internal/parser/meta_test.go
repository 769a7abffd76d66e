package parser

import (
	"testing"

	"costetl/internal/model"
)

func TestExtractProjectMeta_ColonAndAdjacent(t *testing.T) {
	t.Parallel()

	grid := model.Grid{
		{model.Text("PJCD"), model.Text("EM20"), model.Empty(), model.Empty()},
		{model.Text("案件名：千葉太陽光発電所"), model.Empty(), model.Text("住所:千葉県市原市"), model.Empty()},
		{model.Text("AC"), model.Number(1990), model.Text("DC"), model.Text("2,500kW")},
		{model.Text("メモ"), model.Text("対象外"), model.Text("区分：nan"), model.Empty()},
		{model.Text("項目CD"), model.Text("内容"), model.Text("協力会社"), model.Text("事業開始時予算")},
		{model.Empty(), model.Empty(), model.Empty(), model.Text("金額（円）")},
		{model.Text("PJCD：IGNORED"), model.Empty(), model.Empty(), model.Empty()},
	}

	meta := ExtractProjectMeta(grid, 6)

	want := map[string]string{
		"PJCD": "EM20",
		"案件名":  "千葉太陽光発電所",
		"住所":   "千葉県市原市",
		"AC":   "1990",
		"DC":   "2,500kW",
	}
	for k, v := range want {
		got, ok := meta.Get(k)
		if !ok || got != v {
			t.Fatalf("meta[%s] want=%q got=%q (ok=%v)", k, v, got, ok)
		}
	}
	if _, ok := meta.Get("メモ"); ok {
		t.Fatalf("unrecognized bare key should not be recorded")
	}
	if _, ok := meta.Get("区分"); ok {
		t.Fatalf("null-marker value should not be recorded")
	}
	if meta.ACKW == nil || *meta.ACKW != 1990 {
		t.Fatalf("AC capacity want 1990 got %v", meta.ACKW)
	}
	if meta.DCKW == nil || *meta.DCKW != 2500 {
		t.Fatalf("DC capacity want 2500 got %v", meta.DCKW)
	}
}

func TestExtractProjectMeta_LastOccurrenceWins(t *testing.T) {
	t.Parallel()

	grid := model.Grid{
		{model.Text("PJCD：OLD")},
		{model.Text("PJCD：NEW")},
	}
	meta := ExtractProjectMeta(grid, 2)
	if got, _ := meta.Get("PJCD"); got != "NEW" {
		t.Fatalf("want last occurrence NEW got %q", got)
	}
	if len(meta.Keys) != 1 || meta.Keys[0] != "PJCD" {
		t.Fatalf("unexpected key order %v", meta.Keys)
	}
}

func TestSplitMetaPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text      string
		key, val  string
		wantSplit bool
	}{
		{"案件名：BBB", "案件名", "BBB", true},
		{"住所: 千葉県", "住所", "千葉県", true},
		{"開始:10:30", "開始", "10:30", true},
		// 存在全角冒号时优先于更靠前的半角冒号
		{"備考:旧：EM19", "備考:旧", "EM19", true},
		{"PJCD", "", "", false},
	}
	for _, tt := range tests {
		key, val, ok := splitMetaPair(tt.text)
		if ok != tt.wantSplit || key != tt.key || val != tt.val {
			t.Fatalf("splitMetaPair(%q) = %q, %q, %v", tt.text, key, val, ok)
		}
	}
}
