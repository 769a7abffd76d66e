package parser

import (
	"strings"

	"costetl/internal/model"
)

// MetaKeyProjectCode 元信息中的项目代码键
const MetaKeyProjectCode = "PJCD"

// ExtractProjectMeta 从表头上方区域提取项目元信息
// 支持 "キー：値" / "キー:値" 单格形式，以及键名在左、值在右的相邻单元格形式
func ExtractProjectMeta(grid model.Grid, dataStartRow int) *model.ProjectMeta {
	meta := model.NewProjectMeta()

	limit := dataStartRow
	if len(grid) < limit {
		limit = len(grid)
	}

	for r := 0; r < limit; r++ {
		row := grid[r]
		for c, cell := range row {
			if cell.IsNull() {
				continue
			}
			text := cell.String()

			if key, value, ok := splitMetaPair(text); ok {
				if value != "" && !model.IsNullMarker(value) {
					meta.Set(key, value)
				}
				continue
			}

			if c+1 >= len(row) || row[c+1].IsNull() {
				continue
			}
			key := strings.TrimSpace(text)
			if ContainsAny(key, MetaKeyFragments) {
				meta.Set(key, strings.TrimSpace(row[c+1].String()))
			}
		}
	}

	if v, ok := meta.Get("AC"); ok {
		meta.ACKW = parseCapacity(v)
	}
	if v, ok := meta.Get("DC"); ok {
		meta.DCKW = parseCapacity(v)
	}
	return meta
}

// splitMetaPair 有全角冒号时按第一个全角冒号拆分，否则按第一个半角冒号
func splitMetaPair(text string) (key, value string, ok bool) {
	for _, sep := range []string{"：", ":"} {
		if k, v, found := strings.Cut(text, sep); found {
			return strings.TrimSpace(k), strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

// parseCapacity 容量值，允许带 kW 单位
func parseCapacity(value string) *float64 {
	v := strings.TrimSpace(FoldWidth(value))
	for _, unit := range []string{"kW", "kw", "KW"} {
		if strings.HasSuffix(v, unit) {
			v = strings.TrimSpace(strings.TrimSuffix(v, unit))
			break
		}
	}
	return ParseNumber(v)
}
