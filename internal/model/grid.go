package model

// Grid 原始单元格网格（行优先，未应用表头）
type Grid [][]Cell

// Width 最大列数
func (g Grid) Width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// At 取单元格，越界返回空单元格
func (g Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return Empty()
	}
	return g[row][col]
}

// Rectangular 返回补齐到统一列数的副本
func (g Grid) Rectangular() Grid {
	width := g.Width()
	out := make(Grid, len(g))
	for i, row := range g {
		padded := make([]Cell, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

// HeaderResult 表头识别结果
type HeaderResult struct {
	HeaderRow    int      `json:"headerRow"`
	DataStartRow int      `json:"dataStartRow"`
	ColumnNames  []string `json:"columnNames"`
}

// ProjectMeta 表头上方的项目元信息
type ProjectMeta struct {
	Fields map[string]string `json:"fields"`
	Keys   []string          `json:"keys"` // 首次出现顺序
	ACKW   *float64          `json:"acKw,omitempty"`
	DCKW   *float64          `json:"dcKw,omitempty"`
}

// NewProjectMeta 创建空元信息
func NewProjectMeta() *ProjectMeta {
	return &ProjectMeta{Fields: make(map[string]string)}
}

// Set 写入键值；重复键以最后一次出现为准
func (m *ProjectMeta) Set(key, value string) {
	if _, ok := m.Fields[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Fields[key] = value
}

// Get 读取键值
func (m *ProjectMeta) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.Fields[key]
	return v, ok
}

// Len 键数量
func (m *ProjectMeta) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Fields)
}

// DetailRow 明细行：列名到单元格的映射 + 来源追踪
type DetailRow struct {
	Columns    []string
	Cells      []Cell
	SourceFile string
	SourceRow  int // Excel 行号（1 起）
	SourceHash string
}

// Get 按列名取值（重名列取第一列），不存在返回空单元格
func (r *DetailRow) Get(column string) Cell {
	for i, name := range r.Columns {
		if name == column {
			if i < len(r.Cells) {
				return r.Cells[i]
			}
			break
		}
	}
	return Empty()
}

// Has 是否包含列
func (r *DetailRow) Has(column string) bool {
	for _, name := range r.Columns {
		if name == column {
			return true
		}
	}
	return false
}
