package transform

import (
	"strings"

	"costetl/internal/model"
	"costetl/internal/parser"
)

// 元信息中的项目字段
const (
	MetaKeyProjectCode = parser.MetaKeyProjectCode
	MetaKeyProjectName = "案件名"
	MetaKeyAddress     = "住所"
)

// ExtractDimensions 从元信息和明细行提取项目/科目/协力会社维度
func ExtractDimensions(meta *model.ProjectMeta, details []*model.DetailRow, cols Columns) model.Dimensions {
	var dims model.Dimensions

	if project := projectFromMeta(meta); project != nil {
		dims.Projects = append(dims.Projects, *project)
	}

	seenAccounts := make(map[string]bool)
	seenVendors := make(map[string]bool)
	for _, row := range details {
		code := strings.TrimSpace(row.Get(cols.AccountCode).String())
		if code != "" && !seenAccounts[code] {
			seenAccounts[code] = true
			dims.Accounts = append(dims.Accounts, model.AccountDim{
				Code:       code,
				Name:       optionalText(row.Get(cols.AccountName)),
				ParentCode: parser.ExtractAccountHierarchy(code),
			})
		}

		if vendor := optionalText(row.Get(cols.Vendor)); vendor != nil && *vendor != "" && !seenVendors[*vendor] {
			seenVendors[*vendor] = true
			dims.Vendors = append(dims.Vendors, model.VendorDim{Name: *vendor})
		}
	}
	return dims
}

// projectFromMeta 只有 PJCD 存在时才生成项目维度
func projectFromMeta(meta *model.ProjectMeta) *model.ProjectDim {
	pjcd, ok := meta.Get(MetaKeyProjectCode)
	if !ok || strings.TrimSpace(pjcd) == "" {
		return nil
	}

	p := &model.ProjectDim{
		PJCD: strings.TrimSpace(pjcd),
		ACKW: meta.ACKW,
		DCKW: meta.DCKW,
		Meta: make(map[string]string, meta.Len()),
	}
	if v, ok := meta.Get(MetaKeyProjectName); ok {
		p.Name = &v
	}
	if v, ok := meta.Get(MetaKeyAddress); ok {
		p.Address = &v
	}
	for k, v := range meta.Fields {
		p.Meta[k] = v
	}
	return p
}
