// Package collector walks the capability marketplace portal company by
// company and records every listed ability in the workbook.
package collector

import (
	"strings"
)

// Company and ability statuses written to the workbook.
const (
	StatusSuccess = "查询成功"
	StatusPartial = "查询部分成功"
	StatusFailed  = "查询失败"
)

// Missing marks a detail field the portal did not show.
const Missing = "/"

// CatalogueLevels is the depth of the portal's ability catalogue.
const CatalogueLevels = 5

// MaxHighlights is the number of highlight columns on a company sheet.
const MaxHighlights = 5

// AbilityHeader is the header row of a company sheet.
var AbilityHeader = []string{
	"能力名称", "状态", "能力介绍", "能力编码", "能力ID", "能力类型", "细分类型",
	"能力目录一级", "能力目录二级", "能力目录三级", "能力目录四级", "能力目录五级",
	"上架日期", "更新日期",
	"能力亮点1", "能力亮点2", "能力亮点3", "能力亮点4", "能力亮点5",
	"售前电话", "技术支持电话", "客服电话",
}

// AbilityDetail is one ability as shown on its portal detail page.
type AbilityDetail struct {
	Name         string
	Status       string
	Introduction string
	Code         string
	ID           string
	Type         string
	Subtype      string
	Catalogue    [CatalogueLevels]string
	Listed       string
	Updated      string
	Highlights   [MaxHighlights]string
	PreSales     string
	Support      string
	Service      string
}

// FailedDetail is the row written for an ability whose page could not be read.
func FailedDetail(name string) AbilityDetail {
	return AbilityDetail{Name: name, Status: StatusFailed}
}

func (d AbilityDetail) fields() []string {
	out := []string{d.Introduction, d.Code, d.ID, d.Type, d.Subtype}
	out = append(out, d.Catalogue[:]...)
	out = append(out, d.Listed, d.Updated)
	out = append(out, d.Highlights[:]...)
	return append(out, d.PreSales, d.Support, d.Service)
}

// Empty reports whether nothing but the name was read.
func (d AbilityDetail) Empty() bool {
	for _, v := range d.fields() {
		if v != "" && v != Missing {
			return false
		}
	}
	return true
}

// Resolve sets Status from the extracted fields. A detail that is already
// failed stays failed and loses its partial fields.
func (d AbilityDetail) Resolve() AbilityDetail {
	if d.Status == StatusFailed || d.Empty() {
		return FailedDetail(d.Name)
	}
	d.Status = StatusSuccess
	return d
}

// Row returns the detail as a company sheet row, in AbilityHeader order.
func (d AbilityDetail) Row() []interface{} {
	values := append([]string{d.Name, d.Status}, d.fields()...)
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

// SplitCatalogue cuts a "一级-二级-..." catalogue path into its levels.
// Levels the path does not reach are Missing.
func SplitCatalogue(path string) [CatalogueLevels]string {
	var out [CatalogueLevels]string
	parts := strings.Split(path, "-")
	for i := range out {
		out[i] = Missing
		if i < len(parts) {
			if p := strings.TrimSpace(parts[i]); p != "" {
				out[i] = p
			}
		}
	}
	return out
}

// Highlights pairs highlight titles with their contents as "title：content".
// At most MaxHighlights are kept; the rest of the slots are Missing.
func Highlights(titles, contents []string) [MaxHighlights]string {
	var out [MaxHighlights]string
	for i := range out {
		out[i] = Missing
		if i < len(titles) && i < len(contents) {
			out[i] = strings.TrimSpace(titles[i]) + "：" + strings.TrimSpace(contents[i])
		}
	}
	return out
}

// CompanyStatus summarizes the ability statuses of a company sheet. Blank
// statuses are ignored.
func CompanyStatus(statuses []string) string {
	var seen, ok int
	for _, s := range statuses {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		seen++
		if s == StatusSuccess {
			ok++
		}
	}
	switch {
	case seen > 0 && ok == seen:
		return StatusSuccess
	case ok > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}
