package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCatalogue(t *testing.T) {
	tests := []struct {
		in   string
		want [CatalogueLevels]string
	}{
		{"政务 - 组织部 - 智慧党建", [CatalogueLevels]string{"政务", "组织部", "智慧党建", Missing, Missing}},
		{"a-b-c-d-e-f", [CatalogueLevels]string{"a", "b", "c", "d", "e"}},
		{"", [CatalogueLevels]string{Missing, Missing, Missing, Missing, Missing}},
		{"a--c", [CatalogueLevels]string{"a", Missing, "c", Missing, Missing}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitCatalogue(tt.in), tt.in)
	}
}

func TestHighlights(t *testing.T) {
	got := Highlights(
		[]string{" 快 ", "稳", "省", "易", "全", "多余"},
		[]string{"秒级", "可用", "成本", "上手", "覆盖", "丢弃"},
	)
	assert.Equal(t, "快：秒级", got[0])
	assert.Equal(t, "全：覆盖", got[4])

	got = Highlights([]string{"快", "稳"}, []string{"秒级"})
	assert.Equal(t, [MaxHighlights]string{"快：秒级", Missing, Missing, Missing, Missing}, got)
}

func TestResolve(t *testing.T) {
	d := AbilityDetail{Name: "能力A", Catalogue: SplitCatalogue(""), Highlights: Highlights(nil, nil)}
	assert.True(t, d.Empty())
	assert.Equal(t, FailedDetail("能力A"), d.Resolve())

	d.Code = "A-1"
	assert.Equal(t, StatusSuccess, d.Resolve().Status)

	d.Status = StatusFailed
	got := d.Resolve()
	assert.Equal(t, StatusFailed, got.Status)
	assert.Empty(t, got.Code)
}

func TestRow_MatchesHeader(t *testing.T) {
	d := AbilityDetail{Name: "能力A", Status: StatusSuccess, Service: "10000"}
	row := d.Row()
	assert.Len(t, row, len(AbilityHeader))
	assert.Equal(t, "能力A", row[0])
	assert.Equal(t, "10000", row[len(row)-1])
}

func TestCompanyStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"all succeeded", []string{StatusSuccess, StatusSuccess, ""}, StatusSuccess},
		{"some succeeded", []string{StatusSuccess, StatusFailed}, StatusPartial},
		{"none succeeded", []string{StatusFailed}, StatusFailed},
		{"no abilities", nil, StatusFailed},
		{"blank only", []string{"", " "}, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompanyStatus(tt.statuses))
		})
	}
}
