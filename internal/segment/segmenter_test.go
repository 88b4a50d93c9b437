package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentFiltersBoilerplate(t *testing.T) {
	doc := strings.Join([]string{
		"全家便利商店股份有限公司",
		"統一編號: 12345678",
		"NO: 92665144",
		"TEL: 02-26293842",
		"電子發票號碼: RJ12345678",
		"交易單號: T20710550123",
		"2024/05/01 12:30",
		"----------------",
		"品名 數量 金額",
		"可口可樂 x 2 $50",
		"御飯糰 $28",
		"4710088412345",
		"總計: $78",
		"信用卡 78",
		"謝謝光臨 歡迎再度光臨",
	}, "\n")

	s := New()
	res := s.Segment(doc)

	assert.Equal(t, []string{"可口可樂 x 2 $50", "御飯糰 $28"}, res.Candidates)
	assert.Equal(t, res.TotalCount-len(res.Candidates), res.FilteredCount)
	// Totals stay visible to the total extractor via All.
	assert.Contains(t, res.All, "總計: $78")
}

func TestSegmentProductCodeOverridesSoftBlacklist(t *testing.T) {
	// "AB12 35元" contains 元 only as a unit; the product-code shape wins.
	s := New()
	res := s.Segment("AB12 35元")
	assert.Equal(t, []string{"AB12 35元"}, res.Candidates)
}

func TestSegmentStitchesTrailingPrice(t *testing.T) {
	doc := "招牌奶茶\n$55\n雞排\n70 元"

	s := New()
	res := s.Segment(doc)

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "招牌奶茶 $55", res.Candidates[0])
	assert.Equal(t, "雞排 70 元", res.Candidates[1])
}

func TestSegmentAppendsModifierLines(t *testing.T) {
	doc := "珍珠奶茶 $60\n- 去冰"

	s := New()
	res := s.Segment(doc)

	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "珍珠奶茶 $60（去冰）", res.Candidates[0])
}

func TestSegmentDropsBarcodes(t *testing.T) {
	s := New()
	res := s.Segment("47100884123\n雞腿便當 $95")
	assert.Equal(t, []string{"雞腿便當 $95"}, res.Candidates)
}

func TestSegmentEmptyDocument(t *testing.T) {
	s := New()
	res := s.Segment("\n\n  \n")
	assert.Empty(t, res.Candidates)
	assert.Zero(t, res.TotalCount)
	assert.Zero(t, res.FilteredCount)
}
