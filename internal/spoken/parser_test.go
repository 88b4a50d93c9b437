package spoken

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zhuantitest/ledgerparse/internal/model"
	"github.com/zhuantitest/ledgerparse/internal/rule"
)

func newParser() *Parser {
	return NewParser(rule.New())
}

func TestParseTypicalUtterance(t *testing.T) {
	p := newParser()

	exp := p.Parse("麥當勞 120 元 晚餐")
	assert.True(t, exp.HasAmount)
	assert.InDelta(t, 120, exp.Amount, 0.001)
	assert.Equal(t, rule.CategoryFood, exp.Category)
	assert.Contains(t, exp.Note, "麥當勞")
	assert.GreaterOrEqual(t, exp.Confidence, 50)
}

func TestParseEmptyUtterance(t *testing.T) {
	p := newParser()

	exp := p.Parse("")
	assert.False(t, exp.HasAmount)
	assert.Equal(t, model.CategoryOther, exp.Category)
	assert.Zero(t, exp.Confidence)
	assert.NotEmpty(t, exp.Suggestions)
}

func TestParseAmountPatterns(t *testing.T) {
	p := newParser()

	tests := []struct {
		text   string
		amount float64
	}{
		{"午餐 120 元", 120},
		{"早餐花了55", 55},
		{"停車 $40", 40},
		{"珍珠奶茶 65", 65},
		{"計程車 兩百五十 元", 250},
		{"房租 一萬二 元", 12000},
		{"房租 1.5萬", 15000},
		{"學費 2千", 2000},
		{"電腦 3w", 30000},
		{"鍵盤 1.2k", 1200},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			exp := p.Parse(tt.text)
			assert.True(t, exp.HasAmount)
			assert.InDelta(t, tt.amount, exp.Amount, 0.001)
		})
	}
}

func TestParseAmountBounds(t *testing.T) {
	p := newParser()

	exp := p.Parse("買房 8000000 元")
	assert.False(t, exp.HasAmount, "amounts past the bound are transcription noise")
	assert.NotEmpty(t, exp.Suggestions)
}

func TestParseCommandPrefixStripped(t *testing.T) {
	p := newParser()

	exp := p.Parse("幫我記 高鐵車票 1490 元")
	assert.True(t, exp.HasAmount)
	assert.InDelta(t, 1490, exp.Amount, 0.001)
	assert.Equal(t, "交通", exp.Category)
	assert.NotContains(t, exp.Note, "幫我記")
}

func TestParseAccount(t *testing.T) {
	p := newParser()

	exp := p.Parse("全聯 刷卡 350 元")
	assert.Equal(t, "信用卡", exp.Account)
	assert.NotContains(t, exp.Note, "刷卡")

	exp = p.Parse("悠遊卡 加值 500 元")
	assert.Equal(t, "悠遊卡", exp.Account)
}

func TestParseColloquialUnit(t *testing.T) {
	p := newParser()

	exp := p.Parse("雞排 70 塊")
	assert.True(t, exp.HasAmount)
	assert.InDelta(t, 70, exp.Amount, 0.001)
	assert.Equal(t, rule.CategoryFood, exp.Category)
}

func TestParseNoAmount(t *testing.T) {
	p := newParser()

	exp := p.Parse("今天去看電影")
	assert.False(t, exp.HasAmount)
	assert.Equal(t, "娛樂", exp.Category)
	assert.NotEmpty(t, exp.Suggestions)
}

func TestChineseToInt(t *testing.T) {
	tests := []struct {
		run  string
		want int
	}{
		{"三百二十五", 325},
		{"兩千五百", 2500},
		{"兩千五", 2500},
		{"一萬二", 12000},
		{"一萬零二", 10002},
		{"三百五", 350},
		{"五十", 50},
		{"十五", 15},
	}
	for _, tt := range tests {
		n, ok := chineseToInt(tt.run)
		assert.True(t, ok, tt.run)
		assert.Equal(t, tt.want, n, tt.run)
	}
}
