package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "fullwidth ascii folded",
			input: "ＮＴ＄１２０",
			want:  "NT$120",
		},
		{
			name:  "ideographic space collapsed",
			input: "咖啡　　拿鐵",
			want:  "咖啡 拿鐵",
		},
		{
			name:  "zero width characters stripped",
			input: "可口​可樂",
			want:  "可口可樂",
		},
		{
			name:  "ideographic punctuation mapped",
			input: "總計，１８０元．",
			want:  "總計,180元.",
		},
		{
			name:  "whitespace runs collapsed and trimmed",
			input: "  紅茶   大杯  ",
			want:  "紅茶 大杯",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"ＮＴ＄１２０　可口可樂",
		"咖啡 拿鐵 x 2 $120",
		"統一編號: 12345678",
		"微糖 去冰 大杯 紅茶",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestMatchKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "drink modifiers removed",
			input: "珍珠奶茶 微糖 去冰 大杯",
			want:  "珍珠奶茶",
		},
		{
			name:  "latin lowered and joined",
			input: "Uber Eats",
			want:  "ubereat", // trailing s is a size token and gets stripped
		},
		{
			name:  "brackets and punctuation removed",
			input: "拿鐵(熱)，中杯。",
			want:  "拿鐵",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchKey(tt.input))
		})
	}
}

func TestRepairName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "digit glyphs repaired inside alnum runs",
			input: "C0KE ZER0",
			want:  "COKE ZERO",
		},
		{
			name:  "short runs untouched",
			input: "A1 牛排",
			want:  "A1 牛排",
		},
		{
			name:  "star noise removed",
			input: "會員價**** 雞排",
			want:  "會員價 雞排",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairName(tt.input))
		})
	}
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "可口可樂", CleanName("可口可樂 x 2"))
	assert.Equal(t, "紅茶 拿鐵", CleanName("紅茶・拿鐵：，"))
}
