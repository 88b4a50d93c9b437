package extract

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTotalAmount(t *testing.T) {
	e := New()

	t.Run("labeled total wins", func(t *testing.T) {
		lines := []string{"可口可樂 x 2 $50", "總計: $180", "現金 200"}
		total, ok := e.TotalAmount(lines)
		assert.True(t, ok)
		assert.Equal(t, 180.0, total)
	})

	t.Run("lone amount fallback", func(t *testing.T) {
		lines := []string{"招牌奶茶 $55", "$78"}
		total, ok := e.TotalAmount(lines)
		assert.True(t, ok)
		assert.Equal(t, 78.0, total)
	})

	t.Run("comma grouped total", func(t *testing.T) {
		lines := []string{"高山烏龍 1,180", "總計: $1,250"}
		total, ok := e.TotalAmount(lines)
		assert.True(t, ok)
		assert.Equal(t, 1250.0, total)
	})

	t.Run("unreasonable totals skipped", func(t *testing.T) {
		lines := []string{"總計: $99999999"}
		_, ok := e.TotalAmount(lines)
		assert.False(t, ok)
	})

	t.Run("no total", func(t *testing.T) {
		_, ok := e.TotalAmount([]string{"可口可樂 x 2 $50"})
		assert.False(t, ok)
	})
}

func TestStoreName(t *testing.T) {
	name, ok := StoreName([]string{"全家便利商店股份有限公司", "可口可樂 $30"})
	assert.True(t, ok)
	assert.Equal(t, "全家便利", name)

	_, ok = StoreName([]string{"可口可樂 $30"})
	assert.False(t, ok)
}

func TestDate(t *testing.T) {
	t.Run("full date", func(t *testing.T) {
		date, ok := Date([]string{"2024年5月1日"})
		assert.True(t, ok)
		assert.Equal(t, "2024-05-01", date)
	})

	t.Run("slash date", func(t *testing.T) {
		date, ok := Date([]string{"2024/05/01 12:30"})
		assert.True(t, ok)
		assert.Equal(t, "2024-05-01", date)
	})

	t.Run("month day completed with current year", func(t *testing.T) {
		date, ok := Date([]string{"5月1日"})
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("%d-05-01", time.Now().Year()), date)
	})

	t.Run("no date", func(t *testing.T) {
		_, ok := Date([]string{"可口可樂 $30"})
		assert.False(t, ok)
	})
}

func TestParseAmountToken(t *testing.T) {
	tests := []struct {
		tok  string
		want float64
		ok   bool
	}{
		{"1,234.50", 1234.50, true},
		{"1.234,50", 1234.50, true},
		{"1,234", 1234, true},
		{"1.234", 1234, true},
		{"12,5", 12.5, true},
		{"95", 95, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			got, ok := ParseAmountToken(tt.tok)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}
