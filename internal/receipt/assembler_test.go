package receipt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhuantitest/ledgerparse/internal/classify"
	"github.com/zhuantitest/ledgerparse/internal/common"
	"github.com/zhuantitest/ledgerparse/internal/model"
	"github.com/zhuantitest/ledgerparse/internal/rule"
)

func newAssembler(rates RateSource) *Assembler {
	return New(classify.New(rule.New(), nil, nil, classify.Config{}), rates)
}

const sampleReceipt = `全家便利商店股份有限公司
統一編號: 23456789
2024/05/01 12:30
----------------
可口可樂 $25 x 2 $50
茶葉蛋 13
御飯糰 鮪魚 39
• 加熱
洗衣精 76
總計: $180
現金 200
找零 22`

func TestParseText(t *testing.T) {
	a := newAssembler(nil)

	receipt, err := a.ParseText(context.Background(), sampleReceipt)
	require.NoError(t, err)

	require.Len(t, receipt.Items, 4)

	cola := receipt.Items[0]
	assert.Equal(t, "可口可樂", cola.Name)
	assert.Equal(t, 2, cola.Quantity)
	assert.InDelta(t, 50, cola.Price, 0.001)
	assert.Equal(t, rule.CategoryDrink, cola.Category)

	rice := receipt.Items[2]
	assert.Contains(t, rice.Name, "御飯糰")
	assert.Equal(t, rule.CategoryFood, rice.Category)

	soap := receipt.Items[3]
	assert.Equal(t, "洗衣精", soap.Name)
	assert.Equal(t, "日用品", soap.Category)

	assert.Equal(t, "全家便利", receipt.StoreName)
	assert.Equal(t, "2024-05-01", receipt.Date)
	assert.InDelta(t, 180, receipt.TotalAmount, 0.001)
	assert.Equal(t, 12, receipt.TotalCount)
	assert.Equal(t, 8, receipt.FilteredCount)
}

func TestParseTextReconciliation(t *testing.T) {
	a := newAssembler(nil)

	t.Run("near match within tolerance", func(t *testing.T) {
		receipt, err := a.ParseText(context.Background(), sampleReceipt)
		require.NoError(t, err)

		rec := receipt.Reconciliation
		assert.InDelta(t, 178, rec.ItemSum, 0.001)
		assert.InDelta(t, 2, rec.Difference, 0.001)
		assert.True(t, rec.IsValid)
		assert.False(t, rec.MissingItems)
		assert.Empty(t, rec.Suggestions)
	})

	t.Run("item sum far below total flags missing items", func(t *testing.T) {
		receipt, err := a.ParseText(context.Background(), "珍珠奶茶 50\n總計: $200")
		require.NoError(t, err)

		rec := receipt.Reconciliation
		assert.False(t, rec.IsValid)
		assert.True(t, rec.MissingItems)
		assert.NotEmpty(t, rec.Suggestions)
	})

	t.Run("no printed total falls back to item sum", func(t *testing.T) {
		receipt, err := a.ParseText(context.Background(), "珍珠奶茶 50")
		require.NoError(t, err)

		assert.InDelta(t, 50, receipt.TotalAmount, 0.001)

		rec := receipt.Reconciliation
		assert.False(t, rec.IsValid)
		assert.False(t, rec.MissingItems)
		assert.NotEmpty(t, rec.Suggestions)
	})
}

func TestParseTextEmptyDocument(t *testing.T) {
	a := newAssembler(nil)

	_, err := a.ParseText(context.Background(), "   \n  ")
	assert.ErrorIs(t, err, common.ErrEmptyInput)
}

func TestParseTextRepairsGlyphNoise(t *testing.T) {
	a := newAssembler(nil)

	// The leading run is taken as a product code; the glyph-repaired
	// remainder becomes the name.
	receipt, err := a.ParseText(context.Background(), "C0CA C0LA 可樂 45\n總計: $45")
	require.NoError(t, err)

	require.Len(t, receipt.Items, 1)
	assert.Equal(t, "COLA 可樂", receipt.Items[0].Name)
}

type fixedRate struct {
	rate float64
	err  error
}

func (f fixedRate) Rate(ctx context.Context, from, to string) (float64, error) {
	return f.rate, f.err
}

func TestProcessDocument(t *testing.T) {
	a := newAssembler(nil)

	doc := model.Document{
		Vendor: "全聯福利中心",
		Date:   "2024-06-12",
		LineItems: []model.LineItem{
			{Description: "拿鐵咖啡", Quantity: 2, UnitPrice: 60, HasQuantity: true},
			{Description: "4710088412345", Amount: 99, HasAmount: true},
			{Description: "折價券", Amount: 20, HasAmount: true},
			{Description: "衛生紙", Amount: 89, HasAmount: true},
		},
		Total: 209,
	}

	receipt, err := a.ProcessDocument(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, receipt.Items, 2)

	latte := receipt.Items[0]
	assert.Equal(t, "拿鐵咖啡", latte.Name)
	assert.Equal(t, 2, latte.Quantity)
	assert.InDelta(t, 120, latte.Price, 0.001, "missing amount completed from unit price")
	assert.Equal(t, rule.CategoryDrink, latte.Category)

	tissue := receipt.Items[1]
	assert.Equal(t, "日用品", tissue.Category)

	assert.Equal(t, "全聯福利中心", receipt.StoreName)
	assert.Equal(t, 4, receipt.TotalCount)
	assert.Equal(t, 2, receipt.FilteredCount)
	assert.InDelta(t, 209, receipt.TotalAmount, 0.001)
	assert.True(t, receipt.Reconciliation.IsValid)
}

func TestProcessDocumentCurrencyConversion(t *testing.T) {
	a := newAssembler(fixedRate{rate: 30})

	doc := model.Document{
		Currency: "USD",
		LineItems: []model.LineItem{
			{Description: "礦泉水", Amount: 2, HasAmount: true},
		},
		Total: 2,
	}

	receipt, err := a.ProcessDocument(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, receipt.Items, 1)
	assert.InDelta(t, 60, receipt.Items[0].Price, 0.001)
	assert.InDelta(t, 60, receipt.TotalAmount, 0.001)
	assert.True(t, receipt.Reconciliation.IsValid)
}

func TestProcessDocumentRateFailure(t *testing.T) {
	a := newAssembler(fixedRate{err: errors.New("providers down")})

	doc := model.Document{
		Currency:  "USD",
		LineItems: []model.LineItem{{Description: "礦泉水", Amount: 2, HasAmount: true}},
	}

	_, err := a.ProcessDocument(context.Background(), doc)
	assert.Error(t, err)
}

func TestProcessDocumentEmpty(t *testing.T) {
	a := newAssembler(nil)

	_, err := a.ProcessDocument(context.Background(), model.Document{})
	assert.ErrorIs(t, err, common.ErrEmptyInput)
}
