// Package receipt assembles the full parse pipeline: segmentation,
// amount extraction and classification, plus the total reconciliation
// that estimates how complete the parse is.
package receipt

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/zhuantitest/ledgerparse/internal/common"
	"github.com/zhuantitest/ledgerparse/internal/extract"
	"github.com/zhuantitest/ledgerparse/internal/model"
	"github.com/zhuantitest/ledgerparse/internal/segment"
	"github.com/zhuantitest/ledgerparse/internal/textnorm"
)

// Reconciliation bounds. A parse whose item sum lands within
// ReconcileTolerance of the printed total is considered complete; an
// item sum under MissingItemsRatio of the total flags dropped lines.
const (
	ReconcileTolerance = 2.0
	MissingItemsRatio  = 0.8
)

var (
	barcodeDescRe = regexp.MustCompile(`^\d{8,14}$`)
	rebateRe      = regexp.MustCompile(`(折讓|折價|折扣|優惠券|抵用券|現金券|回饋)`)
)

// Classifier is the classification stage the assembler feeds item
// names through. *classify.Orchestrator satisfies this.
type Classifier interface {
	ClassifyBatch(ctx context.Context, texts []string) []model.ClassificationResult
	HybridClassify(ctx context.Context, text string) model.ClassificationResult
}

// RateSource converts between currencies for document OCR results
// priced in foreign currency. May be nil; amounts then pass through.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// Assembler runs the receipt pipeline end to end.
type Assembler struct {
	segmenter  *segment.Segmenter
	extractor  *extract.Extractor
	classifier Classifier
	rates      RateSource
}

// New creates an Assembler. classifier must not be nil; rates may be.
func New(classifier Classifier, rates RateSource) *Assembler {
	return &Assembler{
		segmenter:  segment.New(),
		extractor:  extract.New(),
		classifier: classifier,
		rates:      rates,
	}
}

// ParseText parses a raw OCR text dump into a receipt. Lines that fail
// segmentation, extraction or the product gate are counted, not
// surfaced. The only error condition is an empty document.
func (a *Assembler) ParseText(ctx context.Context, document string) (model.ParsedReceipt, error) {
	if strings.TrimSpace(document) == "" {
		return model.ParsedReceipt{}, common.ErrEmptyInput
	}

	seg := a.segmenter.Segment(document)

	extracted := make([]extract.Item, 0, len(seg.Candidates))
	for _, line := range seg.Candidates {
		item, ok := a.extractor.Extract(line)
		if !ok {
			continue
		}
		item.Name = textnorm.RepairName(item.Name)
		extracted = append(extracted, item)
	}

	names := make([]string, len(extracted))
	for i, item := range extracted {
		names[i] = item.Name
	}
	classifications := a.classifier.ClassifyBatch(ctx, names)

	items := make([]model.ParsedLineItem, 0, len(extracted))
	for i, item := range extracted {
		res := classifications[i]
		if !res.IsProduct {
			continue
		}
		items = append(items, model.ParsedLineItem{
			Name:       item.Name,
			Category:   res.Category,
			Source:     res.Source,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Confidence: res.Confidence,
		})
	}

	receipt := model.ParsedReceipt{
		Items:         items,
		TotalCount:    seg.TotalCount,
		FilteredCount: seg.TotalCount - len(items),
	}
	if name, ok := extract.StoreName(seg.All); ok {
		receipt.StoreName = name
	}
	if date, ok := extract.Date(seg.All); ok {
		receipt.Date = date
	}

	total, found := a.extractor.TotalAmount(seg.All)
	receipt.Reconciliation = reconcile(items, total, found)
	receipt.TotalAmount = total
	if !found {
		// No printed total; the item sum is the best available figure.
		receipt.TotalAmount = receipt.Reconciliation.ItemSum
	}

	return receipt, nil
}

// ProcessDocument turns a structured document-OCR result into a
// receipt: junk lines are dropped, partial quantity and amount fields
// completed, foreign amounts converted, and every line classified.
func (a *Assembler) ProcessDocument(ctx context.Context, doc model.Document) (model.ParsedReceipt, error) {
	if len(doc.LineItems) == 0 {
		return model.ParsedReceipt{}, common.ErrEmptyInput
	}

	rate, err := a.conversionRate(ctx, doc.Currency)
	if err != nil {
		return model.ParsedReceipt{}, err
	}

	items := make([]model.ParsedLineItem, 0, len(doc.LineItems))
	for _, line := range doc.LineItems {
		desc := textnorm.RepairName(textnorm.CleanName(line.Description))
		if desc == "" || barcodeDescRe.MatchString(strings.ReplaceAll(desc, " ", "")) {
			continue
		}
		if rebateRe.MatchString(desc) {
			// Rebates and coupons adjust the total, they are not items.
			continue
		}

		qty, amount := finalizeAmounts(line)
		if amount <= 0 {
			continue
		}

		res := a.classifier.HybridClassify(ctx, desc)
		if !res.IsProduct {
			continue
		}

		items = append(items, model.ParsedLineItem{
			Name:       desc,
			Category:   res.Category,
			Source:     res.Source,
			Quantity:   qty,
			Price:      amount * rate,
			Confidence: res.Confidence,
		})
	}

	total := doc.Total * rate
	rec := reconcile(items, total, doc.Total > 0)
	if doc.Total <= 0 {
		total = rec.ItemSum
	}
	receipt := model.ParsedReceipt{
		StoreName:      doc.Vendor,
		Date:           doc.Date,
		Items:          items,
		TotalAmount:    total,
		TotalCount:     len(doc.LineItems),
		FilteredCount:  len(doc.LineItems) - len(items),
		Reconciliation: rec,
	}
	return receipt, nil
}

// conversionRate resolves the factor that maps document amounts to TWD.
func (a *Assembler) conversionRate(ctx context.Context, currency string) (float64, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == "TWD" || a.rates == nil {
		return 1, nil
	}
	rate, err := a.rates.Rate(ctx, currency, "TWD")
	if err != nil {
		return 0, err
	}
	return rate, nil
}

// finalizeAmounts completes partially recognized quantity and amount
// fields. OCR providers routinely return a unit price without the line
// amount, or an amount with no quantity.
func finalizeAmounts(line model.LineItem) (int, float64) {
	qty := line.Quantity
	if !line.HasQuantity || qty <= 0 {
		qty = 1
	}

	amount := line.Amount
	if !line.HasAmount || amount <= 0 {
		if line.UnitPrice > 0 {
			amount = line.UnitPrice * qty
		}
	}
	return int(qty), amount
}

// reconcile compares the item sum against the printed total.
func reconcile(items []model.ParsedLineItem, total float64, totalFound bool) model.Reconciliation {
	var sum float64
	for _, item := range items {
		sum += item.Subtotal()
	}

	rec := model.Reconciliation{ItemSum: sum}
	if !totalFound || total <= 0 {
		rec.Suggestions = append(rec.Suggestions, "未找到總額，無法核對品項合計")
		return rec
	}

	rec.Difference = total - sum
	rec.IsValid = math.Abs(rec.Difference) <= ReconcileTolerance
	rec.MissingItems = sum < total*MissingItemsRatio

	if !rec.IsValid {
		rec.Suggestions = append(rec.Suggestions, "品項合計與總額不符，請核對金額")
	}
	if rec.MissingItems {
		rec.Suggestions = append(rec.Suggestions, "部分品項可能未被擷取")
	}
	return rec
}
