// Package segment splits a raw OCR document into candidate item lines,
// discarding boilerplate the extractor should never see.
package segment

import (
	"regexp"
	"strings"

	"github.com/zhuantitest/ledgerparse/internal/textnorm"
)

// Hard blacklist: high-precision patterns for lines that are never items
// (invoice numbers, phone numbers, transaction and tax IDs).
var hardBlacklist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^no[:：]?\s*\w+`),
	regexp.MustCompile(`(?i)^tel[:：]?\s*\d+`),
	regexp.MustCompile(`交易單號[:：]?\s*\w+`),
	regexp.MustCompile(`電子發票號碼[:：]?\s*\w+`),
	regexp.MustCompile(`(統一編號|統編)\s*[:：]?\s*\d+`),
	regexp.MustCompile(`^\d{2,4}[/.-]\d{1,2}[/.-]\d{1,2}(?:\s+\d{1,2}:\d{2}(?::\d{2})?)?$`),
}

// Soft blacklist: curated boilerplate vocabulary. A hit drops the line
// unless it also looks like a product-code line.
var softBlacklist = []string{
	"公司", "有限公司", "股份有限公司", "企業", "商行", "商店",
	"發票", "序號", "收據", "憑證",
	"日期", "時間", "年", "月", "日", "時", "分",
	"總計", "合計", "小計", "稅額", "稅金", "折扣", "優惠",
	"信用卡", "現金", "收現", "找零", "刷卡", "電子支付",
	"地址", "電話", "傳真", "網址", "email", "信箱",
	"備註", "說明", "注意事項", "謝謝", "歡迎", "營業時間",
	"中華民國", "收銀機", "收執聯",
}

var (
	headerRe = regexp.MustCompile(`(?i)^名\s*稱|^品\s*名|^數\s*量|^金\s*額|^合計|^小計|^總額|^銷售|^Amount|^Qty|^Total`)
	rulerRe  = regexp.MustCompile(`^[-–—=.\s]+$`)

	barcodeRe = regexp.MustCompile(`^[0-9]{8,14}$`)

	// Product-code shape overrides a soft-blacklist hit: 2-6 alnum code
	// followed by a number, e.g. "AB12 35TX".
	productCodeRe = regexp.MustCompile(`(?i)^[a-z0-9]{2,6}\s+\d+(?:tx|元)?$`)

	// A lone trailing price fragment, e.g. "$85", "48 元", "129TX".
	priceFragmentRe = regexp.MustCompile(`(?i)^\$?\s*\d{1,6}(?:\.\d{1,2})?\s*(?:t?x|元)?$`)

	noteLineRe = regexp.MustCompile(`^[•\x{2022}\-*．.・]`)
	modifierRe = regexp.MustCompile(`(去冰|微冰|少冰|去糖|減糖|無糖|半糖|加(珍珠|料)|去蔥|少鹽)`)
	bulletPfx  = regexp.MustCompile(`^[•\x{2022}\-*．.・]\s*`)
	anyDigitRe = regexp.MustCompile(`\d`)
)

// Result carries the surviving candidate lines along with filtering
// statistics for the whole document.
type Result struct {
	// All holds every normalized non-empty line, boilerplate included.
	// Total and store/date extraction work over this set.
	All []string
	// Candidates holds the lines worth feeding to the amount extractor.
	Candidates    []string
	TotalCount    int
	FilteredCount int
}

// Segmenter applies the blacklist layers and stitching rules.
type Segmenter struct{}

// New creates a Segmenter.
func New() *Segmenter {
	return &Segmenter{}
}

// Preprocess splits a document into normalized, non-empty lines.
func Preprocess(document string) []string {
	raw := strings.Split(document, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		n := textnorm.Normalize(l)
		if n != "" {
			lines = append(lines, n)
		}
	}
	return lines
}

// Segment runs the full filter over a raw document.
func (s *Segmenter) Segment(document string) Result {
	all := Preprocess(document)

	candidates := make([]string, 0, len(all))
	for _, line := range all {
		switch {
		case isHeader(line), isHardBlacklisted(line), isBarcode(line):
			continue
		case isNoteLine(line) && len(candidates) > 0:
			// Modifier lines describe the previous item, not a new one.
			prev := len(candidates) - 1
			note := bulletPfx.ReplaceAllString(line, "")
			candidates[prev] = textnorm.CleanName(candidates[prev]) + "（" + note + "）"
			continue
		case isPriceFragment(line) && len(candidates) > 0 && !anyDigitRe.MatchString(candidates[len(candidates)-1]):
			// A price printed on its own line belongs to the item above it.
			candidates[len(candidates)-1] += " " + line
			continue
		case isSoftBlacklisted(line) && !productCodeRe.MatchString(line):
			continue
		}
		candidates = append(candidates, line)
	}

	return Result{
		All:           all,
		Candidates:    candidates,
		TotalCount:    len(all),
		FilteredCount: len(all) - len(candidates),
	}
}

func isHeader(line string) bool {
	return headerRe.MatchString(line) || rulerRe.MatchString(line)
}

func isHardBlacklisted(line string) bool {
	for _, re := range hardBlacklist {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func isBarcode(line string) bool {
	return barcodeRe.MatchString(strings.ReplaceAll(line, " ", ""))
}

func isNoteLine(line string) bool {
	return noteLineRe.MatchString(line) || modifierRe.MatchString(line)
}

func isPriceFragment(line string) bool {
	return priceFragmentRe.MatchString(line)
}

func isSoftBlacklisted(line string) bool {
	low := strings.ToLower(line)
	for _, kw := range softBlacklist {
		if strings.Contains(low, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
