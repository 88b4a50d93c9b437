// Package spoken parses spoken bookkeeping utterances such as
// "麥當勞 120 元 晚餐" into an amount, note, account and category.
// Speech transcripts are short and messy, so every field is best
// effort and a quality score tells the caller how much to trust the
// parse.
package spoken

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/zhuantitest/ledgerparse/internal/model"
	"github.com/zhuantitest/ledgerparse/internal/rule"
	"github.com/zhuantitest/ledgerparse/internal/textnorm"
)

// MaxAmount bounds spoken amounts. Speech recognition occasionally
// glues digits together; anything past this is a transcription error.
const MaxAmount = 999999

// Confidence weights. The sum is capped at 100.
const (
	weightAmount      = 30
	weightCategory    = 20
	weightNote        = 10
	weightAccount     = 10
	weightLabeledUnit = 10
	weightTimeWord    = 10
	weightCleanParse  = 10
)

var (
	// Command prefixes from voice assistants, e.g. "幫我記 午餐 120".
	commandPrefixRe = regexp.MustCompile(`^(?:請?幫我記(?:帳|一下|錄)?|記帳|記一下|新增(?:一筆)?|我(?:要|想)記)\s*`)

	// Arabic-digit multiplier forms, e.g. "3萬", "1.5千", "2百".
	// Transcripts also use "1.2k" and the local shorthand "3w" for 萬.
	wanRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:萬|w)`)
	qianRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:千|k)`)
	baiRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*百`)

	chineseNumRunRe = regexp.MustCompile(`[零一二兩三四五六七八九十百千萬]{2,}`)

	// Amount patterns in priority order; a unit or verb beats a bare
	// number.
	labeledAmountRe = regexp.MustCompile(`(\d+(?:\.\d{1,2})?)\s*(?:元|圓)`)
	verbAmountRe    = regexp.MustCompile(`花(?:了|費)?\s*(\d+(?:\.\d{1,2})?)`)
	dollarAmountRe  = regexp.MustCompile(`\$\s*(\d+(?:\.\d{1,2})?)`)
	bareAmountRe    = regexp.MustCompile(`(\d+(?:\.\d{1,2})?)`)

	timeWordRe = regexp.MustCompile(`(今天|昨天|前天|早上|中午|下午|晚上|早餐|午餐|晚餐|宵夜|下午茶)`)
	anyDigitRe = regexp.MustCompile(`\d`)
)

var chineseDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '兩': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var chineseUnits = map[rune]int{
	'十': 10, '百': 100, '千': 1000, '萬': 10000,
}

// accountKeywords maps spoken payment phrases to account names.
// Ordered so longer phrases win over their substrings.
var accountKeywords = []struct {
	phrase  string
	account string
}{
	{"信用卡", "信用卡"},
	{"刷卡", "信用卡"},
	{"悠遊卡", "悠遊卡"},
	{"一卡通", "一卡通"},
	{"line pay", "LINE Pay"},
	{"linepay", "LINE Pay"},
	{"街口", "街口支付"},
	{"轉帳", "銀行帳戶"},
	{"現金", "現金"},
}

// Parser turns one utterance into a SpokenExpense.
type Parser struct {
	rules *rule.Classifier
}

// NewParser creates a Parser over the given rule classifier.
func NewParser(rules *rule.Classifier) *Parser {
	return &Parser{rules: rules}
}

// Parse never fails; an unusable utterance comes back with HasAmount
// false, zero confidence contributions and concrete suggestions.
func (p *Parser) Parse(text string) model.SpokenExpense {
	out := model.SpokenExpense{Category: model.CategoryOther}

	normalized := textnorm.Normalize(text)
	normalized = commandPrefixRe.ReplaceAllString(normalized, "")
	normalized = strings.ReplaceAll(normalized, "塊", "元")
	normalized = expandNumerals(normalized)

	if normalized == "" {
		out.Suggestions = append(out.Suggestions,
			"未聽到內容，請再說一次，例如「午餐 120 元」")
		return out
	}

	remainder := normalized

	amount, matched, labeled := findAmount(normalized)
	if matched != "" && amount > 0 && amount <= MaxAmount {
		out.Amount = amount
		out.HasAmount = true
		remainder = strings.Replace(remainder, matched, " ", 1)
	}

	for _, kw := range accountKeywords {
		if idx := strings.Index(strings.ToLower(remainder), kw.phrase); idx >= 0 {
			out.Account = kw.account
			remainder = remainder[:idx] + " " + remainder[idx+len(kw.phrase):]
			break
		}
	}

	out.Note = textnorm.CleanName(remainder)

	if category, conf := p.rules.LocalCategory(normalized); conf > 0.5 {
		out.Category = category
	}

	out.Confidence = score(out, normalized, labeled)
	out.Suggestions = append(out.Suggestions, suggest(out)...)
	return out
}

// findAmount tries the amount patterns in priority order and reports
// the matched substring so it can be cut out of the note.
func findAmount(text string) (amount float64, matched string, labeled bool) {
	if m := labeledAmountRe.FindStringSubmatch(text); m != nil {
		return parseFloat(m[1]), m[0], true
	}
	if m := verbAmountRe.FindStringSubmatch(text); m != nil {
		return parseFloat(m[1]), m[0], true
	}
	if m := dollarAmountRe.FindStringSubmatch(text); m != nil {
		return parseFloat(m[1]), m[0], true
	}
	if m := bareAmountRe.FindStringSubmatch(text); m != nil {
		return parseFloat(m[1]), m[0], false
	}
	return 0, "", false
}

// expandNumerals rewrites Chinese numerals and multiplier suffixes into
// plain digits: "三百二十五" becomes "325", "1.5千" becomes "1500".
func expandNumerals(s string) string {
	s = chineseNumRunRe.ReplaceAllStringFunc(s, func(run string) string {
		if n, ok := chineseToInt(run); ok {
			return strconv.Itoa(n)
		}
		return run
	})
	s = wanRe.ReplaceAllStringFunc(s, multiplyBy(10000))
	s = qianRe.ReplaceAllStringFunc(s, multiplyBy(1000))
	s = baiRe.ReplaceAllStringFunc(s, multiplyBy(100))
	return s
}

func multiplyBy(factor float64) func(string) string {
	re := bareAmountRe
	return func(m string) string {
		num := re.FindString(m)
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return m
		}
		return strconv.FormatFloat(n*factor, 'f', -1, 64)
	}
}

// chineseToInt evaluates a numeral run like 三百二十五 or 兩千五百.
// A trailing bare digit takes the colloquial reading: 一萬二 is 12000
// and 兩千五 is 2500, while 一萬零二 stays literal at 10002.
func chineseToInt(run string) (int, bool) {
	total, section, digit, lastUnit := 0, 0, 0, 0
	for _, r := range run {
		if r == '零' {
			// 零 pins the following digit to the ones place.
			digit = 0
			lastUnit = 0
			continue
		}
		if d, ok := chineseDigits[r]; ok {
			digit = d
			continue
		}
		unit, ok := chineseUnits[r]
		if !ok {
			return 0, false
		}
		lastUnit = unit
		if unit == 10000 {
			total = (total + section + digit) * unit
			section, digit = 0, 0
			continue
		}
		if digit == 0 {
			digit = 1
		}
		section += digit * unit
		digit = 0
	}
	if digit > 0 && lastUnit >= 10 {
		digit *= lastUnit / 10
	}
	n := total + section + digit
	if n <= 0 {
		return 0, false
	}
	return n, true
}

func score(out model.SpokenExpense, normalized string, labeled bool) int {
	c := 0
	if out.HasAmount {
		c += weightAmount
		if labeled {
			c += weightLabeledUnit
		}
	}
	if out.Category != model.CategoryOther {
		c += weightCategory
	}
	if out.Note != "" {
		c += weightNote
	}
	if out.Account != "" {
		c += weightAccount
	}
	if timeWordRe.MatchString(normalized) {
		c += weightTimeWord
	}
	if out.HasAmount && !anyDigitRe.MatchString(out.Note) {
		// No stray digits left over means the amount was unambiguous.
		c += weightCleanParse
	}
	if c > 100 {
		c = 100
	}
	return c
}

func suggest(out model.SpokenExpense) []string {
	var s []string
	if !out.HasAmount {
		s = append(s, "未偵測到金額，請包含金額，例如「午餐 120 元」")
	}
	if out.Category == model.CategoryOther {
		s = append(s, "無法判斷分類，可補充店家或品項名稱")
	}
	if out.Note == "" {
		s = append(s, "建議補充消費說明")
	}
	return s
}

func parseFloat(s string) float64 {
	n, _ := strconv.ParseFloat(s, 64)
	return n
}
