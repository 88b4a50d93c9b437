package rule

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zhuantitest/ledgerparse/internal/model"
	"github.com/zhuantitest/ledgerparse/internal/textnorm"
)

var (
	pureNumericRe = regexp.MustCompile(`^\d+$`)
	pureSymbolRe  = regexp.MustCompile(`^[^\w\p{Han}]+$`)
	bopomofoRe    = regexp.MustCompile(`^[\x{3105}-\x{3129}\s]+$`)

	// Product-code shapes, raw ("AB12 35元") and squeezed ("ab1235tx").
	productCodeRawRe  = regexp.MustCompile(`(?i)^[a-z0-9]{2,6}\s+\d+(?:tx|元)?$`)
	productCodeNormRe = regexp.MustCompile(`(?i)^[a-z0-9]{2,6}\d+(?:tx|元)?$`)

	drinkRe = regexp.MustCompile(`(奶茶|拿鐵|咖啡|紅茶|綠茶|青茶|烏龍|果汁|多多|檸檬|粉粿|珍奶|珍珠|波霸|奶蓋|冰沙|汽水|可樂|雪碧)`)
)

// Gate length bounds, measured on the squeezed match key.
const (
	minGateRunes = 2
	maxGateRunes = 100
)

// Confidence levels assigned by the local stages. Heuristic trust
// levels, not probabilities.
const (
	confidenceKeywordHit  = 0.9
	confidenceProductCode = 0.6
	confidenceNoMatch     = 0.5
)

// Classifier is the synchronous, I/O-free classification stage.
type Classifier struct {
	keywords    map[string][]string
	order       []string
	drinkTokens []string
}

// New creates a Classifier over the default dictionaries, with keyword
// match keys precomputed.
func New() *Classifier {
	c := &Classifier{
		keywords:    make(map[string][]string, len(CategoryKeywords)),
		order:       categoryOrder,
		drinkTokens: make([]string, 0, len(DrinkTokens)),
	}
	for cat, words := range CategoryKeywords {
		keys := make([]string, 0, len(words))
		for _, w := range words {
			if k := textnorm.MatchKey(w); k != "" {
				keys = append(keys, k)
			}
		}
		c.keywords[cat] = keys
	}
	for _, t := range DrinkTokens {
		if k := textnorm.MatchKey(t); k != "" {
			c.drinkTokens = append(c.drinkTokens, k)
		}
	}
	return c
}

// Gate decides whether text can possibly name a purchasable item.
// It rejects boilerplate, pure numbers, pure symbols, bopomofo-only
// input (an IME mid-composition artifact) and out-of-bounds lengths.
// A product-code shape is accepted outright.
func (c *Classifier) Gate(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return false, "空字串"
	}
	if bopomofoRe.MatchString(text) {
		return false, "注音符號輸入中"
	}

	key := textnorm.MatchKey(text)
	for _, kw := range nonProductKeywords {
		if k := textnorm.MatchKey(kw); k != "" && strings.Contains(key, k) {
			return false, "黑名單關鍵字"
		}
	}
	if pureNumericRe.MatchString(key) {
		return false, "純數字"
	}
	if pureSymbolRe.MatchString(key) {
		return false, "僅特殊符號"
	}
	if n := utf8.RuneCountInString(key); n < minGateRunes {
		return false, "文字過短"
	} else if n > maxGateRunes {
		return false, "文字過長"
	}

	if productCodeRawRe.MatchString(text) {
		return true, "商品代碼格式"
	}
	return true, ""
}

// LooksLikeDrink reports whether an item name refers to a beverage.
func (c *Classifier) LooksLikeDrink(name string) bool {
	key := textnorm.MatchKey(name)
	for _, t := range c.drinkTokens {
		if strings.Contains(key, t) {
			return true
		}
	}
	return drinkRe.MatchString(key)
}

// LocalCategory looks the text up in the keyword dictionaries. A hit on
// the generic dining bucket is split into beverage vs food via the
// drink tokens. No hit yields the neutral category at low confidence so
// the orchestrator can escalate.
func (c *Classifier) LocalCategory(text string) (string, float64) {
	key := textnorm.MatchKey(text)

	if productCodeNormRe.MatchString(key) {
		return model.CategoryOther, confidenceProductCode
	}

	for _, cat := range c.order {
		for _, kw := range c.keywords[cat] {
			if strings.Contains(key, kw) {
				if cat == CategoryDining {
					if c.LooksLikeDrink(text) {
						return CategoryDrink, confidenceKeywordHit
					}
					return CategoryFood, confidenceKeywordHit
				}
				return cat, confidenceKeywordHit
			}
		}
	}

	if c.LooksLikeDrink(text) {
		return CategoryDrink, confidenceKeywordHit
	}
	return model.CategoryOther, confidenceNoMatch
}

// LocalProduct is the offline product/non-product fallback used when
// the remote product check is unavailable.
func (c *Classifier) LocalProduct(text string) (bool, float64) {
	key := textnorm.MatchKey(text)

	for _, kw := range productKeywords {
		if k := textnorm.MatchKey(kw); k != "" && strings.Contains(key, k) {
			return true, 0.7
		}
	}
	for _, kw := range nonProductKeywords {
		if k := textnorm.MatchKey(kw); k != "" && strings.Contains(key, k) {
			return false, 0.8
		}
	}
	if productCodeRawRe.MatchString(text) {
		return true, 0.9
	}
	return true, 0.4
}

// Classify runs the gate and the dictionary lookup in one synchronous
// pass. It never performs I/O and never fails.
func (c *Classifier) Classify(text string) model.ClassificationResult {
	ok, reason := c.Gate(text)
	if !ok {
		return model.ClassificationResult{
			IsProduct:  false,
			Category:   model.CategoryOther,
			Confidence: 1,
			Source:     model.SourceRule,
			Reason:     reason,
		}
	}

	category, confidence := c.LocalCategory(text)
	return model.ClassificationResult{
		IsProduct:  true,
		Category:   category,
		Confidence: confidence,
		Source:     model.SourceLocal,
		Reason:     reason,
	}
}
