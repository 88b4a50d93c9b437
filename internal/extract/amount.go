// Package extract pulls quantities, unit prices and subtotals out of
// candidate receipt lines using an ordered cascade of pattern matchers.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zhuantitest/ledgerparse/internal/textnorm"
)

// DefaultMoneyMax bounds what counts as a plausible line amount.
// Anything at or above it is treated as an ID, not money.
const DefaultMoneyMax = 20000

// Item is one extracted line item. Price carries the line subtotal.
type Item struct {
	Name     string
	Quantity int
	Price    float64
}

// numPat matches a printed amount, with or without comma grouping:
// "48", "96.50", "1,250". The grouped alternative comes first so the
// whole token is consumed.
const numPat = `\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?`

// Pattern families, in strict priority order. Swapping the order changes
// which price wins on ambiguous lines, so new patterns go at the end
// unless they are strictly more specific than everything below them.
var (
	// 名稱 $48 x 2 $96: unit price times quantity, optional subtotal.
	reMulSum = regexp.MustCompile(`(.+?)\s*\$?\s*(` + numPat + `)\s*[xX×＊]\s*(\d+)\s*(?:\$?\s*(` + numPat + `))?`)
	// 名稱 x 2 $50: quantity then subtotal.
	reNameQtyPrice = regexp.MustCompile(`^(.+?)\s*[xX×]\s*(\d+)\s*\$?\s*(` + numPat + `)(?:元|TX)?$`)
	// AB12 名稱 $50: leading product code.
	reCodeNamePrice = regexp.MustCompile(`^[A-Z0-9]{2,6}\s+(.+?)\s*\$?\s*(` + numPat + `)(?:元|TX)?$`)
	// 2 名稱 $50: leading quantity.
	reQtyNamePrice = regexp.MustCompile(`^(\d+)\s*(.+?)\s*\$?\s*(` + numPat + `)(?:元|TX)?$`)
	// 名稱 $50: price only, quantity defaults to one.
	reNamePrice = regexp.MustCompile(`^(.+?)\s*\$?\s*(` + numPat + `)(?:元|TX)?$`)

	// Last-resort pieces: a leading non-numeric run as the name and
	// short numbers only, so 16-digit transaction IDs never become prices.
	reLeadingName   = regexp.MustCompile(`^([^\d$]+)`)
	reNumberRun     = regexp.MustCompile(numPat)
	reNonNumeric    = regexp.MustCompile(`[^\d]`)
	reNonAmountChar = regexp.MustCompile(`[^\d.,]`)
)

// Extractor runs the matcher cascade with a configurable money bound.
type Extractor struct {
	moneyMax float64
}

// New creates an Extractor with the default money bound.
func New() *Extractor {
	return NewWithMoneyMax(DefaultMoneyMax)
}

// NewWithMoneyMax creates an Extractor with a custom upper bound.
func NewWithMoneyMax(moneyMax float64) *Extractor {
	if moneyMax <= 0 {
		moneyMax = DefaultMoneyMax
	}
	return &Extractor{moneyMax: moneyMax}
}

// ReasonableMoney reports whether n is a plausible amount of money.
func (e *Extractor) ReasonableMoney(n float64) bool {
	return n > 0 && n < e.moneyMax
}

// Extract tries each pattern family in priority order and returns the
// first candidate that passes validation. ok is false when no pattern
// matches; callers treat such lines as non-items, not as errors.
func (e *Extractor) Extract(line string) (Item, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Item{}, false
	}

	matchers := []func(string) (Item, bool){
		e.matchMultiplierSum,
		e.matchNameQtyPrice,
		e.matchCodeNamePrice,
		e.matchQtyNamePrice,
		e.matchNamePrice,
		e.matchHeuristic,
	}

	for _, match := range matchers {
		if item, ok := match(line); ok {
			return item, true
		}
	}
	return Item{}, false
}

func (e *Extractor) matchMultiplierSum(line string) (Item, bool) {
	m := reMulSum.FindStringSubmatch(line)
	if m == nil {
		return Item{}, false
	}
	name := cleanItemName(m[1])
	unit := toFloat(m[2])
	qty := toInt(m[3])
	sum := unit * float64(qty)
	if m[4] != "" {
		sum = toFloat(m[4])
	}
	if validName(name) && qty > 0 && e.ReasonableMoney(unit) && e.ReasonableMoney(sum) {
		return Item{Name: name, Quantity: qty, Price: sum}, true
	}
	return Item{}, false
}

func (e *Extractor) matchNameQtyPrice(line string) (Item, bool) {
	m := reNameQtyPrice.FindStringSubmatch(line)
	if m == nil {
		return Item{}, false
	}
	name := cleanItemName(m[1])
	qty := toInt(m[2])
	price := toFloat(m[3])
	if validName(name) && qty > 0 && e.ReasonableMoney(price) {
		return Item{Name: name, Quantity: qty, Price: price}, true
	}
	return Item{}, false
}

func (e *Extractor) matchCodeNamePrice(line string) (Item, bool) {
	m := reCodeNamePrice.FindStringSubmatch(line)
	if m == nil {
		return Item{}, false
	}
	name := cleanItemName(m[1])
	price := toFloat(m[2])
	if validName(name) && e.ReasonableMoney(price) {
		return Item{Name: name, Quantity: 1, Price: price}, true
	}
	return Item{}, false
}

func (e *Extractor) matchQtyNamePrice(line string) (Item, bool) {
	m := reQtyNamePrice.FindStringSubmatch(line)
	if m == nil {
		return Item{}, false
	}
	qty := toInt(m[1])
	name := cleanItemName(m[2])
	price := toFloat(m[3])
	if validName(name) && qty > 0 && e.ReasonableMoney(price) {
		return Item{Name: name, Quantity: qty, Price: price}, true
	}
	return Item{}, false
}

func (e *Extractor) matchNamePrice(line string) (Item, bool) {
	m := reNamePrice.FindStringSubmatch(line)
	if m == nil {
		return Item{}, false
	}
	name := cleanItemName(m[1])
	price := toFloat(m[2])
	if validName(name) && e.ReasonableMoney(price) {
		return Item{Name: name, Quantity: 1, Price: price}, true
	}
	return Item{}, false
}

// matchHeuristic is the catch-all: leading non-numeric run as the name,
// last short number on the line as the price.
func (e *Extractor) matchHeuristic(line string) (Item, bool) {
	// Digit runs longer than six are IDs, never prices; drop the whole
	// run rather than splitting chunks out of it.
	var numbers []string
	for _, run := range reNumberRun.FindAllString(line, -1) {
		intPart := run
		if i := strings.IndexByte(run, '.'); i >= 0 {
			intPart = run[:i]
		}
		intPart = strings.ReplaceAll(intPart, ",", "")
		if len(intPart) <= 6 {
			numbers = append(numbers, run)
		}
	}
	if len(numbers) == 0 {
		return Item{}, false
	}

	nm := reLeadingName.FindStringSubmatch(line)
	if nm == nil {
		return Item{}, false
	}
	name := cleanItemName(nm[1])
	if !validName(name) {
		return Item{}, false
	}

	price := toFloat(numbers[len(numbers)-1])
	qty := 1
	if len(numbers) > 1 {
		qty = toInt(numbers[0])
	}

	if e.ReasonableMoney(price) && qty > 0 {
		return Item{Name: name, Quantity: qty, Price: price}, true
	}
	return Item{}, false
}

func cleanItemName(s string) string {
	return textnorm.CleanName(strings.TrimSpace(s))
}

func validName(name string) bool {
	return utf8.RuneCountInString(name) >= 2
}

func toInt(s string) int {
	n, err := strconv.Atoi(reNonNumeric.ReplaceAllString(s, ""))
	if err != nil {
		return 0
	}
	return n
}

func toFloat(s string) float64 {
	n, ok := ParseAmountToken(reNonAmountChar.ReplaceAllString(s, ""))
	if !ok {
		return 0
	}
	return n
}
