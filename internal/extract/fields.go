package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`總計[：:]\s*\$?\s*(` + numPat + `)(?:元|TX)?`),
	regexp.MustCompile(`合計[：:]\s*\$?\s*(` + numPat + `)(?:元|TX)?`),
	regexp.MustCompile(`應收\s?[：:]\s*\$?\s*(` + numPat + `)(?:元|TX)?`),
	regexp.MustCompile(`實收\s?[：:]\s*\$?\s*(` + numPat + `)(?:元|TX)?`),
}

var loneAmountRe = regexp.MustCompile(`(?i)^\$?\s*(\d{1,3}(?:,\d{3}){1,2}|\d{1,6})(?:\.\d{1,2})?\s*(?:元|TX)?$`)

var storePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.+?)(?:公司|有限公司|股份有限公司|企業|商行|商店)`),
	regexp.MustCompile(`^(.+?)(?:統一編號|統編)`),
}

var (
	fullDateRe = regexp.MustCompile(`(\d{4})[年/-](\d{1,2})[月/-](\d{1,2})日?`)
	monthDayRe = regexp.MustCompile(`(\d{1,2})[月/-](\d{1,2})日?`)
)

// TotalAmount scans all document lines for a printed total. Labeled
// totals win; a lone amount line is the fallback, covering receipts
// where the total sits under the payment method.
func (e *Extractor) TotalAmount(lines []string) (float64, bool) {
	for _, line := range lines {
		for _, re := range totalPatterns {
			if m := re.FindStringSubmatch(line); m != nil {
				if n, ok := ParseAmountToken(m[1]); ok && e.ReasonableMoney(n) {
					return n, true
				}
			}
		}
	}

	for _, line := range lines {
		if m := loneAmountRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if n, ok := ParseAmountToken(m[1]); ok && e.ReasonableMoney(n) {
				return n, true
			}
		}
	}
	return 0, false
}

// StoreName returns the store name when a company-suffixed or tax-ID
// line reveals one.
func StoreName(lines []string) (string, bool) {
	for _, line := range lines {
		for _, re := range storePatterns {
			if m := re.FindStringSubmatch(line); m != nil {
				name := strings.TrimSpace(m[1])
				if utf8.RuneCountInString(name) > 2 {
					return name, true
				}
			}
		}
	}
	return "", false
}

// Date returns an ISO date extracted from the document. A month-day
// form without a year is completed with the current year.
func Date(lines []string) (string, bool) {
	for _, line := range lines {
		if m := fullDateRe.FindStringSubmatch(line); m != nil {
			return fmt.Sprintf("%s-%02d-%02d", m[1], atoi(m[2]), atoi(m[3])), true
		}
		if m := monthDayRe.FindStringSubmatch(line); m != nil {
			return fmt.Sprintf("%d-%02d-%02d", time.Now().Year(), atoi(m[1]), atoi(m[2])), true
		}
	}
	return "", false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ParseAmountToken parses a printed amount that may use either comma or
// dot as the thousands separator, e.g. "1,234.50", "1.234,50", "1,234".
func ParseAmountToken(tok string) (float64, bool) {
	t := strings.ReplaceAll(tok, " ", "")
	if t == "" {
		return 0, false
	}

	hasDot := strings.Contains(t, ".")
	hasComma := strings.Contains(t, ",")

	switch {
	case hasDot && hasComma:
		// The rightmost separator is the decimal one.
		decSep := "."
		thouSep := ","
		if strings.LastIndex(t, ",") > strings.LastIndex(t, ".") {
			decSep, thouSep = ",", "."
		}
		t = strings.ReplaceAll(t, thouSep, "")
		if decSep == "," {
			t = strings.ReplaceAll(t, ",", ".")
		}
	case hasComma:
		parts := strings.Split(t, ",")
		if len(parts) == 2 && len(parts[1]) == 3 {
			t = parts[0] + parts[1]
		} else {
			t = strings.ReplaceAll(t, ",", ".")
		}
	case hasDot:
		parts := strings.Split(t, ".")
		if len(parts) == 2 && len(parts[1]) == 3 {
			t = parts[0] + parts[1]
		}
	}

	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
