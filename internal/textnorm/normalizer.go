// Package textnorm canonicalizes raw OCR and speech text before any
// segmentation, extraction or classification runs over it.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	zeroWidthRe  = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
	starRunRe    = regexp.MustCompile(`\*{2,}`)

	// Drink size/temperature modifiers carry no categorization signal
	// and routinely break dictionary lookups.
	modifierRe = regexp.MustCompile(`(?i)(微糖|少糖|半糖|全糖|無糖|正常糖|去冰|微冰|少冰|常溫|熱|溫|大杯|中杯|小杯|l|m|s)`)
	bracketRe  = regexp.MustCompile(`[()/\\【】\[\]{}]`)
	punctRe    = regexp.MustCompile(`[，。,.\s]`)

	alnumRunRe = regexp.MustCompile(`[A-Za-z0-9]{3,}`)
	trailQtyRe = regexp.MustCompile(`\s*[×xX]\s*\d+\s*$`)
	bulletRe   = regexp.MustCompile(`[•·．・]`)
	trailSepRe = regexp.MustCompile(`[:：，,。.\s]+$`)
)

// glyphRepairs maps digits OCR commonly mistakes for letters inside
// alphanumeric runs.
var glyphRepairs = strings.NewReplacer("0", "O", "1", "I", "5", "S", "8", "B")

// Normalize canonicalizes a raw text fragment: full-width characters are
// folded to half-width, zero-width characters stripped, ideographic
// punctuation mapped to ASCII and whitespace runs collapsed.
// Never fails; empty input yields empty output. Idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = width.Narrow.String(s)
	s = zeroWidthRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "，", ",")
	s = strings.ReplaceAll(s, "．", ".")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// MatchKey reduces text to the form used for keyword dictionary lookups:
// NFKC-folded, lowercased, drink modifiers and brackets removed, all
// whitespace and light punctuation squeezed out.
func MatchKey(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = modifierRe.ReplaceAllString(s, " ")
	s = bracketRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// RepairName fixes common OCR glyph confusions in item names: digits
// misread inside alphanumeric runs of three or more characters, and
// asterisk noise left by masked receipt fields.
func RepairName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = alnumRunRe.ReplaceAllStringFunc(s, glyphRepairs.Replace)
	s = starRunRe.ReplaceAllString(s, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanName strips bullets, a trailing "x N" quantity marker and
// trailing separators from an item name.
func CleanName(s string) string {
	s = bulletRe.ReplaceAllString(s, " ")
	s = trailQtyRe.ReplaceAllString(s, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = trailSepRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
