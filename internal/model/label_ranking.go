package model

import (
	"fmt"
	"sort"
)

// LabelScore represents how strongly a zero-shot model associates a text
// with one candidate label.
type LabelScore struct {
	Label string
	Score float64
}

// Validate ensures the LabelScore has valid data.
func (l *LabelScore) Validate() error {
	if l.Label == "" {
		return fmt.Errorf("label is required")
	}

	if l.Score < 0.0 || l.Score > 1.0 {
		return fmt.Errorf("score must be between 0.0 and 1.0, got %.2f", l.Score)
	}

	return nil
}

// LabelRankings is a slice of LabelScore that supports sorting and utility methods.
type LabelRankings []LabelScore

// Len implements sort.Interface.
func (r LabelRankings) Len() int {
	return len(r)
}

// Less implements sort.Interface - higher scores come first.
func (r LabelRankings) Less(i, j int) bool {
	if r[i].Score != r[j].Score {
		return r[i].Score > r[j].Score
	}
	return r[i].Label < r[j].Label
}

// Swap implements sort.Interface.
func (r LabelRankings) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}

// Sort sorts the rankings by score in descending order.
func (r LabelRankings) Sort() {
	sort.Sort(r)
}

// Top returns the highest-scoring label, or nil if empty.
func (r LabelRankings) Top() *LabelScore {
	if len(r) == 0 {
		return nil
	}
	r.Sort()
	return &r[0]
}

// AboveThreshold returns all labels with scores at or above the given threshold.
func (r LabelRankings) AboveThreshold(threshold float64) LabelRankings {
	r.Sort()

	var result LabelRankings
	for _, ranking := range r {
		if ranking.Score >= threshold {
			result = append(result, ranking)
		}
	}
	return result
}

// Validate ensures all rankings in the slice are valid.
func (r LabelRankings) Validate() error {
	seen := make(map[string]bool)

	for i, ranking := range r {
		if err := ranking.Validate(); err != nil {
			return fmt.Errorf("invalid ranking at index %d: %w", i, err)
		}

		if seen[ranking.Label] {
			return fmt.Errorf("duplicate label %q at index %d", ranking.Label, i)
		}
		seen[ranking.Label] = true
	}

	return nil
}
