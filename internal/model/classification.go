// Package model defines the core domain models used throughout the application.
package model

// Source indicates which classification stage produced a result.
type Source string

// Classification source constants.
const (
	SourceRule    Source = "rule"
	SourceLocal   Source = "local"
	SourceAI      Source = "ai"
	SourceUnknown Source = "unknown"
	SourceError   Source = "error"
)

// CategoryOther is the neutral fallback category for anything that
// cannot be classified with confidence.
const CategoryOther = "其他"

// ClassificationResult describes how a piece of text was categorized.
type ClassificationResult struct {
	Category   string
	Source     Source
	Reason     string
	Confidence float64
	IsProduct  bool
}
