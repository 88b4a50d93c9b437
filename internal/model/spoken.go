package model

// SpokenExpense is the parsed form of one spoken bookkeeping utterance,
// e.g. "麥當勞 120 元 晚餐".
type SpokenExpense struct {
	Note        string
	Account     string
	Category    string
	Suggestions []string
	Amount      float64
	HasAmount   bool
	// Confidence is an additive quality score out of 100, not a probability.
	Confidence int
}
