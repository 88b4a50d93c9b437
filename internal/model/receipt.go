package model

// ParsedLineItem is a single extracted receipt line with its category.
type ParsedLineItem struct {
	Name       string
	Category   string
	Source     Source
	Quantity   int
	Price      float64
	Confidence float64
}

// Subtotal returns the line's contribution to the receipt total.
// Price already carries the line subtotal; quantity defaults to one.
func (i ParsedLineItem) Subtotal() float64 {
	return i.Price
}

// Reconciliation compares the printed receipt total against the sum of
// parsed line items to estimate parse completeness.
type Reconciliation struct {
	Suggestions  []string
	ItemSum      float64
	Difference   float64
	IsValid      bool
	MissingItems bool
}

// ParsedReceipt is the assembled result of parsing one receipt.
type ParsedReceipt struct {
	StoreName      string
	Date           string
	Items          []ParsedLineItem
	Reconciliation Reconciliation
	TotalAmount    float64
	FilteredCount  int
	TotalCount     int
}

// LineItem is one raw line item from a structured OCR document.
type LineItem struct {
	Description string
	Category    string
	Source      Source
	Quantity    float64
	UnitPrice   float64
	Amount      float64
	HasQuantity bool
	HasUnit     bool
	HasAmount   bool
	Confidence  float64
}

// Document is the structured output of a document-OCR provider,
// before postprocessing and classification.
type Document struct {
	Vendor    string
	Date      string
	Currency  string
	LineItems []LineItem
	Subtotal  float64
	Tax       float64
	Total     float64
}
