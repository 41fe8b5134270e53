package billing

import "math"

// GSTRate is the flat rate applied to every sale. Products carry their own
// gst_rate column but billing applies the uniform rate, matching the
// behaviour the shop runs on today.
const GSTRate = 0.18

// Totals holds the unrounded money amounts for a cart.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	GST      float64 `json:"gst"`
	Total    float64 `json:"total"`
}

// ComputeTotals derives subtotal, GST and grand total from the line items.
// Accumulation stays unrounded; callers round at the display or persistence
// boundary with Round2. An empty cart yields all zeros.
func ComputeTotals(items []LineItem) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	gst := subtotal * GSTRate
	return Totals{
		Subtotal: subtotal,
		GST:      gst,
		Total:    subtotal + gst,
	}
}

// Split divides the GST amount into the two co-equal components printed on
// the receipt (CGST and SGST, 9% each).
func (t Totals) Split() (cgst, sgst float64) {
	half := t.GST / 2
	return half, half
}

// Round2 rounds a money amount to two decimal places for display and
// persistence.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
