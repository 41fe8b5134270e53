package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals := ComputeTotals(nil)
	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.GST)
	assert.Zero(t, totals.Total)
}

func TestComputeTotalsScenario(t *testing.T) {
	// 100x2 + 50x1 => subtotal 250, GST 45.00, total 295.00
	items := []LineItem{
		{ProductID: 1, Name: "Paracetamol", UnitPrice: 100, Quantity: 2},
		{ProductID: 2, Name: "Cough Syrup", UnitPrice: 50, Quantity: 1},
	}
	totals := ComputeTotals(items)
	assert.InDelta(t, 250.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 45.0, Round2(totals.GST), 1e-9)
	assert.InDelta(t, 295.0, Round2(totals.Total), 1e-9)
}

func TestComputeTotalsSumsLines(t *testing.T) {
	cases := []struct {
		name     string
		items    []LineItem
		subtotal float64
	}{
		{"single line", []LineItem{{UnitPrice: 12.5, Quantity: 4}}, 50},
		{"fractional prices", []LineItem{{UnitPrice: 9.99, Quantity: 3}, {UnitPrice: 0.01, Quantity: 1}}, 29.98},
		{"large quantity", []LineItem{{UnitPrice: 2, Quantity: 1000}}, 2000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := ComputeTotals(tc.items)
			assert.InDelta(t, tc.subtotal, totals.Subtotal, 1e-9)
			assert.InDelta(t, tc.subtotal*GSTRate, totals.GST, 1e-9)
			assert.InDelta(t, tc.subtotal+tc.subtotal*GSTRate, totals.Total, 1e-9)
		})
	}
}

func TestComputeTotalsIsPure(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, UnitPrice: 33.33, Quantity: 3},
		{ProductID: 2, UnitPrice: 7, Quantity: 2},
	}
	first := ComputeTotals(items)
	second := ComputeTotals(items)
	assert.Equal(t, first, second)
}

func TestSplitHalvesGST(t *testing.T) {
	totals := ComputeTotals([]LineItem{{UnitPrice: 100, Quantity: 1}})
	cgst, sgst := totals.Split()
	assert.InDelta(t, cgst, sgst, 1e-12)
	assert.InDelta(t, totals.GST, cgst+sgst, 1e-12)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 45.0, Round2(45.000000001))
	assert.Equal(t, 0.1, Round2(0.104))
	assert.Equal(t, 0.3, Round2(0.1+0.2))
}
