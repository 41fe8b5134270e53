package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineItem(id int64, name string, price float64) LineItem {
	return LineItem{ProductID: id, Name: name, UnitPrice: price, Unit: "piece"}
}

func TestCartAddMergesSameProduct(t *testing.T) {
	cart := NewCart()

	outcome := cart.Add(lineItem(1, "Dal", 90))
	assert.Equal(t, OutcomeAdded, outcome)

	outcome = cart.Add(lineItem(1, "Dal", 90))
	assert.Equal(t, OutcomeQuantityUpdated, outcome)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCartAddPreservesInsertionOrder(t *testing.T) {
	cart := NewCart()
	cart.Add(lineItem(3, "Rice", 60))
	cart.Add(lineItem(1, "Dal", 90))
	cart.Add(lineItem(2, "Atta", 45))
	cart.Add(lineItem(1, "Dal", 90))

	items := cart.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{items[0].ProductID, items[1].ProductID, items[2].ProductID})
}

func TestCartUpdateQuantityFloorsAtOne(t *testing.T) {
	cart := NewCart()
	cart.Add(lineItem(1, "Dal", 90))

	cart.UpdateQuantity(1, 0)
	require.Len(t, cart.Items(), 1)
	assert.Equal(t, 1, cart.Items()[0].Quantity)

	cart.UpdateQuantity(1, -5)
	assert.Equal(t, 1, cart.Items()[0].Quantity)

	cart.UpdateQuantity(1, 7)
	assert.Equal(t, 7, cart.Items()[0].Quantity)
}

func TestCartUpdateQuantityUnknownIDIsNoOp(t *testing.T) {
	cart := NewCart()
	cart.Add(lineItem(1, "Dal", 90))

	cart.UpdateQuantity(99, 5)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestCartRemoveIsIdempotent(t *testing.T) {
	cart := NewCart()
	cart.Add(lineItem(1, "Dal", 90))
	cart.Add(lineItem(2, "Atta", 45))

	cart.Remove(1)
	assert.Equal(t, 1, cart.Len())

	cart.Remove(1)
	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, int64(2), cart.Items()[0].ProductID)
}

func TestCartClear(t *testing.T) {
	cart := NewCart()
	cart.Add(lineItem(1, "Dal", 90))
	cart.Add(lineItem(2, "Atta", 45))

	cart.Clear()
	assert.Zero(t, cart.Len())
	assert.Empty(t, cart.Items())

	totals := cart.Totals()
	assert.Zero(t, totals.Total)
}

func TestCartItemsReturnsCopy(t *testing.T) {
	cart := NewCart()
	cart.Add(lineItem(1, "Dal", 90))

	items := cart.Items()
	items[0].Quantity = 100

	assert.Equal(t, 1, cart.Items()[0].Quantity)
}

func TestCartStoreIsolatesRegisters(t *testing.T) {
	store := NewCartStore()
	a := store.Open()
	b := store.Open()

	store.With(a, func(cart *Cart, _ **Checkout) {
		cart.Add(lineItem(1, "Dal", 90))
	})

	store.With(b, func(cart *Cart, _ **Checkout) {
		assert.Zero(t, cart.Len())
	})

	store.Close(a)
	store.With(a, func(cart *Cart, _ **Checkout) {
		// closed register comes back empty on next use
		assert.Zero(t, cart.Len())
	})
}
