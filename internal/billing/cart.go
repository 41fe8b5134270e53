package billing

import (
	"sync"

	"github.com/google/uuid"
)

// AddOutcome tells the caller whether Add created a new line or merged into
// an existing one.
type AddOutcome string

const (
	OutcomeAdded           AddOutcome = "added"
	OutcomeQuantityUpdated AddOutcome = "quantity updated"
)

// Cart is an ordered collection of line items keyed by product ID. One line
// per distinct product; quantities never drop below 1 while the line exists.
type Cart struct {
	items []LineItem
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Add appends a new line with quantity 1, or increments the quantity when a
// line for the product already exists.
func (c *Cart) Add(item LineItem) AddOutcome {
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity++
			return OutcomeQuantityUpdated
		}
	}
	item.Quantity = 1
	c.items = append(c.items, item)
	return OutcomeAdded
}

// UpdateQuantity sets the quantity for a product's line, flooring at 1.
// An unknown product ID is a silent no-op: removal goes through Remove, and
// quantity edits on a line that was just removed should not resurrect it.
func (c *Cart) UpdateQuantity(productID int64, quantity int) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			if quantity < 1 {
				quantity = 1
			}
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Remove deletes the line for a product. Removing an absent product is a
// no-op, so repeated removes are idempotent.
func (c *Cart) Remove(productID int64) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Totals computes the money totals for the current contents.
func (c *Cart) Totals() Totals {
	return ComputeTotals(c.items)
}

// register bundles the cart and the payment flow for one checkout session.
type register struct {
	cart     *Cart
	checkout *Checkout
}

// CartStore owns one cart per register. A register models a single checkout
// session (one operator, one terminal); carts are never shared across
// registers. The map is mutex guarded because HTTP handlers run
// concurrently, but each register is only ever driven by its own operator.
type CartStore struct {
	mu        sync.Mutex
	registers map[uuid.UUID]*register
}

// NewCartStore returns an empty store.
func NewCartStore() *CartStore {
	return &CartStore{registers: make(map[uuid.UUID]*register)}
}

// Open allocates a new register and returns its ID.
func (s *CartStore) Open() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.registers[id] = &register{cart: NewCart()}
	return id
}

// With runs fn against the register's cart and checkout under the store
// lock, creating the register on first use.
func (s *CartStore) With(id uuid.UUID, fn func(cart *Cart, checkout **Checkout)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registers[id]
	if !ok {
		reg = &register{cart: NewCart()}
		s.registers[id] = reg
	}
	fn(reg.cart, &reg.checkout)
}

// Close discards a register along with its cart and any checkout in flight.
func (s *CartStore) Close(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registers, id)
}
