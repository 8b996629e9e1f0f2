// Package cart holds the in-progress product selection of one buyer in one
// seller storefront. A Cart is owned by the view that created it and is not
// safe for concurrent use.
package cart

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"craftmart/internal/domain"
)

// Entry product with its selected quantity
type Entry struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// LineTotal price * quantity
func (e Entry) LineTotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart keeps at most one entry per product id, in insertion order
type Cart struct {
	sellerID int64
	entries  []Entry
	dropped  int
}

// New cart for the storefront of sellerID; 0 lets the first product decide
func New(sellerID int64) *Cart {
	return &Cart{sellerID: sellerID}
}

func (c *Cart) SellerID() int64 { return c.sellerID }

// AddOrUpdate inserts the product or replaces its quantity (last write wins)
func (c *Cart) AddOrUpdate(p domain.Product, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	if c.sellerID != 0 && p.Seller.ID != c.sellerID {
		return domain.ErrSellerMismatch
	}
	if i := c.index(p.ID); i >= 0 {
		c.entries[i].Quantity = quantity
		return nil
	}
	if c.sellerID == 0 {
		c.sellerID = p.Seller.ID
	}
	c.entries = append(c.entries, Entry{Product: p, Quantity: quantity})
	return nil
}

// Remove drops the entry for productID; no-op when absent
func (c *Cart) Remove(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
	}
}

// Total sum of price * quantity over all entries
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.LineTotal())
	}
	return total
}

// Clear empties the cart; the storefront scope is kept
func (c *Cart) Clear() {
	c.entries = nil
}

// Dropped number of stored entries discarded when the cart was restored
// because they broke the cart rules (bad quantity, other seller)
func (c *Cart) Dropped() int { return c.dropped }

// Entries copy of the current entries
func (c *Cart) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Cart) Len() int      { return len(c.entries) }
func (c *Cart) IsEmpty() bool { return len(c.entries) == 0 }

// Count number of units across entries
func (c *Cart) Count() int {
	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

// Quantity selected for productID
func (c *Cart) Quantity(productID int64) (int, bool) {
	if i := c.index(productID); i >= 0 {
		return c.entries[i].Quantity, true
	}
	return 0, false
}

func (c *Cart) index(productID int64) int {
	for i, e := range c.entries {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}

// ParseQuantity clamps raw stepper input to a positive integer, defaulting to 1
func ParseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
