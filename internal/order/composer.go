// Package order turns a cart or a single product into a submittable order
// and drives the checkout round trip.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"craftmart/internal/cart"
	"craftmart/internal/domain"
)

// Selection one product and the quantity the buyer wants
type Selection struct {
	Product  domain.Product
	Quantity int
}

// Request input of Compose. Exactly one of Items and BuyNow is set.
// A nil Address means the buyer's profile address.
type Request struct {
	Buyer   *domain.User
	Items   []Selection
	BuyNow  *Selection
	Address *domain.Address
}

// CustomRequest input of ComposeCustom
type CustomRequest struct {
	Buyer       *domain.User
	Seller      domain.User
	Name        string
	Description string
	Quantity    int
	Image       domain.ImagePayload
	Address     *domain.Address
}

// Composer builds order payloads; it never talks to the network
type Composer struct {
	now func() time.Time
}

func NewComposer() *Composer { return &Composer{now: time.Now} }

// WithClock fixes the submission time, mostly for tests
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// FromCart snapshots the cart entries as selections
func FromCart(c *cart.Cart) []Selection {
	entries := c.Entries()
	out := make([]Selection, 0, len(entries))
	for _, e := range entries {
		out = append(out, Selection{Product: e.Product, Quantity: e.Quantity})
	}
	return out
}

// Compose validates the request and returns a pending, unpersisted order
func (c *Composer) Compose(req Request) (domain.Order, error) {
	const op = "order.Compose"
	if req.Buyer == nil || req.Buyer.ID == 0 {
		return domain.Order{}, &domain.OpError{Op: op, Err: domain.ErrUnauthenticated}
	}

	sel := req.Items
	if req.BuyNow != nil {
		if len(req.Items) > 0 {
			return domain.Order{}, &domain.OpError{Op: op, Message: "cart items and buy now are exclusive", Err: domain.ErrInvalidInput}
		}
		sel = []Selection{*req.BuyNow}
	}
	if len(sel) == 0 {
		return domain.Order{}, &domain.OpError{Op: op, Err: domain.ErrEmptyOrder}
	}

	var (
		seller domain.User
		items  = make([]domain.OrderLineItem, 0, len(sel))
		total  = decimal.Zero
	)
	for i, s := range sel {
		if s.Quantity < 1 {
			return domain.Order{}, &domain.OpError{Op: op, ID: s.Product.ID, Err: domain.ErrInvalidQuantity}
		}
		if s.Product.Seller.ID == 0 {
			return domain.Order{}, &domain.OpError{Op: op, ID: s.Product.ID, Message: "product has no seller", Err: domain.ErrInvalidInput}
		}
		if i == 0 {
			seller = s.Product.Seller
		} else if s.Product.Seller.ID != seller.ID {
			return domain.Order{}, &domain.OpError{Op: op, ID: s.Product.ID, Err: domain.ErrSellerMismatch}
		}
		line := s.Product.Price.Mul(decimal.NewFromInt(int64(s.Quantity)))
		items = append(items, domain.OrderLineItem{
			Product:  s.Product,
			Quantity: s.Quantity,
			Price:    line,
		})
		total = total.Add(line)
	}

	return domain.Order{
		Items:      items,
		OrderDate:  c.now(),
		FinalPrice: total,
		Seller:     seller,
		Buyer:      *req.Buyer,
		Status:     domain.StatusPending,
		Address:    deliveryAddress(req.Buyer, req.Address),
	}, nil
}

// ComposeCustom validates a bespoke order. The returned file part is the
// attached image or the empty placeholder; a missing image never blocks.
func (c *Composer) ComposeCustom(req CustomRequest) (domain.CustomOrder, domain.MultipartFile, error) {
	const op = "order.ComposeCustom"
	fail := func(err error, msg string) (domain.CustomOrder, domain.MultipartFile, error) {
		return domain.CustomOrder{}, domain.MultipartFile{}, &domain.OpError{Op: op, ID: req.Seller.ID, Message: msg, Err: err}
	}

	if req.Buyer == nil || req.Buyer.ID == 0 {
		return fail(domain.ErrUnauthenticated, "")
	}
	if req.Seller.ID == 0 {
		return fail(domain.ErrInvalidInput, "seller is required")
	}
	if !req.Seller.AcceptsCustomOrders() {
		return fail(domain.ErrCustomOrdersDisabled, "")
	}
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fail(domain.ErrInvalidInput, fmt.Sprintf("%s required", strings.Join(missing, " and ")))
	}
	if req.Quantity < 1 {
		return fail(domain.ErrInvalidQuantity, "")
	}

	file, err := domain.AsMultipart(req.Image)
	if err != nil {
		return fail(domain.ErrInvalidInput, err.Error())
	}

	return domain.CustomOrder{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Quantity:    req.Quantity,
		OrderDate:   c.now(),
		Buyer:       *req.Buyer,
		Seller:      req.Seller,
		Status:      domain.StatusPending,
		Address:     deliveryAddress(req.Buyer, req.Address),
	}, file, nil
}

func deliveryAddress(buyer *domain.User, override *domain.Address) domain.Address {
	if override != nil {
		return *override
	}
	return buyer.Address
}
