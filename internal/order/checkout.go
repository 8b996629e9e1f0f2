package order

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"craftmart/internal/cart"
	"craftmart/internal/domain"
)

// Submitter sends composed orders to the backend
type Submitter interface {
	SaveOrder(ctx context.Context, o domain.Order) (*domain.Order, error)
	SaveCustomOrder(ctx context.Context, o domain.CustomOrder, img domain.ImagePayload) (domain.Ack, error)
}

// Identity resolves the logged in buyer
type Identity interface {
	User() (*domain.User, error)
}

// Checkout composes and submits one order at a time. While a submission is
// running every further attempt fails with ErrInFlight.
type Checkout struct {
	composer  *Composer
	submitter Submitter
	identity  Identity
	logger    *zap.Logger
	busy      atomic.Bool
}

func NewCheckout(c *Composer, s Submitter, id Identity, logger *zap.Logger) *Checkout {
	if c == nil {
		c = NewComposer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{composer: c, submitter: s, identity: id, logger: logger}
}

// Busy reports whether a submission is running
func (ch *Checkout) Busy() bool { return ch.busy.Load() }

func (ch *Checkout) acquire(op string) error {
	if !ch.busy.CompareAndSwap(false, true) {
		return &domain.OpError{Op: op, Err: domain.ErrInFlight}
	}
	return nil
}

func (ch *Checkout) release() { ch.busy.Store(false) }

func (ch *Checkout) buyer(op string) (*domain.User, error) {
	if ch.identity == nil {
		return nil, &domain.OpError{Op: op, Err: domain.ErrUnauthenticated}
	}
	return ch.identity.User()
}

// PlaceCart submits the whole cart and clears it once the backend returned
// the persisted order. On any failure the cart is left as it was.
func (ch *Checkout) PlaceCart(ctx context.Context, c *cart.Cart, addr *domain.Address) (*domain.Order, error) {
	const op = "checkout.PlaceCart"
	if err := ch.acquire(op); err != nil {
		return nil, err
	}
	defer ch.release()

	buyer, err := ch.buyer(op)
	if err != nil {
		return nil, err
	}
	o, err := ch.composer.Compose(Request{Buyer: buyer, Items: FromCart(c), Address: addr})
	if err != nil {
		return nil, err
	}
	saved, err := ch.submit(ctx, op, o)
	if err != nil {
		return nil, err
	}
	c.Clear()
	return saved, nil
}

// BuyNow submits a single product without touching any cart
func (ch *Checkout) BuyNow(ctx context.Context, p domain.Product, quantity int, addr *domain.Address) (*domain.Order, error) {
	const op = "checkout.BuyNow"
	if err := ch.acquire(op); err != nil {
		return nil, err
	}
	defer ch.release()

	buyer, err := ch.buyer(op)
	if err != nil {
		return nil, err
	}
	o, err := ch.composer.Compose(Request{Buyer: buyer, BuyNow: &Selection{Product: p, Quantity: quantity}, Address: addr})
	if err != nil {
		return nil, err
	}
	return ch.submit(ctx, op, o)
}

func (ch *Checkout) submit(ctx context.Context, op string, o domain.Order) (*domain.Order, error) {
	saved, err := ch.submitter.SaveOrder(ctx, o)
	if err != nil {
		ch.logger.Warn("order submission failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	if saved == nil || !saved.Persisted() {
		return nil, &domain.OpError{Op: op, Message: "order was not persisted", Err: domain.ErrSubmissionRejected}
	}
	ch.logger.Info("order placed",
		zap.Int64("order_id", saved.ID),
		zap.Int64("seller_id", saved.Seller.ID),
		zap.String("total", saved.FinalPrice.String()))
	return saved, nil
}

// PlaceCustom submits a bespoke order request
func (ch *Checkout) PlaceCustom(ctx context.Context, req CustomRequest) (domain.Ack, error) {
	const op = "checkout.PlaceCustom"
	if err := ch.acquire(op); err != nil {
		return domain.Ack{}, err
	}
	defer ch.release()

	buyer, err := ch.buyer(op)
	if err != nil {
		return domain.Ack{}, err
	}
	req.Buyer = buyer
	co, file, err := ch.composer.ComposeCustom(req)
	if err != nil {
		return domain.Ack{}, err
	}
	ack, err := ch.submitter.SaveCustomOrder(ctx, co, file)
	if err != nil {
		ch.logger.Warn("custom order submission failed", zap.String("op", op), zap.Error(err))
		return domain.Ack{}, err
	}
	if !ack.Status {
		return ack, &domain.OpError{Op: op, ID: co.Seller.ID, Message: ack.Message, Err: domain.ErrSubmissionRejected}
	}
	ch.logger.Info("custom order placed", zap.Int64("seller_id", co.Seller.ID), zap.String("name", co.Name))
	return ack, nil
}
