package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"craftmart/internal/domain"
	"craftmart/internal/events"
	"craftmart/internal/repository"
)

// OrderService реализует логику заказов: приём, смена статуса, списки
type OrderService struct {
	products repository.ProductRepository
	users    repository.UserRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
	events   events.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderService(products repository.ProductRepository, users repository.UserRepository, orders repository.OrderRepository,
	tx repository.TxManager, pub events.Publisher, logger *zap.Logger) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{products: products, users: users, orders: orders, tx: tx, events: pub, logger: logger, now: time.Now}
}

// Create принимает новый заказ покупателя. Цены и продавец берутся из
// каталога, а не из тела запроса; дата и статус ставятся сервером.
func (s *OrderService) Create(ctx context.Context, buyerID int64, in domain.Order) (*domain.Order, error) {
	if in.Persisted() {
		return nil, fmt.Errorf("%w: existing orders change only through the status endpoint", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	// validate items
	for _, it := range in.Items {
		if it.Product.ID <= 0 {
			return nil, ErrInvalidInput
		}
		if it.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	buyer, err := s.users.GetByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	var created *domain.Order
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o := domain.Order{
			Items:      make([]domain.OrderLineItem, 0, len(in.Items)),
			OrderDate:  s.now().UTC(),
			FinalPrice: decimal.Zero,
			Buyer:      buyer.User,
			Status:     domain.StatusPending,
			Address:    in.Address,
		}
		if o.Address.Blank() {
			o.Address = buyer.User.Address
		}
		for i, it := range in.Items {
			p, err := s.products.GetByID(ctx, it.Product.ID)
			if err != nil {
				return err
			}
			if i == 0 {
				o.Seller = p.Seller
			} else if p.Seller.ID != o.Seller.ID {
				return domain.ErrSellerMismatch
			}
			line := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			o.Items = append(o.Items, domain.OrderLineItem{Product: *p, Quantity: it.Quantity, Price: line})
			o.FinalPrice = o.FinalPrice.Add(line)
		}
		if o.Seller.ID == buyerID {
			return fmt.Errorf("%w: cannot order from your own store", ErrInvalidInput)
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.OrderCreated, created.ID, created.Buyer.ID, created.Seller.ID, "", created.Status))
	return created, nil
}

// Transition применяет переход статуса. Недопустимый переход не ошибка,
// а ответ {status: false}, как и в контракте клиента.
func (s *OrderService) Transition(ctx context.Context, actorID, id int64, to domain.Status) (domain.Ack, error) {
	if id <= 0 {
		return domain.Ack{}, ErrInvalidInput
	}
	var (
		ack  domain.Ack
		from domain.Status
		o    *domain.Order
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status
		if ack = decide(actorID, o.Seller.ID, o.Buyer.ID, from, to); !ack.Status {
			return nil
		}
		o.Status = to
		return s.orders.Update(ctx, o)
	})
	if err != nil {
		return domain.Ack{}, err
	}
	if ack.Status {
		s.publish(ctx, events.New(events.OrderStatusChanged, o.ID, o.Buyer.ID, o.Seller.ID, from, to))
	}
	return ack, nil
}

// ListByBuyer заказы покупателя; смотреть можно только свои
func (s *OrderService) ListByBuyer(ctx context.Context, actorID, buyerID int64) ([]domain.Order, error) {
	if actorID != buyerID {
		return nil, ErrForbidden
	}
	return s.orders.ListByBuyer(ctx, buyerID)
}

// ListBySeller заказы, поступившие в магазин продавца
func (s *OrderService) ListBySeller(ctx context.Context, actorID, sellerID int64) ([]domain.Order, error) {
	if actorID != sellerID {
		return nil, ErrForbidden
	}
	return s.orders.ListBySeller(ctx, sellerID)
}

func (s *OrderService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("event not published", zap.String("type", string(e.Type)), zap.Int64("order_id", e.OrderID), zap.Error(err))
	}
}

// decide checks one requested transition against the lifecycle table
func decide(actorID, sellerID, buyerID int64, from, to domain.Status) domain.Ack {
	party := domain.PartyBuyer
	switch actorID {
	case sellerID:
		party = domain.PartySeller
	case buyerID:
	default:
		return domain.Ack{Status: false, Message: "not your order"}
	}
	if !from.CanTransition(to, party) {
		return domain.Ack{Status: false, Message: fmt.Sprintf("%s cannot change status from %s to %s", party, from, to)}
	}
	return domain.Ack{Status: true, Message: fmt.Sprintf("status changed to %s", to)}
}
