package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"craftmart/internal/domain"
	"craftmart/internal/events"
	"craftmart/internal/repository"
)

// CustomOrderService индивидуальные заказы: та же машина состояний, без каталога
type CustomOrderService struct {
	users  repository.UserRepository
	orders repository.CustomOrderRepository
	tx     repository.TxManager
	events events.Publisher
	logger *zap.Logger
	now    func() time.Time
}

func NewCustomOrderService(users repository.UserRepository, orders repository.CustomOrderRepository,
	tx repository.TxManager, pub events.Publisher, logger *zap.Logger) *CustomOrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomOrderService{users: users, orders: orders, tx: tx, events: pub, logger: logger, now: time.Now}
}

// Create сохраняет заявку покупателя. Продавец, не принимающий такие
// заказы, даёт ответ {status: false}; картинка необязательна.
func (s *CustomOrderService) Create(ctx context.Context, buyerID int64, in domain.CustomOrder, image []byte) (domain.Ack, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" || in.Description == "" || in.Seller.ID <= 0 {
		return domain.Ack{}, ErrInvalidInput
	}
	if in.Quantity < 1 {
		return domain.Ack{}, domain.ErrInvalidQuantity
	}

	buyer, err := s.users.GetByID(ctx, buyerID)
	if err != nil {
		return domain.Ack{}, err
	}
	seller, err := s.users.GetByID(ctx, in.Seller.ID)
	if err != nil {
		return domain.Ack{}, err
	}
	if seller.User.ID == buyer.User.ID {
		return domain.Ack{}, fmt.Errorf("%w: cannot order from yourself", ErrInvalidInput)
	}
	if !seller.User.AcceptsCustomOrders() {
		return domain.Ack{Status: false, Message: "seller does not accept custom orders"}, nil
	}

	o := domain.CustomOrder{
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		Image:       image,
		OrderDate:   s.now().UTC(),
		Buyer:       buyer.User,
		Seller:      seller.User,
		Status:      domain.StatusPending,
		Address:     in.Address,
	}
	if o.Address.Blank() {
		o.Address = buyer.User.Address
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return domain.Ack{}, err
	}
	s.publish(ctx, events.New(events.CustomOrderCreated, o.ID, o.Buyer.ID, o.Seller.ID, "", o.Status))
	return domain.Ack{Status: true, Message: "custom order placed"}, nil
}

func (s *CustomOrderService) Transition(ctx context.Context, actorID, id int64, to domain.Status) (domain.Ack, error) {
	if id <= 0 {
		return domain.Ack{}, ErrInvalidInput
	}
	var (
		ack  domain.Ack
		from domain.Status
		o    *domain.CustomOrder
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
		s.publish(ctx, events.New(events.CustomOrderStatusChanged, o.ID, o.Buyer.ID, o.Seller.ID, from, to))
	}
	return ack, nil
}

func (s *CustomOrderService) ListByBuyer(ctx context.Context, actorID, buyerID int64) ([]domain.CustomOrder, error) {
	if actorID != buyerID {
		return nil, ErrForbidden
	}
	return s.orders.ListByBuyer(ctx, buyerID)
}

func (s *CustomOrderService) ListBySeller(ctx context.Context, actorID, sellerID int64) ([]domain.CustomOrder, error) {
	if actorID != sellerID {
		return nil, ErrForbidden
	}
	return s.orders.ListBySeller(ctx, sellerID)
}

func (s *CustomOrderService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("event not published", zap.String("type", string(e.Type)), zap.Int64("order_id", e.OrderID), zap.Error(err))
	}
}
