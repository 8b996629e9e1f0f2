// Package status offers and requests order lifecycle transitions for the
// party viewing an order.
package status

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"craftmart/internal/domain"
)

// Allowed lists the statuses party may move an order in from to
func Allowed(from domain.Status, party domain.Party) []domain.Status {
	return from.Next(party)
}

// Check validates one transition without touching the network
func Check(from, to domain.Status, party domain.Party) error {
	switch {
	case !to.Valid():
		return fmt.Errorf("%w: unknown status %q", domain.ErrTransitionRejected, to)
	case from.Terminal():
		return fmt.Errorf("%w: order is already %s", domain.ErrTransitionRejected, from)
	case party != domain.PartySeller:
		return fmt.Errorf("%w: only the seller can change the status", domain.ErrTransitionRejected)
	case !from.CanTransition(to, party):
		return fmt.Errorf("%w: %s cannot become %s", domain.ErrTransitionRejected, from, to)
	}
	return nil
}

// PartyOf the viewer is the seller iff they own the order
func PartyOf(viewerID, sellerID int64) domain.Party {
	if viewerID != 0 && viewerID == sellerID {
		return domain.PartySeller
	}
	return domain.PartyBuyer
}

// Backend the REST calls the tracker needs
type Backend interface {
	ChangeOrderStatus(ctx context.Context, id int64, to domain.Status) (domain.Ack, error)
	ChangeCustomOrderStatus(ctx context.Context, id int64, to domain.Status) (domain.Ack, error)
	BuyerOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	SellerOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	BuyerCustomOrders(ctx context.Context, userID int64) ([]domain.CustomOrder, error)
	SellerCustomOrders(ctx context.Context, userID int64) ([]domain.CustomOrder, error)
}

// Viewer resolves the logged in user
type Viewer interface {
	UserID() (int64, error)
}

// Outcome of a transition request: the backend answer and the seller's list
// as re-fetched afterwards.
type Outcome[T any] struct {
	Ack  domain.Ack
	List []T
}

// Tracker serialises transition requests per order
type Tracker struct {
	backend Backend
	viewer  Viewer
	logger  *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewTracker(b Backend, v Viewer, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{backend: b, viewer: v, logger: logger, inflight: make(map[string]struct{})}
}

func (t *Tracker) viewerID(op string) (int64, error) {
	if t.viewer == nil {
		return 0, &domain.OpError{Op: op, Err: domain.ErrUnauthenticated}
	}
	return t.viewer.UserID()
}

// Orders lists orders of the viewer from the given side
func (t *Tracker) Orders(ctx context.Context, party domain.Party) ([]domain.Order, error) {
	id, err := t.viewerID("status.Orders")
	if err != nil {
		return nil, err
	}
	switch party {
	case domain.PartyBuyer:
		return t.backend.BuyerOrders(ctx, id)
	case domain.PartySeller:
		return t.backend.SellerOrders(ctx, id)
	}
	return nil, fmt.Errorf("%w: unknown party %q", domain.ErrInvalidInput, party)
}

// CustomOrders lists custom orders of the viewer from the given side
func (t *Tracker) CustomOrders(ctx context.Context, party domain.Party) ([]domain.CustomOrder, error) {
	id, err := t.viewerID("status.CustomOrders")
	if err != nil {
		return nil, err
	}
	switch party {
	case domain.PartyBuyer:
		return t.backend.BuyerCustomOrders(ctx, id)
	case domain.PartySeller:
		return t.backend.SellerCustomOrders(ctx, id)
	}
	return nil, fmt.Errorf("%w: unknown party %q", domain.ErrInvalidInput, party)
}

// TransitionOrder requests o -> to on behalf of the viewer
func (t *Tracker) TransitionOrder(ctx context.Context, o domain.Order, to domain.Status) (Outcome[domain.Order], error) {
	return transition(ctx, t, target[domain.Order]{
		op:       "status.TransitionOrder",
		kind:     "order",
		id:       o.ID,
		from:     o.Status,
		sellerID: o.Seller.ID,
		change:   t.backend.ChangeOrderStatus,
		refetch:  t.backend.SellerOrders,
	}, to)
}

// TransitionCustomOrder requests o -> to on behalf of the viewer
func (t *Tracker) TransitionCustomOrder(ctx context.Context, o domain.CustomOrder, to domain.Status) (Outcome[domain.CustomOrder], error) {
	return transition(ctx, t, target[domain.CustomOrder]{
		op:       "status.TransitionCustomOrder",
		kind:     "custom",
		id:       o.ID,
		from:     o.Status,
		sellerID: o.Seller.ID,
		change:   t.backend.ChangeCustomOrderStatus,
		refetch:  t.backend.SellerCustomOrders,
	}, to)
}

type target[T any] struct {
	op       string
	kind     string
	id       int64
	from     domain.Status
	sellerID int64
	change   func(context.Context, int64, domain.Status) (domain.Ack, error)
	refetch  func(context.Context, int64) ([]T, error)
}

func transition[T any](ctx context.Context, t *Tracker, tg target[T], to domain.Status) (Outcome[T], error) {
	var out Outcome[T]
	fail := func(err error, msg string) error {
		return &domain.OpError{Op: tg.op, ID: tg.id, Message: msg, Err: err}
	}

	viewer, err := t.viewerID(tg.op)
	if err != nil {
		return out, err
	}
	if tg.id == 0 {
		return out, fail(domain.ErrInvalidInput, "order is not persisted")
	}
	if err := Check(tg.from, to, PartyOf(viewer, tg.sellerID)); err != nil {
		return out, fail(err, "")
	}

	key := fmt.Sprintf("%s:%d", tg.kind, tg.id)
	if !t.begin(key) {
		return out, fail(domain.ErrInFlight, "")
	}
	defer t.end(key)

	ack, err := tg.change(ctx, tg.id, to)
	out.Ack = ack

	// the list is re-read whatever the answer was; the backend is authoritative
	list, lerr := tg.refetch(ctx, viewer)
	out.List = list

	switch {
	case err != nil:
		t.logger.Warn("status change failed", zap.String("op", tg.op), zap.Int64("id", tg.id), zap.Error(err))
		return out, err
	case !ack.Status:
		t.logger.Info("status change refused by backend",
			zap.String("op", tg.op), zap.Int64("id", tg.id), zap.String("message", ack.Message))
		return out, fail(domain.ErrTransitionRejected, ack.Message)
	case lerr != nil:
		return out, lerr
	}
	t.logger.Info("status changed",
		zap.String("op", tg.op),
		zap.Int64("id", tg.id),
		zap.String("from", string(tg.from)),
		zap.String("to", string(to)))
	return out, nil
}

func (t *Tracker) begin(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inflight[key]; busy {
		return false
	}
	t.inflight[key] = struct{}{}
	return true
}

func (t *Tracker) end(key string) {
	t.mu.Lock()
	delete(t.inflight, key)
	t.mu.Unlock()
}
