package status

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmart/internal/domain"
)

const (
	sellerID = int64(10)
	buyerID  = int64(20)
)

// fakeBackend applies transitions to an in-memory order set with the same
// table the real backend uses.
type fakeBackend struct {
	mu      sync.Mutex
	orders  map[int64]domain.Order
	customs map[int64]domain.CustomOrder
	calls   int
	refuse  bool
	gate    chan struct{}
	entered chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		orders: map[int64]domain.Order{
			1: {ID: 1, Status: domain.StatusPending, Seller: domain.User{ID: sellerID}, Buyer: domain.User{ID: buyerID}},
		},
		customs: map[int64]domain.CustomOrder{
			7: {ID: 7, Status: domain.StatusConfirmed, Seller: domain.User{ID: sellerID}, Buyer: domain.User{ID: buyerID}},
		},
	}
}

func (f *fakeBackend) ChangeOrderStatus(ctx context.Context, id int64, to domain.Status) (domain.Ack, error) {
	if f.gate != nil {
		close(f.entered)
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	o := f.orders[id]
	if f.refuse || !o.Status.CanTransition(to, domain.PartySeller) {
		return domain.Ack{Status: false, Message: "not allowed"}, nil
	}
	o.Status = to
	f.orders[id] = o
	return domain.Ack{Status: true, Message: "updated"}, nil
}

func (f *fakeBackend) ChangeCustomOrderStatus(ctx context.Context, id int64, to domain.Status) (domain.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	o := f.customs[id]
	if !o.Status.CanTransition(to, domain.PartySeller) {
		return domain.Ack{Status: false, Message: "not allowed"}, nil
	}
	o.Status = to
	f.customs[id] = o
	return domain.Ack{Status: true}, nil
}

func (f *fakeBackend) list(pred func(domain.Order) bool) []domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}

func (f *fakeBackend) BuyerOrders(ctx context.Context, id int64) ([]domain.Order, error) {
	return f.list(func(o domain.Order) bool { return o.Buyer.ID == id }), nil
}

func (f *fakeBackend) SellerOrders(ctx context.Context, id int64) ([]domain.Order, error) {
	return f.list(func(o domain.Order) bool { return o.Seller.ID == id }), nil
}

func (f *fakeBackend) BuyerCustomOrders(ctx context.Context, id int64) ([]domain.CustomOrder, error) {
	return f.customList(func(o domain.CustomOrder) bool { return o.Buyer.ID == id }), nil
}

func (f *fakeBackend) SellerCustomOrders(ctx context.Context, id int64) ([]domain.CustomOrder, error) {
	return f.customList(func(o domain.CustomOrder) bool { return o.Seller.ID == id }), nil
}

func (f *fakeBackend) customList(pred func(domain.CustomOrder) bool) []domain.CustomOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CustomOrder
	for _, o := range f.customs {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}

type viewer int64

func (v viewer) UserID() (int64, error) {
	if v == 0 {
		return 0, domain.ErrUnauthenticated
	}
	return int64(v), nil
}

func TestAllowed(t *testing.T) {
	assert.ElementsMatch(t,
		[]domain.Status{domain.StatusConfirmed, domain.StatusCancelled},
		Allowed(domain.StatusPending, domain.PartySeller))
	assert.Equal(t, []domain.Status{domain.StatusDelivered}, Allowed(domain.StatusConfirmed, domain.PartySeller))
	assert.Empty(t, Allowed(domain.StatusPending, domain.PartyBuyer))
	assert.Empty(t, Allowed(domain.StatusDelivered, domain.PartySeller))
	assert.Empty(t, Allowed(domain.StatusCancelled, domain.PartySeller))
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(domain.StatusPending, domain.StatusConfirmed, domain.PartySeller))
	assert.ErrorIs(t, Check(domain.StatusPending, domain.StatusDelivered, domain.PartySeller), domain.ErrTransitionRejected)
	assert.ErrorIs(t, Check(domain.StatusPending, domain.StatusCancelled, domain.PartyBuyer), domain.ErrTransitionRejected)
	assert.ErrorIs(t, Check(domain.StatusCancelled, domain.StatusDelivered, domain.PartySeller), domain.ErrTransitionRejected)
	assert.ErrorIs(t, Check(domain.StatusPending, domain.Status("shipped"), domain.PartySeller), domain.ErrTransitionRejected)
}

func TestPartyOf(t *testing.T) {
	assert.Equal(t, domain.PartySeller, PartyOf(sellerID, sellerID))
	assert.Equal(t, domain.PartyBuyer, PartyOf(buyerID, sellerID))
	assert.Equal(t, domain.PartyBuyer, PartyOf(0, 0))
}

func TestTransition_CancelThenDeliverRejectedLocally(t *testing.T) {
	be := newFakeBackend()
	tr := NewTracker(be, viewer(sellerID), nil)

	out, err := tr.TransitionOrder(context.Background(), be.orders[1], domain.StatusCancelled)
	require.NoError(t, err)
	assert.True(t, out.Ack.Status)
	require.Len(t, out.List, 1)
	assert.Equal(t, domain.StatusCancelled, out.List[0].Status)
	assert.Equal(t, 1, be.calls)

	_, err = tr.TransitionOrder(context.Background(), out.List[0], domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrTransitionRejected)
	assert.Equal(t, 1, be.calls)
}

func TestTransition_BuyerIsReadOnly(t *testing.T) {
	be := newFakeBackend()
	tr := NewTracker(be, viewer(buyerID), nil)

	_, err := tr.TransitionOrder(context.Background(), be.orders[1], domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrTransitionRejected)
	assert.Zero(t, be.calls)
}

func TestTransition_Unauthenticated(t *testing.T) {
	be := newFakeBackend()
	tr := NewTracker(be, viewer(0), nil)

	_, err := tr.TransitionOrder(context.Background(), be.orders[1], domain.StatusConfirmed)
	assert.True(t, domain.NeedsLogin(err))
	assert.Zero(t, be.calls)
}

func TestTransition_BackendRefusalIsNonFatal(t *testing.T) {
	be := newFakeBackend()
	be.refuse = true
	tr := NewTracker(be, viewer(sellerID), nil)

	out, err := tr.TransitionOrder(context.Background(), be.orders[1], domain.StatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrTransitionRejected)
	assert.Contains(t, domain.UserMessage(err), "not allowed")
	require.Len(t, out.List, 1)
	assert.Equal(t, domain.StatusPending, out.List[0].Status)
}

func TestTransition_SecondAttemptInFlight(t *testing.T) {
	be := newFakeBackend()
	be.gate = make(chan struct{})
	be.entered = make(chan struct{})
	tr := NewTracker(be, viewer(sellerID), nil)
	o := be.orders[1]

	done := make(chan error, 1)
	go func() {
		_, err := tr.TransitionOrder(context.Background(), o, domain.StatusConfirmed)
		done <- err
	}()
	<-be.entered

	_, err := tr.TransitionOrder(context.Background(), o, domain.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInFlight)

	close(be.gate)
	require.NoError(t, <-done)
}

func TestTransitionCustomOrder(t *testing.T) {
	be := newFakeBackend()
	tr := NewTracker(be, viewer(sellerID), nil)

	out, err := tr.TransitionCustomOrder(context.Background(), be.customs[7], domain.StatusDelivered)
	require.NoError(t, err)
	require.Len(t, out.List, 1)
	assert.Equal(t, domain.StatusDelivered, out.List[0].Status)
}

func TestOrdersByParty(t *testing.T) {
	be := newFakeBackend()

	bought, err := NewTracker(be, viewer(buyerID), nil).Orders(context.Background(), domain.PartyBuyer)
	require.NoError(t, err)
	assert.Len(t, bought, 1)

	sold, err := NewTracker(be, viewer(buyerID), nil).Orders(context.Background(), domain.PartySeller)
	require.NoError(t, err)
	assert.Empty(t, sold)

	customs, err := NewTracker(be, viewer(sellerID), nil).CustomOrders(context.Background(), domain.PartySeller)
	require.NoError(t, err)
	assert.Len(t, customs, 1)
}
