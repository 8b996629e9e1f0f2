package repository

import (
	"context"
	"sort"
	"sync"

	"craftmart/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID
type MemoryStore struct {
	mu     sync.RWMutex
	nextID map[string]int64

	productsByID   map[int64]domain.Product
	categoriesByID map[int64]domain.Category
	accountsByID   map[int64]Account
	ordersByID     map[int64]domain.Order
	customsByID    map[int64]domain.CustomOrder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:         make(map[string]int64),
		productsByID:   make(map[int64]domain.Product),
		categoriesByID: make(map[int64]domain.Category),
		accountsByID:   make(map[int64]Account),
		ordersByID:     make(map[int64]domain.Order),
		customsByID:    make(map[int64]domain.CustomOrder),
	}
}

// NewMemory собирает все репозитории поверх одного MemoryStore
func NewMemory() Repos {
	store := NewMemoryStore()
	return Repos{
		Products:     store,
		Categories:   &MemoryCategories{store},
		Users:        &MemoryUsers{store},
		Orders:       &MemoryOrders{store},
		CustomOrders: &MemoryCustomOrders{store},
		Tx:           NewMemoryTx(store),
	}
}

// id sequences start at 1 per table; caller holds the write lock
func (m *MemoryStore) seq(table string) int64 {
	m.nextID[table]++
	return m.nextID[table]
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p.ID = m.seq("products")
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[p.ID]; !ok {
		return ErrNotFound
	}
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.productsByID, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	return m.collect(ctx, func(p domain.Product) bool { return matches(p, f) }), nil
}

func (m *MemoryStore) BySeller(ctx context.Context, sellerID int64) ([]domain.Product, error) {
	return m.collect(ctx, func(p domain.Product) bool { return p.Seller.ID == sellerID }), nil
}

func (m *MemoryStore) Latest(ctx context.Context, page, size int) ([]domain.Product, int64, error) {
	all := m.collect(ctx, func(domain.Product) bool { return true })
	// ids grow monotonically, so newest first is id descending
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	from, to := pageBounds(len(all), page, size)
	return all[from:to], int64(len(all)), nil
}

// collect products in id order
func (m *MemoryStore) collect(ctx context.Context, keep func(domain.Product) bool) []domain.Product {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.productsByID {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MemoryCategories CategoryRepository on wrapper type
type MemoryCategories struct{ store *MemoryStore }

var _ CategoryRepository = (*MemoryCategories)(nil)

func (mc *MemoryCategories) Create(ctx context.Context, c *domain.Category) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c.ID = mc.store.seq("categories")
	mc.store.categoriesByID[c.ID] = *c
	return nil
}

func (mc *MemoryCategories) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.categoriesByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (mc *MemoryCategories) List(ctx context.Context) ([]domain.Category, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.Category, 0, len(mc.store.categoriesByID))
	for _, c := range mc.store.categoriesByID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MemoryUsers UserRepository on wrapper type; phone is unique
type MemoryUsers struct{ store *MemoryStore }

var _ UserRepository = (*MemoryUsers)(nil)

func (us *MemoryUsers) Create(ctx context.Context, a *Account) error {
	us.store.wlock(ctx)
	defer us.store.wunlock(ctx)
	for _, other := range us.store.accountsByID {
		if other.User.Phone == a.User.Phone {
			return ErrDuplicate
		}
	}
	a.User.ID = us.store.seq("users")
	us.store.accountsByID[a.User.ID] = *a
	return nil
}

func (us *MemoryUsers) GetByID(ctx context.Context, id int64) (*Account, error) {
	us.store.rlock(ctx)
	defer us.store.runlock(ctx)
	a, ok := us.store.accountsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (us *MemoryUsers) GetByPhone(ctx context.Context, phone string) (*Account, error) {
	us.store.rlock(ctx)
	defer us.store.runlock(ctx)
	for _, a := range us.store.accountsByID {
		if a.User.Phone == phone {
			cp := a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (us *MemoryUsers) Update(ctx context.Context, a *Account) error {
	us.store.wlock(ctx)
	defer us.store.wunlock(ctx)
	if _, ok := us.store.accountsByID[a.User.ID]; !ok {
		return ErrNotFound
	}
	for id, other := range us.store.accountsByID {
		if id != a.User.ID && other.User.Phone == a.User.Phone {
			return ErrDuplicate
		}
	}
	us.store.accountsByID[a.User.ID] = *a
	return nil
}

// MemoryOrders OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.seq("orders")
	for i := range o.Items {
		o.Items[i].ID = mo.store.seq("order_items")
	}
	mo.store.ordersByID[o.ID] = *o
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[o.ID]; !ok {
		return ErrNotFound
	}
	mo.store.ordersByID[o.ID] = *o
	return nil
}

func (mo *MemoryOrders) ListByBuyer(ctx context.Context, buyerID int64) ([]domain.Order, error) {
	return mo.list(ctx, func(o domain.Order) bool { return o.Buyer.ID == buyerID }), nil
}

func (mo *MemoryOrders) ListBySeller(ctx context.Context, sellerID int64) ([]domain.Order, error) {
	return mo.list(ctx, func(o domain.Order) bool { return o.Seller.ID == sellerID }), nil
}

// list newest first
func (mo *MemoryOrders) list(ctx context.Context, keep func(domain.Order) bool) []domain.Order {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range mo.store.ordersByID {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// MemoryCustomOrders CustomOrderRepository on wrapper type
type MemoryCustomOrders struct{ store *MemoryStore }

var _ CustomOrderRepository = (*MemoryCustomOrders)(nil)

func (mc *MemoryCustomOrders) Create(ctx context.Context, o *domain.CustomOrder) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	o.ID = mc.store.seq("custom_orders")
	mc.store.customsByID[o.ID] = *o
	return nil
}

func (mc *MemoryCustomOrders) GetByID(ctx context.Context, id int64) (*domain.CustomOrder, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	o, ok := mc.store.customsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (mc *MemoryCustomOrders) Update(ctx context.Context, o *domain.CustomOrder) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.customsByID[o.ID]; !ok {
		return ErrNotFound
	}
	mc.store.customsByID[o.ID] = *o
	return nil
}

func (mc *MemoryCustomOrders) ListByBuyer(ctx context.Context, buyerID int64) ([]domain.CustomOrder, error) {
	return mc.list(ctx, func(o domain.CustomOrder) bool { return o.Buyer.ID == buyerID }), nil
}

func (mc *MemoryCustomOrders) ListBySeller(ctx context.Context, sellerID int64) ([]domain.CustomOrder, error) {
	return mc.list(ctx, func(o domain.CustomOrder) bool { return o.Seller.ID == sellerID }), nil
}

func (mc *MemoryCustomOrders) list(ctx context.Context, keep func(domain.CustomOrder) bool) []domain.CustomOrder {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.CustomOrder, 0)
	for _, o := range mc.store.customsByID {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	if isTx(ctx) {
		return fn(ctx)
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
