package repository

import (
	"context"
	"errors"
	"strings"

	"craftmart/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = domain.ErrNotFound

// ErrDuplicate нарушение уникальности, например телефон уже занят
var ErrDuplicate = errors.New("already exists")

// Account пользователь вместе с хешем пароля; наружу отдаётся только User
type Account struct {
	User         domain.User
	PasswordHash []byte
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	// Latest newest first; total is the number of products overall
	Latest(ctx context.Context, page, size int) ([]domain.Product, int64, error)
	BySeller(ctx context.Context, sellerID int64) ([]domain.Product, error)
}

// CategoryRepository справочник категорий
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByPhone(ctx context.Context, phone string) (*Account, error)
	Update(ctx context.Context, a *Account) error
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	ListByBuyer(ctx context.Context, buyerID int64) ([]domain.Order, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]domain.Order, error)
}

// CustomOrderRepository интерфейс репозитория индивидуальных заказов
type CustomOrderRepository interface {
	Create(ctx context.Context, o *domain.CustomOrder) error
	GetByID(ctx context.Context, id int64) (*domain.CustomOrder, error)
	Update(ctx context.Context, o *domain.CustomOrder) error
	ListByBuyer(ctx context.Context, buyerID int64) ([]domain.CustomOrder, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]domain.CustomOrder, error)
}

// TxManager абстракция транзакции. Для in-memory это глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repos набор репозиториев одного хранилища
type Repos struct {
	Products     ProductRepository
	Categories   CategoryRepository
	Users        UserRepository
	Orders       OrderRepository
	CustomOrders CustomOrderRepository
	Tx           TxManager
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// location text a product is matched against: the seller's address
func location(p domain.Product) string {
	a := p.Seller.Address
	return strings.Join([]string{a.Locality, a.City, a.District, a.State, a.Pincode}, " ")
}

// matches applies every set field of the filter
func matches(p domain.Product, f domain.ProductFilter) bool {
	if f.Name != nil && !containsIgnoreCase(p.Name, *f.Name) {
		return false
	}
	if f.Category != nil && f.Category.ID != 0 && p.Category.ID != f.Category.ID {
		return false
	}
	if f.Location != nil && !containsIgnoreCase(location(p), *f.Location) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// page bounds of a zero-based page over n items
func pageBounds(n, page, size int) (from, to int) {
	if size <= 0 || page < 0 {
		return 0, 0
	}
	if page > n/size {
		return n, n
	}
	from = page * size
	if from > n {
		from = n
	}
	to = from + size
	if to > n {
		to = n
	}
	return from, to
}
