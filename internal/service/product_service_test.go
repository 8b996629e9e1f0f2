package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"craftmart/internal/domain"
	"craftmart/internal/events"
	"craftmart/internal/repository"
)

type fixture struct {
	repos    repository.Repos
	auth     *AuthService
	products *ProductService
	orders   *OrderService
	customs  *CustomOrderService
	events   *events.Recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	r := repository.NewMemory()
	rec := &events.Recorder{}
	return &fixture{
		repos:    r,
		auth:     NewAuthService(r.Users, "test-secret", time.Hour),
		products: NewProductService(r.Products, r.Categories, r.Users),
		orders:   NewOrderService(r.Products, r.Users, r.Orders, r.Tx, rec, nil),
		customs:  NewCustomOrderService(r.Users, r.CustomOrders, r.Tx, rec, nil),
		events:   rec,
	}
}

// user registers an account and returns its id
func (f *fixture) user(t *testing.T, phone string, role domain.Role, customOrders bool) int64 {
	t.Helper()
	ctx := context.Background()
	tok, err := f.auth.Register(ctx, domain.User{
		Name: "u" + phone, Phone: phone, Role: role,
		Address:        domain.Address{City: "Pune", Pincode: "411001"},
		UserAdditional: domain.UserAdditional{CustomOrder: customOrders},
	}, "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	c, err := f.auth.Authenticate(tok)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return c.UserID
}

func (f *fixture) product(t *testing.T, sellerID int64, name string, price int64) *domain.Product {
	t.Helper()
	p, err := f.products.Save(context.Background(), sellerID, domain.Product{Name: name, Price: decimal.NewFromInt(price)}, nil)
	if err != nil {
		t.Fatalf("save product: %v", err)
	}
	return p
}

func TestProduct_Save_Valid(t *testing.T) {
	f := setup(t)
	seller := f.user(t, "1", domain.RoleSeller, false)
	p := f.product(t, seller, "Clay pot", 100)
	if p.ID == 0 {
		t.Fatalf("expected id assigned")
	}
	if p.Seller.ID != seller || p.SellUnit != domain.UnitPiece {
		t.Fatalf("seller/unit not set: %+v", p)
	}
}

func TestProduct_Save_Invalid(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	seller := f.user(t, "1", domain.RoleSeller, false)
	buyer := f.user(t, "2", domain.RoleBuyer, false)

	if _, err := f.products.Save(ctx, seller, domain.Product{Name: "", Price: decimal.NewFromInt(1)}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.products.Save(ctx, seller, domain.Product{Name: "N", Price: decimal.NewFromInt(-1)}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.products.Save(ctx, seller, domain.Product{Name: "N", SellUnit: "ton"}, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected unit error, got %v", err)
	}
	if _, err := f.products.Save(ctx, buyer, domain.Product{Name: "N"}, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("buyer must not sell, got %v", err)
	}
}

func TestProduct_Update_OwnerOnlyAndKeepsImage(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	seller := f.user(t, "1", domain.RoleSeller, false)
	other := f.user(t, "2", domain.RoleBoth, false)

	p, err := f.products.Save(ctx, seller, domain.Product{Name: "Jar", Price: decimal.NewFromInt(5)}, []byte{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	p.Name = "Jar XL"
	upd, err := f.products.Save(ctx, seller, *p, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Name != "Jar XL" || len(upd.Image) != 2 {
		t.Fatalf("update lost data: %+v", upd)
	}
	if _, err := f.products.Save(ctx, other, *p, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.products.Delete(ctx, other, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if err := f.products.Delete(ctx, seller, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestProduct_LatestPage(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	seller := f.user(t, "1", domain.RoleSeller, false)
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		f.product(t, seller, n, 1)
	}
	page, err := f.products.Latest(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalElements != 5 || page.TotalPages != 3 || page.Number != 1 || len(page.Content) != 2 {
		t.Fatalf("page: %+v", page)
	}
	if page.Content[0].Name != "c" {
		t.Fatalf("newest first broken: %s", page.Content[0].Name)
	}
	if _, err := f.products.Latest(ctx, -1, 2); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative page accepted")
	}
	if _, err := f.products.Latest(ctx, math.MaxInt/10, 100); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("overflowing page accepted")
	}
	page, err = f.products.Latest(ctx, 50, 2)
	if err != nil || len(page.Content) != 0 || page.Number != 50 {
		t.Fatalf("page past end: %v %+v", err, page)
	}
}

func TestProduct_Categories(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c1, err := f.products.EnsureCategory(ctx, "Pottery")
	if err != nil {
		t.Fatal(err)
	}
	c2, _ := f.products.EnsureCategory(ctx, "pottery")
	if c1.ID != c2.ID {
		t.Fatalf("category duplicated")
	}
	seller := f.user(t, "1", domain.RoleSeller, false)
	p, err := f.products.Save(ctx, seller, domain.Product{Name: "Bowl", Category: domain.Category{ID: c1.ID}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Category.Name != "Pottery" {
		t.Fatalf("category not resolved: %+v", p.Category)
	}
	if _, err := f.products.Save(ctx, seller, domain.Product{Name: "Bowl", Category: domain.Category{ID: 99}}, nil); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown category accepted: %v", err)
	}
}
