package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"craftmart/internal/domain"
)

// GormStore хранилище поверх gorm; таблицы держат колонки для поиска,
// а сама сущность лежит в JSON-поле body
type GormStore struct {
	db *gorm.DB
}

type productRecord struct {
	ID         int64 `gorm:"primaryKey"`
	Name       string
	CategoryID int64 `gorm:"index"`
	SellerID   int64 `gorm:"index"`
	Body       domain.Product `gorm:"serializer:json"`
}

func (productRecord) TableName() string { return "products" }

type categoryRecord struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

func (categoryRecord) TableName() string { return "categories" }

type userRecord struct {
	ID           int64  `gorm:"primaryKey"`
	Phone        string `gorm:"uniqueIndex"`
	PasswordHash []byte
	Body         domain.User `gorm:"serializer:json"`
}

func (userRecord) TableName() string { return "users" }

type orderRecord struct {
	ID        int64 `gorm:"primaryKey"`
	BuyerID   int64 `gorm:"index"`
	SellerID  int64 `gorm:"index"`
	Status    string
	OrderDate time.Time
	Body      domain.Order `gorm:"serializer:json"`
}

func (orderRecord) TableName() string { return "orders" }

type customOrderRecord struct {
	ID        int64 `gorm:"primaryKey"`
	BuyerID   int64 `gorm:"index"`
	SellerID  int64 `gorm:"index"`
	Status    string
	OrderDate time.Time
	Body      domain.CustomOrder `gorm:"serializer:json"`
}

func (customOrderRecord) TableName() string { return "custom_orders" }

// OpenSQLite открывает sqlite базу и мигрирует схему
func OpenSQLite(dsn string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&productRecord{}, &categoryRecord{}, &userRecord{}, &orderRecord{}, &customOrderRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Repos все репозитории поверх одного соединения
func (s *GormStore) Repos() Repos {
	return Repos{
		Products:     &GormProducts{s},
		Categories:   &GormCategories{s},
		Users:        &GormUsers{s},
		Orders:       &GormOrders{s},
		CustomOrders: &GormCustomOrders{s},
		Tx:           s,
	}
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormTxKey struct{}

// conn returns the transaction bound to ctx, if any
func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *GormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

func mapGormErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrDuplicate
	}
	return err
}

// GormProducts ProductRepository
type GormProducts struct{ s *GormStore }

var _ ProductRepository = (*GormProducts)(nil)

func toProductRecord(p *domain.Product) productRecord {
	return productRecord{ID: p.ID, Name: p.Name, CategoryID: p.Category.ID, SellerID: p.Seller.ID, Body: *p}
}

func (r productRecord) product() domain.Product {
	p := r.Body
	p.ID = r.ID
	return p
}

func (g *GormProducts) Create(ctx context.Context, p *domain.Product) error {
	rec := toProductRecord(p)
	rec.ID = 0
	if err := g.s.conn(ctx).Create(&rec).Error; err != nil {
		return mapGormErr(err)
	}
	p.ID = rec.ID
	return nil
}

func (g *GormProducts) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var rec productRecord
	if err := g.s.conn(ctx).First(&rec, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	p := rec.product()
	return &p, nil
}

func (g *GormProducts) Update(ctx context.Context, p *domain.Product) error {
	rec := toProductRecord(p)
	res := g.s.conn(ctx).Model(&productRecord{ID: p.ID}).Select("*").Updates(&rec)
	if res.Error != nil {
		return mapGormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormProducts) Delete(ctx context.Context, id int64) error {
	res := g.s.conn(ctx).Delete(&productRecord{}, id)
	if res.Error != nil {
		return mapGormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List narrows by name and category in SQL, price and location are
// checked on the decoded rows
func (g *GormProducts) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	q := g.s.conn(ctx).Order("id")
	if f.Name != nil && *f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(*f.Name)+"%")
	}
	if f.Category != nil && f.Category.ID != 0 {
		q = q.Where("category_id = ?", f.Category.ID)
	}
	var recs []productRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, mapGormErr(err)
	}
	out := make([]domain.Product, 0, len(recs))
	for _, r := range recs {
		if p := r.product(); matches(p, f) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (g *GormProducts) BySeller(ctx context.Context, sellerID int64) ([]domain.Product, error) {
	var recs []productRecord
	if err := g.s.conn(ctx).Where("seller_id = ?", sellerID).Order("id").Find(&recs).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return productsOf(recs), nil
}

func (g *GormProducts) Latest(ctx context.Context, page, size int) ([]domain.Product, int64, error) {
	var total int64
	if err := g.s.conn(ctx).Model(&productRecord{}).Count(&total).Error; err != nil {
		return nil, 0, mapGormErr(err)
	}
	if size <= 0 || page < 0 || int64(page) > total/int64(size) {
		return []domain.Product{}, total, nil
	}
	var recs []productRecord
	err := g.s.conn(ctx).Order("id DESC").Offset(page * size).Limit(size).Find(&recs).Error
	if err != nil {
		return nil, 0, mapGormErr(err)
	}
	return productsOf(recs), total, nil
}

func productsOf(recs []productRecord) []domain.Product {
	out := make([]domain.Product, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.product())
	}
	return out
}

// GormCategories CategoryRepository
type GormCategories struct{ s *GormStore }

var _ CategoryRepository = (*GormCategories)(nil)

func (g *GormCategories) Create(ctx context.Context, c *domain.Category) error {
	rec := categoryRecord{Name: c.Name}
	if err := g.s.conn(ctx).Create(&rec).Error; err != nil {
		return mapGormErr(err)
	}
	c.ID = rec.ID
	return nil
}

func (g *GormCategories) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var rec categoryRecord
	if err := g.s.conn(ctx).First(&rec, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &domain.Category{ID: rec.ID, Name: rec.Name}, nil
}

func (g *GormCategories) List(ctx context.Context) ([]domain.Category, error) {
	var recs []categoryRecord
	if err := g.s.conn(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, mapGormErr(err)
	}
	out := make([]domain.Category, 0, len(recs))
	for _, r := range recs {
		out = append(out, domain.Category{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// GormUsers UserRepository
type GormUsers struct{ s *GormStore }

var _ UserRepository = (*GormUsers)(nil)

func (r userRecord) account() *Account {
	u := r.Body
	u.ID = r.ID
	u.Phone = r.Phone
	return &Account{User: u, PasswordHash: r.PasswordHash}
}

func (g *GormUsers) Create(ctx context.Context, a *Account) error {
	rec := userRecord{Phone: a.User.Phone, PasswordHash: a.PasswordHash, Body: a.User}
	if err := g.s.conn(ctx).Create(&rec).Error; err != nil {
		return mapGormErr(err)
	}
	a.User.ID = rec.ID
	return nil
}

func (g *GormUsers) GetByID(ctx context.Context, id int64) (*Account, error) {
	var rec userRecord
	if err := g.s.conn(ctx).First(&rec, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return rec.account(), nil
}

func (g *GormUsers) GetByPhone(ctx context.Context, phone string) (*Account, error) {
	var rec userRecord
	if err := g.s.conn(ctx).Where("phone = ?", phone).First(&rec).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return rec.account(), nil
}

func (g *GormUsers) Update(ctx context.Context, a *Account) error {
	rec := userRecord{ID: a.User.ID, Phone: a.User.Phone, PasswordHash: a.PasswordHash, Body: a.User}
	res := g.s.conn(ctx).Model(&userRecord{ID: a.User.ID}).Select("*").Updates(&rec)
	if res.Error != nil {
		return mapGormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormOrders OrderRepository
type GormOrders struct{ s *GormStore }

var _ OrderRepository = (*GormOrders)(nil)

func toOrderRecord(o *domain.Order) orderRecord {
	return orderRecord{
		ID: o.ID, BuyerID: o.Buyer.ID, SellerID: o.Seller.ID,
		Status: string(o.Status), OrderDate: o.OrderDate, Body: *o,
	}
}

func (r orderRecord) order() domain.Order {
	o := r.Body
	o.ID = r.ID
	o.Status = domain.Status(r.Status)
	return o
}

func (g *GormOrders) Create(ctx context.Context, o *domain.Order) error {
	// line item ids are positions within the order
	for i := range o.Items {
		o.Items[i].ID = int64(i + 1)
	}
	rec := toOrderRecord(o)
	rec.ID = 0
	if err := g.s.conn(ctx).Create(&rec).Error; err != nil {
		return mapGormErr(err)
	}
	o.ID = rec.ID
	return nil
}

func (g *GormOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var rec orderRecord
	if err := g.s.conn(ctx).First(&rec, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	o := rec.order()
	return &o, nil
}

func (g *GormOrders) Update(ctx context.Context, o *domain.Order) error {
	rec := toOrderRecord(o)
	res := g.s.conn(ctx).Model(&orderRecord{ID: o.ID}).Select("*").Updates(&rec)
	if res.Error != nil {
		return mapGormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormOrders) ListByBuyer(ctx context.Context, buyerID int64) ([]domain.Order, error) {
	return g.list(ctx, "buyer_id = ?", buyerID)
}

func (g *GormOrders) ListBySeller(ctx context.Context, sellerID int64) ([]domain.Order, error) {
	return g.list(ctx, "seller_id = ?", sellerID)
}

func (g *GormOrders) list(ctx context.Context, where string, id int64) ([]domain.Order, error) {
	var recs []orderRecord
	if err := g.s.conn(ctx).Where(where, id).Order("id DESC").Find(&recs).Error; err != nil {
		return nil, mapGormErr(err)
	}
	out := make([]domain.Order, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.order())
	}
	return out, nil
}

// GormCustomOrders CustomOrderRepository
type GormCustomOrders struct{ s *GormStore }

var _ CustomOrderRepository = (*GormCustomOrders)(nil)

func toCustomRecord(o *domain.CustomOrder) customOrderRecord {
	return customOrderRecord{
		ID: o.ID, BuyerID: o.Buyer.ID, SellerID: o.Seller.ID,
		Status: string(o.Status), OrderDate: o.OrderDate, Body: *o,
	}
}

func (r customOrderRecord) customOrder() domain.CustomOrder {
	o := r.Body
	o.ID = r.ID
	o.Status = domain.Status(r.Status)
	return o
}

func (g *GormCustomOrders) Create(ctx context.Context, o *domain.CustomOrder) error {
	rec := toCustomRecord(o)
	rec.ID = 0
	if err := g.s.conn(ctx).Create(&rec).Error; err != nil {
		return mapGormErr(err)
	}
	o.ID = rec.ID
	return nil
}

func (g *GormCustomOrders) GetByID(ctx context.Context, id int64) (*domain.CustomOrder, error) {
	var rec customOrderRecord
	if err := g.s.conn(ctx).First(&rec, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	o := rec.customOrder()
	return &o, nil
}

func (g *GormCustomOrders) Update(ctx context.Context, o *domain.CustomOrder) error {
	rec := toCustomRecord(o)
	res := g.s.conn(ctx).Model(&customOrderRecord{ID: o.ID}).Select("*").Updates(&rec)
	if res.Error != nil {
		return mapGormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormCustomOrders) ListByBuyer(ctx context.Context, buyerID int64) ([]domain.CustomOrder, error) {
	return g.list(ctx, "buyer_id = ?", buyerID)
}

func (g *GormCustomOrders) ListBySeller(ctx context.Context, sellerID int64) ([]domain.CustomOrder, error) {
	return g.list(ctx, "seller_id = ?", sellerID)
}

func (g *GormCustomOrders) list(ctx context.Context, where string, id int64) ([]domain.CustomOrder, error) {
	var recs []customOrderRecord
	if err := g.s.conn(ctx).Where(where, id).Order("id DESC").Find(&recs).Error; err != nil {
		return nil, mapGormErr(err)
	}
	out := make([]domain.CustomOrder, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.customOrder())
	}
	return out, nil
}
