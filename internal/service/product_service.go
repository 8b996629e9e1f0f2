package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"craftmart/internal/domain"
	"craftmart/internal/repository"
)

var (
	ErrInvalidInput = domain.ErrInvalidInput
	ErrForbidden    = errors.New("forbidden")
)

// ProductService инкапсулирует бизнес-логику вокруг товаров и категорий
type ProductService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
}

func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository, users repository.UserRepository) *ProductService {
	return &ProductService{repo: repo, categories: categories, users: users}
}

// Save создаёт (ID == 0) или обновляет товар продавца. Пустая картинка при
// обновлении оставляет прежнюю.
func (s *ProductService) Save(ctx context.Context, sellerID int64, p domain.Product, image []byte) (*domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Price.IsNegative() {
		return nil, ErrInvalidInput
	}
	if p.SellUnit == "" {
		p.SellUnit = domain.UnitPiece
	}
	switch p.SellUnit {
	case domain.UnitKg, domain.UnitLiter, domain.UnitPiece, domain.UnitSet:
	default:
		return nil, ErrInvalidInput
	}

	seller, err := s.users.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !seller.User.Role.CanSell() {
		return nil, ErrForbidden
	}
	p.Seller = seller.User

	if p.Category.ID != 0 {
		c, err := s.categories.GetByID(ctx, p.Category.ID)
		if err != nil {
			return nil, err
		}
		p.Category = *c
	}

	if p.ID == 0 {
		p.Image = image
		cp := p
		if err := s.repo.Create(ctx, &cp); err != nil {
			return nil, err
		}
		return &cp, nil
	}

	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing.Seller.ID != sellerID {
		return nil, ErrForbidden
	}
	p.Image = existing.Image
	if len(image) > 0 {
		p.Image = image
	}
	cp := p
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Delete удаляет товар, только владелец может это сделать
func (s *ProductService) Delete(ctx context.Context, sellerID, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Seller.ID != sellerID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, ErrInvalidInput
	}
	return s.repo.List(ctx, f)
}

func (s *ProductService) BySeller(ctx context.Context, sellerID int64) ([]domain.Product, error) {
	if sellerID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.BySeller(ctx, sellerID)
}

const maxPageSize = 100

// Latest страница новинок в формате Spring Page
func (s *ProductService) Latest(ctx context.Context, page, size int) (*domain.ProductPage, error) {
	if page < 0 || size <= 0 {
		return nil, ErrInvalidInput
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page > math.MaxInt/size {
		return nil, ErrInvalidInput
	}
	list, total, err := s.repo.Latest(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return &domain.ProductPage{
		Content:       list,
		Number:        page,
		Size:          size,
		TotalElements: total,
		TotalPages:    int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// EnsureCategory возвращает категорию по имени, создавая её при отсутствии
func (s *ProductService) EnsureCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	list, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		if strings.EqualFold(c.Name, name) {
			cp := c
			return &cp, nil
		}
	}
	c := domain.Category{Name: name}
	if err := s.categories.Create(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
