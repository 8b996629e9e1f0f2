// Package seed loads demo catalog data into a fresh backend.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"craftmart/internal/domain"
	"craftmart/internal/repository"
	"craftmart/internal/service"
)

//go:embed default.yaml
var defaultSeed []byte

type File struct {
	Categories []string  `yaml:"categories"`
	Users      []User    `yaml:"users"`
	Products   []Product `yaml:"products"`
}

type User struct {
	Name         string         `yaml:"name"`
	Phone        string         `yaml:"phone"`
	Password     string         `yaml:"password"`
	Role         domain.Role    `yaml:"role"`
	CustomOrders bool           `yaml:"customOrders"`
	Address      domain.Address `yaml:"address"`
}

type Product struct {
	Seller      string          `yaml:"seller"` // phone of a seeded user
	Name        string          `yaml:"name"`
	Price       string          `yaml:"price"`
	Category    string          `yaml:"category"`
	Unit        domain.SellUnit `yaml:"unit"`
	Description string          `yaml:"description"`
}

// Result counts what was created; already present users are not counted
type Result struct {
	Categories int
	Users      int
	Products   int
}

// Parse decodes a seed document; unknown keys are an error
func Parse(b []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &f, nil
}

// Load reads path, or the built in demo data when path is empty
func Load(path string) (*File, error) {
	if path == "" {
		return Parse(defaultSeed)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return Parse(b)
}

// Apply creates categories, users and products through the services so
// the usual validation runs. Re-running against the same store does not
// duplicate users.
func Apply(ctx context.Context, f *File, auth *service.AuthService, products *service.ProductService, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res Result

	cats := make(map[string]domain.Category)
	for _, name := range f.Categories {
		c, err := products.EnsureCategory(ctx, name)
		if err != nil {
			return res, fmt.Errorf("seed category %q: %w", name, err)
		}
		cats[name] = *c
		res.Categories++
	}

	sellers := make(map[string]int64)
	for _, u := range f.Users {
		tok, err := auth.Register(ctx, domain.User{
			Name: u.Name, Phone: u.Phone, Role: u.Role, Address: u.Address,
			UserAdditional: domain.UserAdditional{CustomOrder: u.CustomOrders},
		}, u.Password)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			tok, err = auth.Login(ctx, u.Phone, u.Password)
			if err != nil {
				return res, fmt.Errorf("seed user %s: %w", u.Phone, err)
			}
		case err != nil:
			return res, fmt.Errorf("seed user %s: %w", u.Phone, err)
		default:
			res.Users++
		}
		claims, err := auth.Authenticate(tok)
		if err != nil {
			return res, err
		}
		sellers[u.Phone] = claims.UserID
	}

	for _, p := range f.Products {
		sellerID, ok := sellers[p.Seller]
		if !ok {
			return res, fmt.Errorf("seed product %q: unknown seller %s", p.Name, p.Seller)
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return res, fmt.Errorf("seed product %q: bad price: %w", p.Name, err)
		}
		prod := domain.Product{Name: p.Name, Price: price, SellUnit: p.Unit, Description: p.Description}
		if p.Category != "" {
			c, ok := cats[p.Category]
			if !ok {
				return res, fmt.Errorf("seed product %q: unknown category %s", p.Name, p.Category)
			}
			prod.Category = c
		}
		if _, err := products.Save(ctx, sellerID, prod, nil); err != nil {
			return res, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		res.Products++
	}

	logger.Info("seed applied",
		zap.Int("categories", res.Categories),
		zap.Int("users", res.Users),
		zap.Int("products", res.Products))
	return res, nil
}
