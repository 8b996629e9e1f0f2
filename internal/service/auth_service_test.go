package service

import (
	"context"
	"errors"
	"testing"

	"craftmart/internal/domain"
	"craftmart/internal/repository"
)

func TestAuth_RegisterLogin(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	id := f.user(t, "9000", domain.RoleBuyer, false)

	tok, err := f.auth.Login(ctx, "9000", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	c, err := f.auth.Authenticate(tok)
	if err != nil || c.UserID != id || c.Role != domain.RoleBuyer {
		t.Fatalf("claims: %+v %v", c, err)
	}
	if _, err := f.auth.Login(ctx, "9000", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := f.auth.Login(ctx, "nobody", "secret1"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown phone: %v", err)
	}
}

func TestAuth_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	if _, err := f.auth.Register(ctx, domain.User{Name: "a", Phone: "1"}, "123"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short password: %v", err)
	}
	if _, err := f.auth.Register(ctx, domain.User{Name: "a", Phone: "1", Role: "admin"}, "123456"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad role: %v", err)
	}
	f.user(t, "1", domain.RoleBuyer, false)
	if _, err := f.auth.Register(ctx, domain.User{Name: "b", Phone: "1"}, "123456"); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate phone: %v", err)
	}
}

func TestAuth_UpdateProfileReissuesToken(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	id := f.user(t, "1", domain.RoleBuyer, false)

	tok, err := f.auth.UpdateProfile(ctx, id, domain.User{
		Role:           domain.RoleBoth,
		Address:        domain.Address{City: "Jaipur"},
		UserAdditional: domain.UserAdditional{CustomOrder: true},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	c, _ := f.auth.Authenticate(tok)
	if c.Role != domain.RoleBoth {
		t.Fatalf("role not in new token: %s", c.Role)
	}
	u, _ := f.auth.Profile(ctx, id)
	if u.City != "Jaipur" || !u.AcceptsCustomOrders() || u.Name != "u1" {
		t.Fatalf("profile: %+v", u)
	}
}
