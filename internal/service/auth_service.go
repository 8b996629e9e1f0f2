package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"craftmart/internal/auth"
	"craftmart/internal/domain"
	"craftmart/internal/repository"
)

// ErrBadCredentials неверный телефон или пароль
var ErrBadCredentials = errors.New("bad credentials")

const minPasswordLen = 6

// AuthService регистрация, вход и профиль; токены подписываются общим секретом
type AuthService struct {
	users  repository.UserRepository
	secret string
	ttl    time.Duration
}

func NewAuthService(users repository.UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{users: users, secret: secret, ttl: ttl}
}

// Register создаёт пользователя и сразу выдаёт токен
func (s *AuthService) Register(ctx context.Context, u domain.User, password string) (string, error) {
	u.Name = strings.TrimSpace(u.Name)
	u.Phone = strings.TrimSpace(u.Phone)
	if u.Name == "" || u.Phone == "" || len(password) < minPasswordLen {
		return "", ErrInvalidInput
	}
	if u.Role == "" {
		u.Role = domain.RoleBuyer
	}
	if !u.Role.Valid() {
		return "", ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	u.ID = 0
	a := repository.Account{User: u, PasswordHash: hash}
	if err := s.users.Create(ctx, &a); err != nil {
		return "", err
	}
	return auth.Issue(a.User.ID, a.User.Role, s.secret, s.ttl)
}

func (s *AuthService) Login(ctx context.Context, phone, password string) (string, error) {
	a, err := s.users.GetByPhone(ctx, strings.TrimSpace(phone))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) != nil {
		return "", ErrBadCredentials
	}
	return auth.Issue(a.User.ID, a.User.Role, s.secret, s.ttl)
}

// Authenticate проверяет bearer-токен
func (s *AuthService) Authenticate(token string) (*auth.Claims, error) {
	return auth.Verify(token, s.secret)
}

func (s *AuthService) Profile(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	a, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &a.User, nil
}

// UpdateProfile сохраняет профиль владельца токена и выдаёт новый токен,
// так как роль могла измениться. Телефон и пароль здесь не меняются.
func (s *AuthService) UpdateProfile(ctx context.Context, id int64, u domain.User) (string, error) {
	a, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(u.Name) != "" {
		a.User.Name = strings.TrimSpace(u.Name)
	}
	if u.Role != "" {
		if !u.Role.Valid() {
			return "", ErrInvalidInput
		}
		a.User.Role = u.Role
	}
	a.User.Address = u.Address
	a.User.UserAdditional.CustomOrder = u.UserAdditional.CustomOrder
	if err := s.users.Update(ctx, a); err != nil {
		return "", err
	}
	return auth.Issue(a.User.ID, a.User.Role, s.secret, s.ttl)
}
