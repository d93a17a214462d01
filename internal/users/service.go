package users

import (
	"context"
	"errors"
	"time"

	"github.com/vedicroots/vedicroots/backend/cms-services/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
)

// Service encapsulates editor-account business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Authenticate verifies the email/password pair and returns the user.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials so the
// caller cannot distinguish them.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrAccountInactive
	}
	now := time.Now().UTC()
	_ = s.repo.TouchLogin(ctx, u.ID, now)
	u.LastLoginAt = &now
	return u, nil
}

// UpdatePassword replaces the stored credential after verifying the current
// one. A mismatched current password returns (false, nil) so handlers can map
// it to a generic 400 without leaking which check failed.
func (s *Service) UpdatePassword(ctx context.Context, id, current, next string) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, string(hash)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// HashPassword is used by seeding code to create credential hashes.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
