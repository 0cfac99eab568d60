// Package users implements account registration and role management. A
// user's id doubles as their account in the token, registry and escrow
// ledgers, so creating a user is what brings a marketplace principal into
// existence.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lumen-backend/internal/capability"
	"lumen-backend/internal/constants"
	"lumen-backend/internal/domain"
	"lumen-backend/internal/pkg/apperrors"
	"lumen-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	DB   *gorm.DB
	Caps *capability.Checker
}

type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
}

// CreateUser registers a new account with the viewer role.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if in.Email == "" || !validation.IsValidEmail(in.Email) {
		return nil, fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
	}
	if in.Password == "" || !validation.IsValidPassword(in.Password) {
		return nil, fmt.Errorf("%w: invalid password format", apperrors.ErrValidation)
	}
	fullname := strings.TrimSpace(in.Fullname)
	if !validation.IsValidFullname(fullname) {
		return nil, fmt.Errorf("%w: invalid full name", apperrors.ErrValidation)
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	var existing domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrValidation)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		UserID:       uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Fullname:     fullname,
		Role:         constants.Viewer,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateRole changes a user's role. Role names outside the known set are
// rejected; the permission middleware restricts this to admins. The
// market-admin capability grant follows the role in the same transaction,
// so a demoted admin loses force-close and fee rights immediately.
func (s *Service) UpdateRole(ctx context.Context, userID uuid.UUID, role string) (*domain.User, error) {
	switch role {
	case constants.Viewer, constants.Trader, constants.Provider, constants.Admin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	var u domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
			}
			return err
		}
		u.Role = role
		if err := tx.Save(&u).Error; err != nil {
			return err
		}
		if role == constants.Admin {
			return s.Caps.Grant(tx, userID, domain.CapMarketAdmin)
		}
		return s.Caps.Revoke(tx, userID, domain.CapMarketAdmin)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ViewUser returns the user with the given id.
func (s *Service) ViewUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
		}
		return nil, err
	}
	return &u, nil
}
