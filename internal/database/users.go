package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-jewel-billing/internal/models"

	"gorm.io/gorm"
)

var ErrUserExists = errors.New("user already exists")

// UserByUsername looks a user up for login.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CreateUser stores a user with an already hashed password. The first user
// of a fresh database is made admin regardless of role.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, role string) (*models.User, error) {
	user := models.User{
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		Role:         role,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if count == 0 {
			user.Role = "admin"
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
