// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for accounts and
// roles.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// CreateUser inserts u. The email is stored lowercase.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Omit("Roles").Create(u).Error
}

// GetUserByEmail fetches a user (with roles) by case-insensitive email.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("Roles").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches a user (with roles) by id.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Preload("Roles").Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureRole returns the role named name, creating it when missing.
func EnsureRole(ctx context.Context, db *gorm.DB, name, description string) (*domain.Role, error) {
	r := domain.Role{Name: name}
	err := db.WithContext(ctx).
		Where("name = ?", name).
		Attrs(domain.Role{Description: description, CreatedAt: time.Now().UTC()}).
		FirstOrCreate(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GrantRole links userID to roleID. Granting an existing role is a no-op.
func GrantRole(ctx context.Context, db *gorm.DB, userID, roleID uint) error {
	ur := domain.UserRole{UserID: userID, RoleID: roleID, GrantedAt: time.Now().UTC()}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ur).Error
}
