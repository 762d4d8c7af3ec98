// Package services – AuthService
//
// This file implements accounts: registration with bcrypt password hashes,
// login returning a signed bearer token, profile lookup and the startup seed
// of roles and demo accounts.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/auth"
	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	minPasswordRunes   = 6
	maxDisplayNameRune = 100
)

// AuthService manages accounts and issues access tokens.
type AuthService struct {
	DB     *gorm.DB
	Tokens *auth.JWTManager

	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

// LoginResult is a successful login.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

func (s *AuthService) hash(password string) (string, error) {
	cost := s.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") || len(email) > 255 {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Register creates an account with the User role.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Register")
	defer span.End()

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return nil, ErrWeakPassword
	}
	displayName = strings.TrimSpace(displayName)
	if r := []rune(displayName); len(r) > maxDisplayNameRune {
		displayName = string(r[:maxDisplayNameRune])
	}
	return s.createAccount(ctx, email, password, displayName, domain.RoleUser)
}

func (s *AuthService) createAccount(ctx context.Context, email, password, displayName, role string) (*domain.User, error) {
	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{Email: email, PasswordHash: hash, DisplayName: displayName, IsActive: true}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateUser(ctx, tx, u); err != nil {
			return err
		}
		r, err := repo.EnsureRole(ctx, tx, role, roleDescription(role))
		if err != nil {
			return err
		}
		if err := repo.GrantRole(ctx, tx, u.ID, r.ID); err != nil {
			return err
		}
		u.Roles = []domain.Role{*r}
		return nil
	})
	if repo.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Login")
	defer span.End()

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	span.SetAttributes(attribute.Int("user.id", int(u.ID)))

	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = r.Name
	}
	token, exp, err := s.Tokens.Issue(u.ID, u.Email, roles)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// Me returns the account behind userID.
func (s *AuthService) Me(ctx context.Context, userID uint) (*domain.User, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Me", trace.WithAttributes(attribute.Int("user.id", int(userID))))
	defer span.End()

	u, err := repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// SeedAccount is an account created by Seed when missing.
type SeedAccount struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
}

// DefaultSeedAccounts are the demo accounts of a fresh install.
var DefaultSeedAccounts = []SeedAccount{
	{Email: "admin@surveyweb.local", Password: "Admin@123", DisplayName: "Administrator", Role: domain.RoleAdmin},
	{Email: "user@surveyweb.local", Password: "User@123", DisplayName: "Demo User", Role: domain.RoleUser},
}

// Seed creates the Admin and User roles and every missing account. Existing
// accounts are left untouched.
func (s *AuthService) Seed(ctx context.Context, accounts []SeedAccount, log zerolog.Logger) error {
	for _, name := range []string{domain.RoleAdmin, domain.RoleUser} {
		if _, err := repo.EnsureRole(ctx, s.DB, name, roleDescription(name)); err != nil {
			return err
		}
	}
	for _, a := range accounts {
		_, err := s.createAccount(ctx, strings.ToLower(a.Email), a.Password, a.DisplayName, a.Role)
		switch {
		case errors.Is(err, ErrEmailTaken):
			continue
		case err != nil:
			return err
		}
		log.Info().Str("email", a.Email).Str("role", a.Role).Msg("seeded account")
	}
	return nil
}

func roleDescription(name string) string {
	switch name {
	case domain.RoleAdmin:
		return "Full access"
	case domain.RoleUser:
		return "Survey author"
	}
	return ""
}
