package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

func TestUsers_CreateLookupAndRoles(t *testing.T) {
	db := newSchemaDB(t)
	ctx := context.Background()

	u := &domain.User{Email: "  Alice@Example.COM ", PasswordHash: "x", DisplayName: "Alice", IsActive: true}
	if err := CreateUser(ctx, db, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if err := CreateUser(ctx, db, &domain.User{Email: "ALICE@example.com", PasswordHash: "y"}); !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	admin, err := EnsureRole(ctx, db, domain.RoleAdmin, "administrators")
	if err != nil {
		t.Fatalf("EnsureRole: %v", err)
	}
	again, err := EnsureRole(ctx, db, domain.RoleAdmin, "ignored")
	if err != nil || again.ID != admin.ID || again.Description != "administrators" {
		t.Fatalf("EnsureRole should be idempotent: %v %+v", err, again)
	}

	if err := GrantRole(ctx, db, u.ID, admin.ID); err != nil {
		t.Fatalf("GrantRole: %v", err)
	}
	if err := GrantRole(ctx, db, u.ID, admin.ID); err != nil {
		t.Fatalf("GrantRole twice: %v", err)
	}

	got, err := GetUserByEmail(ctx, db, "ALICE@EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if !got.HasRole("admin") || len(got.Roles) != 1 {
		t.Fatalf("roles not loaded: %+v", got.Roles)
	}
	byID, err := GetUser(ctx, db, u.ID)
	if err != nil || byID.Email != u.Email {
		t.Fatalf("GetUser: %v %+v", err, byID)
	}

	if _, err := GetUserByEmail(ctx, db, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
