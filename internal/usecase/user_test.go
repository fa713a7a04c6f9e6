package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
	"github.com/kristinefung/personal-website-server/internal/infra/security"
)

func newUserServiceFixture(t *testing.T) (*UserService, *fakeUserRepo) {
	t.Helper()

	hasher, err := security.NewPasswordHasher(security.MinHashCost)
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}

	users := newFakeUserRepo()
	svc := NewUserService(users, hasher, security.NewPasswordPolicy(), nil, nil)
	return svc, users
}

func TestCreateUser(t *testing.T) {
	svc, users := newUserServiceFixture(t)

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "Alice@Example.com",
		Name:     "Alice",
		Password: "tr4v3ler-Blue9!",
	}, "admin-1")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if created.Email != "alice@example.com" {
		t.Errorf("expected normalised email, got %s", created.Email)
	}
	if created.Role != domain.RoleUser {
		t.Errorf("expected default role USER, got %s", created.Role)
	}
	if created.PasswordHash != "" || created.PasswordSalt != "" {
		t.Error("expected sanitized output without credential material")
	}
	if created.CreatedBy != "admin-1" {
		t.Errorf("expected audit attribution to admin-1, got %s", created.CreatedBy)
	}

	stored, err := users.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("stored user missing: %v", err)
	}
	if stored.PasswordHash == "" || len(stored.PasswordSalt) != security.SaltLength {
		t.Error("expected stored hash and fresh salt")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newUserServiceFixture(t)
	ctx := context.Background()

	input := CreateUserInput{Email: "alice@example.com", Name: "Alice", Password: "tr4v3ler-Blue9!"}
	if _, err := svc.CreateUser(ctx, input, "admin-1"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}

	if _, err := svc.CreateUser(ctx, input, "admin-1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateUserWeakPassword(t *testing.T) {
	svc, _ := newUserServiceFixture(t)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "password",
	}, "admin-1")
	if !errors.Is(err, security.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestCreateUserInvalidRole(t *testing.T) {
	svc, _ := newUserServiceFixture(t)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "tr4v3ler-Blue9!",
		Role:     domain.Role("WIZARD"),
	}, "admin-1")
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUpdateUserRotatesCredentials(t *testing.T) {
	svc, users := newUserServiceFixture(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "tr4v3ler-Blue9!",
	}, "admin-1")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	before, _ := users.GetByID(ctx, created.ID)

	newPassword := "w1nter-Gale$47"
	updated, err := svc.UpdateUser(ctx, created.ID, UpdateUserInput{Password: &newPassword}, "admin-2")
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.UpdatedBy != "admin-2" {
		t.Errorf("expected audit attribution to admin-2, got %s", updated.UpdatedBy)
	}

	after, _ := users.GetByID(ctx, created.ID)
	if after.PasswordSalt == before.PasswordSalt {
		t.Error("expected password rotation to generate a fresh salt")
	}
	if after.PasswordHash == before.PasswordHash {
		t.Error("expected password rotation to change the stored hash")
	}
}

func TestUpdateUserDuplicateEmail(t *testing.T) {
	svc, _ := newUserServiceFixture(t)
	ctx := context.Background()

	alice, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "tr4v3ler-Blue9!",
	}, "admin-1")
	if err != nil {
		t.Fatalf("CreateUser alice: %v", err)
	}
	if _, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "bob@example.com",
		Name:     "Bob",
		Password: "m0untain-Echo$3",
	}, "admin-1"); err != nil {
		t.Fatalf("CreateUser bob: %v", err)
	}

	taken := "Bob@Example.com"
	if _, err := svc.UpdateUser(ctx, alice.ID, UpdateUserInput{Email: &taken}, "admin-1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Resubmitting the user's own email is not a conflict.
	own := "alice@example.com"
	if _, err := svc.UpdateUser(ctx, alice.ID, UpdateUserInput{Email: &own}, "admin-1"); err != nil {
		t.Fatalf("UpdateUser with own email: %v", err)
	}
}

func TestDeleteUserIsSoft(t *testing.T) {
	svc, users := newUserServiceFixture(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "tr4v3ler-Blue9!",
	}, "admin-1")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := svc.DeleteUser(ctx, created.ID, "admin-1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := svc.GetUser(ctx, created.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}

	// The row survives with the deleted flag set.
	users.mu.Lock()
	stored, ok := users.users[created.ID]
	users.mu.Unlock()
	if !ok || !stored.Deleted {
		t.Fatal("expected soft-deleted row to remain")
	}

	if err := svc.DeleteUser(ctx, created.ID, "admin-1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
}
