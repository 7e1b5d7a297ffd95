package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lewismosage/acna-sub000/internal/model"
	"github.com/lewismosage/acna-sub000/internal/repository"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users, "test-secret")
	ctx := context.Background()

	u, err := svc.Register(ctx, model.RegisterUserRequest{
		Name: "Ada Obi", Email: "Ada@Example.org", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ada@example.org" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.PasswordHash == "correct horse" || u.PasswordHash == "" {
		t.Error("password stored without hashing")
	}

	resp, err := svc.Login(ctx, model.LoginRequest{Email: "ada@example.org", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a signed token")
	}

	userID, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if userID != u.ID {
		t.Errorf("VerifyToken user id = %q, want %q", userID, u.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users, "test-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, model.RegisterUserRequest{
		Name: "Ada", Email: "ada@example.org", Password: "correct horse",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Login(ctx, model.LoginRequest{Email: "ada@example.org", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret")

	_, err := svc.Login(context.Background(), model.LoginRequest{Email: "nobody@example.org", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown accounts must look like bad credentials, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret")
	ctx := context.Background()

	cases := []model.RegisterUserRequest{
		{Name: "", Email: "a@b.co", Password: "longenough"},
		{Name: "Ada", Email: "not-an-email", Password: "longenough"},
		{Name: "Ada", Email: "a@b.co", Password: "short"},
	}
	for i, req := range cases {
		var ve ValidationError
		if _, err := svc.Register(ctx, req); !errors.As(err, &ve) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret")
	ctx := context.Background()

	req := model.RegisterUserRequest{Name: "Ada", Email: "ada@example.org", Password: "longenough"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestVerifyTokenRejectsForgeries(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthService(users, "test-secret")
	other := NewAuthService(users, "different-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, model.RegisterUserRequest{
		Name: "Ada", Email: "ada@example.org", Password: "correct horse",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	resp, err := other.Login(ctx, model.LoginRequest{Email: "ada@example.org", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.VerifyToken(resp.Token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("token signed with another secret must be rejected, got %v", err)
	}
	if _, err := svc.VerifyToken("not.a.token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("garbage token must be rejected, got %v", err)
	}
}
