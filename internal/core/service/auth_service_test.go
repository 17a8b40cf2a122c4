package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

func newAuthSvc(repo *stubUserRepo) (*AuthService, *TokenService) {
	tokens := NewTokenService("secret", time.Hour)
	return NewAuthService(repo, tokens, fastHasher(), discardLogger), tokens
}

func TestAuthService_Signup_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newAuthSvc(repo)

	res, err := svc.Signup(context.Background(), ports.SignupInput{Name: "A", Email: " A@B.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if res.User.Email != "A@B.com" {
		t.Errorf("expected trimmed email with its casing kept, got %q", res.User.Email)
	}
	if res.User.Role != domain.RoleUser {
		t.Errorf("expected role user, got %q", res.User.Role)
	}
	if res.User.PasswordHash == "secret1" || !fastHasher().Compare(res.User.PasswordHash, "secret1") {
		t.Error("password must be stored as a matching hash")
	}

	id, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id.ID != res.User.ID {
		t.Errorf("token subject %q != user id %q", id.ID, res.User.ID)
	}
}

func TestAuthService_Signup_DuplicateEmailAnyCase(t *testing.T) {
	svc, _ := newAuthSvc(newStubUserRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, ports.SignupInput{Name: "A", Email: "a@b.com", Password: "secret1"}); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	for _, email := range []string{"a@b.com", "A@B.COM", "  a@B.com"} {
		_, err := svc.Signup(ctx, ports.SignupInput{Name: "B", Email: email, Password: "secret2"})
		if !errors.Is(err, domain.ErrEmailTaken) {
			t.Errorf("signup with %q: expected ErrEmailTaken, got %v", email, err)
		}
	}
}

func TestAuthService_Signup_Validation(t *testing.T) {
	svc, _ := newAuthSvc(newStubUserRepo())

	_, err := svc.Signup(context.Background(), ports.SignupInput{Email: "nope", Password: "123"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected error to unwrap to ErrValidation")
	}
	if len(verr.Details) != 3 {
		t.Errorf("expected 3 details, got %v", verr.Details)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newAuthSvc(newStubUserRepo())
	ctx := context.Background()
	if _, err := svc.Signup(ctx, ports.SignupInput{Name: "A", Email: "a@b.com", Password: "secret1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	res, err := svc.Login(ctx, ports.LoginInput{Email: "A@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token == "" {
		t.Error("expected token")
	}

	cases := []ports.LoginInput{
		{Email: "a@b.com", Password: "wrong!"},
		{Email: "missing@b.com", Password: "secret1"},
		{Email: "", Password: ""},
	}
	for _, in := range cases {
		if _, err := svc.Login(ctx, in); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("Login(%+v): expected ErrInvalidCredentials, got %v", in, err)
		}
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, _ := newAuthSvc(newStubUserRepo())
	ctx := context.Background()
	res, _ := svc.Signup(ctx, ports.SignupInput{Name: "A", Email: "a@b.com", Password: "secret1"})

	user, err := svc.Me(ctx, &domain.Identity{ID: res.User.ID})
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Errorf("unexpected user: %+v", user)
	}

	if _, err := svc.Me(ctx, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_UpdateProfile_RefreshesToken(t *testing.T) {
	svc, tokens := newAuthSvc(newStubUserRepo())
	ctx := context.Background()
	res, _ := svc.Signup(ctx, ports.SignupInput{Name: "A", Email: "a@b.com", Password: "secret1"})
	actor := &domain.Identity{ID: res.User.ID, Role: domain.RoleUser}

	updated, err := svc.UpdateProfile(ctx, actor, ports.ProfileUpdate{
		Name:     strPtr("Alice"),
		Email:    strPtr("Alice@Example.com"),
		Password: strPtr("newsecret"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.User.Name != "Alice" || updated.User.Email != "Alice@Example.com" {
		t.Errorf("unexpected user: %+v", updated.User)
	}
	if updated.User.Role != domain.RoleUser {
		t.Errorf("role must not change, got %q", updated.User.Role)
	}

	id, err := tokens.Verify(updated.Token)
	if err != nil {
		t.Fatalf("refreshed token does not verify: %v", err)
	}
	if id.Email != "Alice@Example.com" || id.Name != "Alice" {
		t.Errorf("refreshed token carries stale claims: %+v", id)
	}

	if _, err := svc.Login(ctx, ports.LoginInput{Email: "alice@example.com", Password: "newsecret"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}

func TestAuthService_UpdateProfile_EmailConflict(t *testing.T) {
	svc, _ := newAuthSvc(newStubUserRepo())
	ctx := context.Background()
	first, _ := svc.Signup(ctx, ports.SignupInput{Name: "A", Email: "a@b.com", Password: "secret1"})
	if _, err := svc.Signup(ctx, ports.SignupInput{Name: "C", Email: "c@d.com", Password: "secret1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, err := svc.UpdateProfile(ctx, &domain.Identity{ID: first.User.ID}, ports.ProfileUpdate{Email: strPtr("C@D.com")})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Re-submitting the current email is not a conflict.
	if _, err := svc.UpdateProfile(ctx, &domain.Identity{ID: first.User.ID}, ports.ProfileUpdate{Email: strPtr("a@b.com")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthService_EmailKeepsCasing(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo)
	ctx := context.Background()
	res, err := svc.Signup(ctx, ports.SignupInput{Name: "M", Email: "Mix@Deck.Shop", Password: "secret1"})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	actor := &domain.Identity{ID: res.User.ID}

	if u, _ := svc.Me(ctx, actor); u.Email != "Mix@Deck.Shop" {
		t.Errorf("Me rewrote the email: %q", u.Email)
	}
	if _, err := svc.Login(ctx, ports.LoginInput{Email: "mix@deck.shop", Password: "secret1"}); err != nil {
		t.Errorf("login must ignore case: %v", err)
	}

	// Changing only the casing of one's own email is allowed and stored as typed.
	updated, err := svc.UpdateProfile(ctx, actor, ports.ProfileUpdate{Email: strPtr("MIX@deck.shop")})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.User.Email != "MIX@deck.shop" {
		t.Errorf("expected recased email, got %q", updated.User.Email)
	}
	users, _ := svc.ListUsers(ctx, &domain.Identity{ID: "root", Role: domain.RoleAdmin})
	if len(users) != 1 || users[0].Email != "MIX@deck.shop" {
		t.Errorf("unexpected users: %+v", users)
	}
}

func TestAuthService_UpdateProfile_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo)
	ctx := context.Background()
	res, _ := svc.Signup(ctx, ports.SignupInput{Name: "A", Email: "a@b.com", Password: "secret1"})

	_, err := svc.UpdateProfile(ctx, &domain.Identity{ID: res.User.ID}, ports.ProfileUpdate{Name: strPtr(" "), Password: strPtr("123")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if repo.users[res.User.ID].Name != "A" {
		t.Error("rejected update must not be persisted")
	}
}

func TestAuthService_ListUsers_AdminOnly(t *testing.T) {
	svc, _ := newAuthSvc(newStubUserRepo())
	ctx := context.Background()
	_, _ = svc.Signup(ctx, ports.SignupInput{Name: "A", Email: "a@b.com", Password: "secret1"})

	if _, err := svc.ListUsers(ctx, customer); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ListUsers(ctx, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	users, err := svc.ListUsers(ctx, admin)
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newAuthSvc(repo)
	ctx := context.Background()

	if u, err := svc.EnsureAdmin(ctx, "", "", ""); u != nil || err != nil {
		t.Fatalf("empty email should be a no-op, got %v %v", u, err)
	}

	created, err := svc.EnsureAdmin(ctx, "Root", "Root@Example.com", "rootpass")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if created.Role != domain.RoleAdmin || created.Email != "Root@Example.com" {
		t.Fatalf("unexpected admin: %+v", created)
	}

	again, err := svc.EnsureAdmin(ctx, "Root", "root@example.com", "rootpass")
	if err != nil || again.ID != created.ID {
		t.Fatalf("second call should return the same admin, got %v %v", again, err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(repo.users))
	}
}

func TestAuthService_EnsureAdmin_PromotesExisting(t *testing.T) {
	svc, _ := newAuthSvc(newStubUserRepo())
	ctx := context.Background()
	res, _ := svc.Signup(ctx, ports.SignupInput{Name: "A", Email: "a@b.com", Password: "secret1"})

	promoted, err := svc.EnsureAdmin(ctx, "", "a@b.com", "")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if promoted.ID != res.User.ID || promoted.Role != domain.RoleAdmin {
		t.Fatalf("expected existing user promoted, got %+v", promoted)
	}
}
