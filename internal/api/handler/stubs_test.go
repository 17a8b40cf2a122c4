package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deckshop/storefront/internal/api/middleware"
	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

type stubAuthService struct {
	signupFn    func(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error)
	loginFn     func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error)
	meFn        func(ctx context.Context, actor *domain.Identity) (*domain.User, error)
	updateFn    func(ctx context.Context, actor *domain.Identity, in ports.ProfileUpdate) (*ports.AuthResult, error)
	listUsersFn func(ctx context.Context, actor *domain.Identity) ([]*domain.User, error)
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Me(ctx context.Context, actor *domain.Identity) (*domain.User, error) {
	return s.meFn(ctx, actor)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, actor *domain.Identity, in ports.ProfileUpdate) (*ports.AuthResult, error) {
	return s.updateFn(ctx, actor, in)
}

func (s *stubAuthService) ListUsers(ctx context.Context, actor *domain.Identity) ([]*domain.User, error) {
	return s.listUsersFn(ctx, actor)
}

type stubCatalogService struct {
	listFn   func(ctx context.Context, q ports.ProductQuery) ([]*domain.Product, error)
	getFn    func(ctx context.Context, id string) (*domain.Product, error)
	createFn func(ctx context.Context, actor *domain.Identity, in ports.ProductInput) (*domain.Product, error)
	updateFn func(ctx context.Context, actor *domain.Identity, id string, patch ports.ProductPatch) (*domain.Product, error)
	deleteFn func(ctx context.Context, actor *domain.Identity, id string) (*domain.Product, error)
	values   []string
}

func (s *stubCatalogService) List(ctx context.Context, q ports.ProductQuery) ([]*domain.Product, error) {
	return s.listFn(ctx, q)
}

func (s *stubCatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) Create(ctx context.Context, actor *domain.Identity, in ports.ProductInput) (*domain.Product, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubCatalogService) Update(ctx context.Context, actor *domain.Identity, id string, patch ports.ProductPatch) (*domain.Product, error) {
	return s.updateFn(ctx, actor, id, patch)
}

func (s *stubCatalogService) Delete(ctx context.Context, actor *domain.Identity, id string) (*domain.Product, error) {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubCatalogService) Categories(context.Context) ([]string, error) { return s.values, nil }

func (s *stubCatalogService) Brands(context.Context) ([]string, error) { return s.values, nil }

type stubOrderService struct {
	submitFn   func(ctx context.Context, actor *domain.Identity, in ports.SubmitOrderInput) (*ports.SubmitOrderResult, error)
	getFn      func(ctx context.Context, actor *domain.Identity, id string) (*domain.Order, error)
	listFn     func(ctx context.Context, actor *domain.Identity, in ports.ListOrdersInput) (*ports.ListOrdersResult, error)
	listMineFn func(ctx context.Context, actor *domain.Identity, in ports.ListOrdersInput) (*ports.ListOrdersResult, error)
	quoteFn    func(ctx context.Context, items []ports.OrderItemInput) (*ports.Quote, error)
}

func (s *stubOrderService) Submit(ctx context.Context, actor *domain.Identity, in ports.SubmitOrderInput) (*ports.SubmitOrderResult, error) {
	return s.submitFn(ctx, actor, in)
}

func (s *stubOrderService) Get(ctx context.Context, actor *domain.Identity, id string) (*domain.Order, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubOrderService) List(ctx context.Context, actor *domain.Identity, in ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	return s.listFn(ctx, actor, in)
}

func (s *stubOrderService) ListMine(ctx context.Context, actor *domain.Identity, in ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	return s.listMineFn(ctx, actor, in)
}

func (s *stubOrderService) Quote(ctx context.Context, items []ports.OrderItemInput) (*ports.Quote, error) {
	return s.quoteFn(ctx, items)
}

var (
	customer = &domain.Identity{ID: "u1", Email: "dj@deck.shop", Name: "DJ", Role: domain.RoleUser}
	admin    = &domain.Identity{ID: "a1", Email: "admin@deck.shop", Name: "Admin", Role: domain.RoleAdmin}
)

// newTestContext builds an echo context with the validator installed and,
// when identity is non-nil, the caller already authenticated.
func newTestContext(method, target, body string, identity *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		middleware.SetIdentity(c, identity)
	}
	return c, rec
}
