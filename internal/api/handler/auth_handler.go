package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deckshop/storefront/internal/api/metrics"
	"github.com/deckshop/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	metrics     *metrics.Recorder
}

func NewAuthHandler(authService ports.AuthService, rec *metrics.Recorder) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: rec}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup creates a customer account and starts a session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		h.metrics.AuthAttempt("signup", false)
		return err
	}

	result, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	h.metrics.AuthAttempt("signup", err == nil)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		h.metrics.AuthAttempt("login", false)
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	h.metrics.AuthAttempt("login", err == nil)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuthResponse(result))
}
