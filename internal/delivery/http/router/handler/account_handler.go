// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "gatehouse/internal/delivery/context"
	"gatehouse/internal/delivery/http/response"
	"gatehouse/internal/domain/service"
	"gatehouse/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// registerRequest is the validated input for POST /user/register.
// Lengths are checked post-trim; the handler normalizes before validating.
type registerRequest struct {
	Email    string `json:"email" form:"email" validate:"required,min=5,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Username string `json:"username" form:"username" validate:"required,min=3"`
}

// loginRequest is the validated input for POST /user/login.
type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3"`
	Password string `json:"password" form:"password" validate:"required,min=5"`
}

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	uc       usecase.AccountUsecase
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, tokenSvc service.TokenService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:       uc,
		tokenSvc: tokenSvc,
		logger:   logger,
	}
}

// RegisterForm renders the registration form.
func (h *AccountHandler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", nil)
}

// LoginForm renders the login form.
func (h *AccountHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", nil)
}

// Register handles the account registration request.
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid registration input")
	}

	input := &usecase.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}
	input.Normalize()

	// Validate the normalized values so length checks apply post-trim.
	req.Email, req.Username, req.Password = input.Email, input.Username, input.Password
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	// The response carries the sanitized account view, never the hash.
	return response.Registered(c, output.Account)
}

// Login handles the account login request. On success the issued token is set
// as the outbound credential cookie and the body is a plain success indicator.
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid login input")
	}

	input := &usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}
	input.Normalize()

	req.Username, req.Password = input.Username, input.Password
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     deliverycontext.CookieToken,
		Value:    output.Token,
		Path:     "/",
		MaxAge:   int(h.tokenSvc.TokenTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.String(http.StatusOK, "Logged in successfully")
}

// Profile returns the identity claims of the authenticated account.
func (h *AccountHandler) Profile(c echo.Context) error {
	accountID, ok := c.Get("accountID").(uuid.UUID)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "Invalid account ID in token")
	}

	email, _ := c.Get("email").(string)
	username, _ := c.Get("username").(string)

	return c.JSON(http.StatusOK, response.AccountView{
		ID:       accountID,
		Email:    email,
		Username: username,
	})
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
