package response

import (
	"net/http"

	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AccountView is the sanitized representation of an account returned to
// clients. It never carries the password hash.
type AccountView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// NewAccountView maps a domain account to its client-facing view.
func NewAccountView(account *entity.Account) AccountView {
	return AccountView{
		ID:       account.ID,
		Email:    account.Email,
		Username: account.Username,
	}
}

// RegisteredBody is the success body for account registration.
type RegisteredBody struct {
	Message string      `json:"message"`
	User    AccountView `json:"user"`
}

// ErrorBody is the failure body shared by all error responses. Errors is
// populated only for validation failures, Error only for server errors.
type ErrorBody struct {
	Message string                    `json:"message"`
	Errors  []domainerrors.FieldError `json:"errors,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

// Registered writes the 201 response for a newly created account.
func Registered(c echo.Context, account *entity.Account) error {
	return c.JSON(http.StatusCreated, RegisteredBody{
		Message: "User registered successfully",
		User:    NewAccountView(account),
	})
}

// Error writes a client error response with the given status and message.
func Error(c echo.Context, statusCode int, message string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, ErrorBody{Message: message})
}

// ValidationFailed writes a 400 response itemizing every violated field.
func ValidationFailed(c echo.Context, fields []domainerrors.FieldError) error {
	return c.JSON(http.StatusBadRequest, ErrorBody{
		Message: "Invalid input",
		Errors:  fields,
	})
}

// BindingError writes a 400 response for requests whose body could not be decoded.
func BindingError(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// ServerError writes a 500 response carrying a diagnostic message.
func ServerError(c echo.Context, message, details string) error {
	if message == "" {
		message = "Internal server error"
	}

	return c.JSON(http.StatusInternalServerError, ErrorBody{
		Message: message,
		Error:   details,
	})
}
