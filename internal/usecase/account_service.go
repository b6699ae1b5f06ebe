// Package usecase contains the implementation of the application's business logic.
package usecase

import (
	"context"
	"log/slog"

	deliverycontext "gatehouse/internal/delivery/context"
	"gatehouse/internal/domain/entity"
	domainerrors "gatehouse/internal/domain/errors"
	"gatehouse/internal/domain/repository"
	"gatehouse/internal/domain/service"

	"github.com/pkg/errors"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	accounts     repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(
	accounts repository.AccountRepository,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	logger *slog.Logger,
) AccountUsecase {
	return &accountService{
		accounts:     accounts,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerFrom(ctx, srv.logger)
}

// Register orchestrates the complete account registration process:
// conflict pre-check, password hashing, persistence.
func (srv *accountService) Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	srv.log(ctx).Info("Starting account registration", "email", input.Email, "username", input.Username)

	// 1. Pre-check for an existing account sharing the email or username.
	// Best-effort only: the unique indexes catch whatever races past it.
	_, err := srv.accounts.FindByEmailOrUsername(ctx, input.Email, input.Username)
	if err == nil {
		// If no error, a matching account was found.
		return nil, domainerrors.ErrAccountAlreadyExists.WrapMessage("account registration failed")
	}
	// We expect a 'not found' error. If it's a different error, something went wrong.
	if !errors.Is(err, repository.ErrAccountNotFound) {
		srv.log(ctx).Error("Failed to run registration pre-check", "error", err, "email", input.Email)

		return nil, errors.Wrap(domainerrors.ErrRegistrationFailed.WithDetails(err.Error()), "registration pre-check")
	}

	// 2. Hash the password. The plaintext never reaches the repository.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", "error", err)

		return nil, errors.Wrap(domainerrors.ErrRegistrationFailed.WithDetails(err.Error()), "failed to hash password")
	}

	// 3. Persist the new account.
	newAccount := &entity.Account{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hashedPassword,
	}

	if err := srv.accounts.Create(ctx, newAccount); err != nil {
		var conflict *domainerrors.ConflictError
		if errors.As(err, &conflict) {
			// Race not caught by the pre-check; the index names the loser's field.
			srv.log(ctx).Warn("Registration lost uniqueness race", "field", conflict.Field(), "username", input.Username)

			return nil, err
		}

		srv.log(ctx).Error("Failed to persist account", "error", err, "email", input.Email)

		return nil, errors.Wrap(domainerrors.ErrRegistrationFailed.WithDetails(err.Error()), "failed to persist account")
	}

	srv.log(ctx).Debug("Account registered successfully", "accountID", newAccount.ID)

	return &RegisterOutput{Account: newAccount}, nil
}

// Login orchestrates the account login process: lookup, password verification,
// token issuance.
func (srv *accountService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	srv.log(ctx).Debug("Starting account login", "username", input.Username)

	// 1. Find the account. An unknown username yields the same error as a
	// wrong password so responses don't reveal which accounts exist.
	account, err := srv.accounts.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			srv.log(ctx).Warn("Login failed", "username", input.Username)

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}

		srv.log(ctx).Error("Failed to look up account during login", "error", err, "username", input.Username)

		return nil, errors.Wrap(domainerrors.ErrLoginFailed.WithDetails(err.Error()), "failed to find account")
	}

	// 2. Check the password.
	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		srv.log(ctx).Warn("Login failed", "username", input.Username)

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	// 3. Issue the bearer token.
	token, err := srv.tokenService.IssueToken(account.ID, account.Email, account.Username)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token during login", "error", err, "accountID", account.ID)

		return nil, errors.Wrap(domainerrors.ErrTokenSignFailed.WithDetails(err.Error()), "failed to issue token")
	}

	srv.log(ctx).Debug("Account logged in successfully", "accountID", account.ID)

	return &LoginOutput{Token: token, Account: account}, nil
}
