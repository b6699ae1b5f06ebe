// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"gatehouse/internal/domain/entity"
)

// ErrAccountNotFound is a domain-specific error returned when an account is not found.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository defines the standard operations for account persistence.
// The application layer will depend on this interface, not the concrete implementation.
type AccountRepository interface {
	// FindByEmailOrUsername retrieves a single account matching either field.
	// Used as the registration pre-check; returns ErrAccountNotFound when no account matches.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*entity.Account, error)

	// FindByUsername retrieves a single account by its username.
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)

	// Create persists a new account entity to the storage. The storage layer's
	// unique indexes on email and username are the authoritative uniqueness
	// guarantee: a violation surfaces as *domainerrors.ConflictError carrying
	// the conflicting field name.
	Create(ctx context.Context, account *entity.Account) error
}
