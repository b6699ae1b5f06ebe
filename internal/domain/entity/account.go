// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the sole persisted entity in the system, representing a registered
// identity. Both Email and Username are normalized (trimmed, lowercased) before
// an Account is constructed, and each is unique across all accounts.
type Account struct {
	ID           uuid.UUID // The unique identifier for the account, assigned at creation.
	Email        string    // The account's contact address, normalized to lowercase.
	Username     string    // The account's identity handle, normalized to lowercase.
	PasswordHash string    // The bcrypt hash of the account's secret. Never the plaintext.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this account.
}
