package app

import (
	"context"

	"github.com/CrestNiraj12/feedline/domain"
)

// AccountService resolves accounts on the remote instance.
type AccountService interface {
	// VerifyCredentials returns the authenticated account.
	VerifyCredentials(ctx context.Context) (domain.Account, error)

	// AccountByID fetches an account by its id.
	AccountByID(ctx context.Context, id string) (domain.Account, error)

	// Lookup resolves a "user" or "user@domain" handle.
	Lookup(ctx context.Context, acct string) (domain.Account, error)
}
