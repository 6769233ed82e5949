package mastodon

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/CrestNiraj12/feedline/app"
	"github.com/CrestNiraj12/feedline/domain"
)

// accountService implements app.AccountService using the Mastodon API.
type accountService struct {
	client *Client
}

// NewAccountService creates an AccountService backed by Mastodon.
func NewAccountService(client *Client) *accountService {
	return &accountService{client: client}
}

func (s *accountService) VerifyCredentials(ctx context.Context) (domain.Account, error) {
	return s.fetch(ctx, "/api/v1/accounts/verify_credentials", nil, "fetching account")
}

func (s *accountService) AccountByID(ctx context.Context, id string) (domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Account{}, fmt.Errorf("invalid account id")
	}
	return s.fetch(ctx, "/api/v1/accounts/"+url.PathEscape(id), nil, "fetching profile")
}

func (s *accountService) Lookup(ctx context.Context, acct string) (domain.Account, error) {
	acct = strings.TrimPrefix(strings.TrimSpace(acct), "@")
	if acct == "" {
		return domain.Account{}, fmt.Errorf("invalid account handle")
	}
	return s.fetch(ctx, "/api/v1/accounts/lookup", Query{}.Add("acct", acct), "looking up "+acct)
}

func (s *accountService) fetch(ctx context.Context, path string, q Query, what string) (domain.Account, error) {
	body, err := s.client.Get(ctx, path, q)
	if err != nil {
		return domain.Account{}, fmt.Errorf("%s: %w", what, err)
	}
	acct, err := NormalizeAccount(body)
	if err != nil {
		return domain.Account{}, fmt.Errorf("%s: %w", what, &ParseError{Context: "account", Err: err})
	}
	if acct == nil || acct.ID == "" {
		return domain.Account{}, fmt.Errorf("%s: %w", what, &ParseError{Context: "account", Err: fmt.Errorf("missing id")})
	}
	return *acct, nil
}

// ResolveAccountID returns ref unchanged when it already looks like an id and
// otherwise resolves it as a handle.
func ResolveAccountID(ctx context.Context, accounts app.AccountService, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("invalid account reference")
	}
	if isNumeric(ref) {
		return ref, nil
	}
	acct, err := accounts.Lookup(ctx, ref)
	if err != nil {
		return "", err
	}
	return acct.ID, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
