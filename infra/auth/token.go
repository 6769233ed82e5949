package auth

import (
	"fmt"
	"os"
	"strings"
)

// TokenProvider supplies an access token for API authentication. An empty
// token with a nil error means the request is sent anonymously.
type TokenProvider interface {
	AccessToken() (string, error)
}

// FileTokenProvider reads a bearer token from a file on disk.
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a TokenProvider that reads from the given file path.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// AccessToken reads and returns the token, trimming whitespace.
func (f *FileTokenProvider) AccessToken() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("reading token from %s: %w", f.path, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.path)
	}

	return token, nil
}

// StaticToken is a fixed token, e.g. taken from the environment.
type StaticToken string

func (s StaticToken) AccessToken() (string, error) { return strings.TrimSpace(string(s)), nil }

// Anonymous sends requests without credentials. Public and hashtag timelines
// work this way on most instances.
type Anonymous struct{}

func (Anonymous) AccessToken() (string, error) { return "", nil }

// FromSettings picks a provider: an explicit token wins over a token file,
// and neither means anonymous access.
func FromSettings(token, tokenPath string) TokenProvider {
	if strings.TrimSpace(token) != "" {
		return StaticToken(token)
	}
	if strings.TrimSpace(tokenPath) != "" {
		return NewFileTokenProvider(tokenPath)
	}
	return Anonymous{}
}
