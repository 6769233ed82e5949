package mastodon

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/CrestNiraj12/feedline/domain"
)

// ErrRequestFailed is matched by every Gateway failure, so callers that only
// care about "it failed" can test one value.
var ErrRequestFailed = errors.New("request failed")

// ErrNotRecord is returned by the normalizer for input that is not a JSON object.
var ErrNotRecord = errors.New("record is not an object")

// NetworkError is a transport failure before any response arrived.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrRequestFailed }

// HTTPStatusError is a non-2xx response. Message is the server-supplied
// error text when the body decoded, otherwise the status text.
type HTTPStatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("API %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *HTTPStatusError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case domain.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// ParseError is a body (or streaming payload) that is not valid JSON of the
// expected shape.
type ParseError struct {
	Context string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Context, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrRequestFailed }
