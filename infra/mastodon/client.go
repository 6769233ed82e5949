package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/CrestNiraj12/feedline/infra/auth"
	"github.com/CrestNiraj12/feedline/infra/logging"
)

// Param is one query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters. Unlike url.Values it keeps
// insertion order when encoded.
type Query []Param

// Add appends a parameter and returns the extended query.
func (q Query) Add(key, value string) Query {
	return append(q, Param{Key: key, Value: value})
}

// AddIf appends the parameter only when value is non-empty.
func (q Query) AddIf(key, value string) Query {
	if strings.TrimSpace(value) == "" {
		return q
	}
	return q.Add(key, value)
}

// Encode renders the query in insertion order, without a leading '?'.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Client is a thin HTTP wrapper for the Mastodon API.
// It handles base URL construction, bearer token injection and response
// classification.
type Client struct {
	baseURL       string
	tokenProvider auth.TokenProvider
	http          *http.Client
	log           zerolog.Logger
}

// NewClient creates a Mastodon API client. A nil token provider means
// anonymous access.
func NewClient(baseURL string, tp auth.TokenProvider) *Client {
	if tp == nil {
		tp = auth.Anonymous{}
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		tokenProvider: tp,
		http:          &http.Client{},
		log:           logging.Component("gateway"),
	}
}

// BaseURL returns the instance URL the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// AccessToken exposes the configured credential for transports that do not
// go through Request, such as the streaming connection.
func (c *Client) AccessToken() (string, error) { return c.tokenProvider.AccessToken() }

// Get performs a GET request and returns the decoded body.
func (c *Client) Get(ctx context.Context, path string, query Query) (any, error) {
	return c.Request(ctx, http.MethodGet, path, query)
}

// Request issues method against path with query appended in order. On success
// it returns the decoded JSON body (map[string]any, []any, scalar or nil for
// an empty body). Every failure is a *NetworkError, *HTTPStatusError or
// *ParseError, all of which match ErrRequestFailed.
func (c *Client) Request(ctx context.Context, method, path string, query Query) (any, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	token, err := c.tokenProvider.AccessToken()
	if err != nil {
		return nil, &NetworkError{Op: "auth", URL: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, &NetworkError{Op: "creating request", URL: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, &NetworkError{Op: method, URL: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "reading response", URL: path, Err: err}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Bool("authenticated", token != "").
		Dur("took", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp, data),
		}
	}

	return decodeBody(data, path)
}

func decodeBody(data []byte, path string) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, &ParseError{Context: "response from " + path, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Context: "response from " + path, Err: fmt.Errorf("trailing data after JSON value")}
	}
	return body, nil
}

// errorMessage extracts {"error": "..."} from a failure body, falling back to
// the HTTP status text.
func errorMessage(resp *http.Response, data []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return payload.Error
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
