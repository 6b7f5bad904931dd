// Package client is the Go SDK for the foodbridge coordination API. It
// mirrors the browser client's responsibilities: session holding, catalog
// views, the request lifecycle coordinator, and profile management.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Confirmer gates destructive or binding operations behind an explicit user
// confirmation. Implementations may prompt interactively; tests stub it.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// AutoConfirm approves every prompt. Useful for scripted use.
var AutoConfirm = ConfirmerFunc(func(string) bool { return true })

// ErrConfirmationDeclined is returned when the user declines a confirmation
// prompt; the operation is never issued.
var ErrConfirmationDeclined = fmt.Errorf("confirmation declined")

// APIError is a non-2xx response decoded into the server's error envelope.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d %s): %s", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

// FieldError is a client-side validation failure. No network call was made.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithSessionStore(store SessionStore) Option {
	return func(c *Client) { c.store = store }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithConfirmer(confirmer Confirmer) Option {
	return func(c *Client) { c.confirm = confirmer }
}

type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore
	log     *zap.Logger
	confirm Confirmer
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   NewMemoryStore(),
		log:     zap.NewNop(),
		confirm: AutoConfirm,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sessions exposes the underlying session store.
func (c *Client) Sessions() SessionStore {
	return c.store
}

type authMode int

const (
	authNone authMode = iota
	authSession
	authAdmin
)

func (c *Client) do(ctx context.Context, method, path string, auth authMode, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", ulid.Make().String())

	switch auth {
	case authSession:
		identity, err := c.store.Current()
		if err != nil {
			return err
		}
		if !identity.IsOrg() {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+identity.SessionToken)
	case authAdmin:
		identity, err := c.store.Current()
		if err != nil {
			return err
		}
		if !identity.IsAdmin() {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+identity.AdminToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Type = envelope.Error.Type
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
