package client

import (
	"context"
	"net/http"
	"time"
)

// Organization is the public projection returned by the API.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Type        string    `json:"type"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type loginResponse struct {
	Token          string `json:"token"`
	OrganizationID string `json:"organization_id"`
	ExpiresAt      string `json:"expires_at"`
}

type adminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// CoordinationConfig is the server-advertised client tuning.
type CoordinationConfig struct {
	PollIntervalSeconds int `json:"poll_interval_seconds"`
	ExpiringSoonDays    int `json:"expiring_soon_days"`
}

// Register creates a new organization account. It does not establish a
// session; call Login afterwards.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*Organization, error) {
	var org Organization
	if err := c.do(ctx, http.MethodPost, "/api/organizations/register", authNone, in, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// Login authenticates an organization and persists the resulting identity in
// the session store.
func (c *Client) Login(ctx context.Context, email, password string) (*Identity, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/organizations/login", authNone, body, &resp); err != nil {
		return nil, err
	}
	identity := Identity{
		OrganizationID: resp.OrganizationID,
		SessionToken:   resp.Token,
		UserID:         resp.OrganizationID,
	}
	if err := c.store.Establish(identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Logout revokes the server session and clears local credentials. Local
// state is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/organizations/logout", authSession, nil, nil)
	if clearErr := c.store.Clear(); clearErr != nil {
		return clearErr
	}
	return err
}

// AdminLogin authenticates with admin credentials and stores the bearer
// token for subsequent admin calls.
func (c *Client) AdminLogin(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var resp adminLoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", authNone, body, &resp); err != nil {
		return err
	}
	return c.store.Establish(Identity{AdminToken: resp.Token, UserID: username})
}

// FetchConfig retrieves the coordination settings the server advertises.
func (c *Client) FetchConfig(ctx context.Context) (*CoordinationConfig, error) {
	var cfg CoordinationConfig
	if err := c.do(ctx, http.MethodGet, "/api/config", authNone, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
