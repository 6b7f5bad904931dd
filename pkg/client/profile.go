package client

import (
	"context"
	"net/http"
	"strings"
)

type ProfileUpdate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`
}

// Profile loads the authenticated organization's own record.
func (c *Client) Profile(ctx context.Context) (*Organization, error) {
	var org Organization
	if err := c.do(ctx, http.MethodGet, "/api/organizations/me", authSession, nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateProfile edits the caller's organization record. Name, email, phone
// and address are all required; validation runs before any request.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*Organization, error) {
	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"phone", in.Phone},
		{"address", in.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, &FieldError{Field: r.field, Message: "is required"}
		}
	}
	var org Organization
	if err := c.do(ctx, http.MethodPut, "/api/organizations/me", authSession, in, &org); err != nil {
		return nil, err
	}
	return &org, nil
}
