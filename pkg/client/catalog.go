package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Donation statuses as serialized by the API.
const (
	StatusAvailable = "AVAILABLE"
	StatusReserved  = "RESERVED"
	StatusCollected = "COLLECTED"
	StatusDelivered = "DELIVERED"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"
)

type Donation struct {
	ID                    string     `json:"id"`
	OrgID                 string     `json:"organization_id"`
	FoodType              string     `json:"food_type"`
	FoodName              string     `json:"food_name"`
	Quantity              string     `json:"quantity"`
	QuantityUnit          string     `json:"quantity_unit"`
	ExpiryDate            time.Time  `json:"expiry_date"`
	PickupAddress         string     `json:"pickup_address"`
	ContactPhone          string     `json:"contact_phone"`
	RefrigerationRequired bool       `json:"refrigeration_required"`
	Notes                 string     `json:"notes"`
	Status                string     `json:"status"`
	RequestedBy           *string    `json:"requested_by,omitempty"`
	RequestedAt           *time.Time `json:"requested_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type DonationInput struct {
	FoodType              string    `json:"food_type"`
	FoodName              string    `json:"food_name"`
	Quantity              string    `json:"quantity"`
	QuantityUnit          string    `json:"quantity_unit"`
	ExpiryDate            time.Time `json:"expiry_date"`
	PickupAddress         string    `json:"pickup_address"`
	ContactPhone          string    `json:"contact_phone"`
	RefrigerationRequired bool      `json:"refrigeration_required"`
	Notes                 string    `json:"notes"`
}

// validate checks the input locally. On failure no request is issued.
func (in DonationInput) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"food_type", in.FoodType},
		{"food_name", in.FoodName},
		{"quantity", in.Quantity},
		{"quantity_unit", in.QuantityUnit},
		{"pickup_address", in.PickupAddress},
		{"contact_phone", in.ContactPhone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &FieldError{Field: r.field, Message: "is required"}
		}
	}
	if in.ExpiryDate.IsZero() {
		return &FieldError{Field: "expiry_date", Message: "is required"}
	}
	return nil
}

// CreateDonation validates the input locally before issuing the request.
func (c *Client) CreateDonation(ctx context.Context, in DonationInput) (*Donation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var d Donation
	if err := c.do(ctx, http.MethodPost, "/api/donations", authSession, in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListMyDonations returns every donation posted by the current organization.
func (c *Client) ListMyDonations(ctx context.Context) ([]Donation, error) {
	var out []Donation
	if err := c.do(ctx, http.MethodGet, "/api/donations", authSession, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAvailableDonations returns AVAILABLE donations from other
// organizations. The caller's own postings never appear here.
func (c *Client) ListAvailableDonations(ctx context.Context) ([]Donation, error) {
	var out []Donation
	if err := c.do(ctx, http.MethodGet, "/api/donations/available", authSession, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpiringDonations returns the caller's donations expiring within the
// server-configured window.
func (c *Client) ListExpiringDonations(ctx context.Context) ([]Donation, error) {
	var out []Donation
	if err := c.do(ctx, http.MethodGet, "/api/donations/expiring", authSession, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDonation fetches a single donation by id.
func (c *Client) GetDonation(ctx context.Context, id string) (*Donation, error) {
	var d Donation
	if err := c.do(ctx, http.MethodGet, "/api/donations/"+id, authSession, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

type DonationUpdate struct {
	FoodType      *string    `json:"food_type,omitempty"`
	FoodName      *string    `json:"food_name,omitempty"`
	Quantity      *string    `json:"quantity,omitempty"`
	QuantityUnit  *string    `json:"quantity_unit,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	PickupAddress *string    `json:"pickup_address,omitempty"`
	ContactPhone  *string    `json:"contact_phone,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// UpdateDonation edits an AVAILABLE donation owned by the caller.
func (c *Client) UpdateDonation(ctx context.Context, id string, in DonationUpdate) (*Donation, error) {
	var d Donation
	if err := c.do(ctx, http.MethodPut, "/api/donations/"+id, authSession, in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CancelDonation withdraws an AVAILABLE donation after confirmation.
func (c *Client) CancelDonation(ctx context.Context, id string) (*Donation, error) {
	if !c.confirm.Confirm(fmt.Sprintf("Cancel donation %s?", id)) {
		return nil, ErrConfirmationDeclined
	}
	var d Donation
	if err := c.do(ctx, http.MethodPut, "/api/donations/"+id+"/cancel", authSession, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
