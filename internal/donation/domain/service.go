package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, orgID snowflake.ID, req CreateDonationRequest) (*Donation, error)
	GetByID(ctx context.Context, id string) (*Donation, error)
	ListMine(ctx context.Context, orgID snowflake.ID) ([]Donation, error)
	ListAvailableFromOthers(ctx context.Context, orgID snowflake.ID) ([]Donation, error)
	ListAll(ctx context.Context) ([]Donation, error)
	ListByStatus(ctx context.Context, status string) ([]Donation, error)
	ListPage(ctx context.Context, status string, page pagination.Pagination) ([]Donation, pagination.PageInfo, error)
	Update(ctx context.Context, orgID snowflake.ID, id string, req UpdateDonationRequest) (*Donation, error)
	Cancel(ctx context.Context, orgID snowflake.ID, id string) (*Donation, error)
	UpdateStatus(ctx context.Context, id, status string) (*Donation, error)

	Reserve(ctx context.Context, id, orgID snowflake.ID) (*Donation, error)
	Release(ctx context.Context, id snowflake.ID) error

	ExpiringSoon(ctx context.Context, within time.Duration) ([]Donation, error)
	ExpiringSoonMine(ctx context.Context, orgID snowflake.ID, within time.Duration) ([]Donation, error)
	ExpireSweep(ctx context.Context) (int64, error)
}

type CreateDonationRequest struct {
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

// UpdateDonationRequest carries a partial edit of an AVAILABLE donation.
type UpdateDonationRequest struct {
	FoodType      *string    `json:"food_type"`
	FoodName      *string    `json:"food_name"`
	Quantity      *string    `json:"quantity"`
	QuantityUnit  *string    `json:"quantity_unit"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	PickupAddress *string    `json:"pickup_address"`
	ContactPhone  *string    `json:"contact_phone"`
	Notes         *string    `json:"notes"`
}

var (
	ErrDonationNotFound  = errors.New("donation_not_found")
	ErrMissingField      = errors.New("missing_field")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrNotAvailable      = errors.New("donation_not_available")
	ErrNotOwner          = errors.New("not_donation_owner")
	ErrOwnDonation       = errors.New("cannot_request_own_donation")
	ErrExpiryInPast      = errors.New("expiry_date_in_past")
	ErrDonationNotActive = errors.New("donation_not_cancellable")
)

// ValidStatus reports whether s is one of the donation lifecycle states.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusCollected, StatusDelivered, StatusExpired, StatusCancelled:
		return true
	}
	return false
}
