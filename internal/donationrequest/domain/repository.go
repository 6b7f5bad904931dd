package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, request DonationRequest) error
	FindByID(ctx context.Context, id snowflake.ID) (*DonationRequest, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]DonationRequest, error)
	ListByStatus(ctx context.Context, status string) ([]DonationRequest, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error

	// Decide moves a PENDING request to a terminal status. It reports whether
	// the row was still pending when the update landed.
	Decide(ctx context.Context, id snowflake.ID, fields map[string]any) (bool, error)

	// HasOpenRequest reports whether org already holds a PENDING request for
	// the donation.
	HasOpenRequest(ctx context.Context, orgID, donationID snowflake.ID) (bool, error)
}
