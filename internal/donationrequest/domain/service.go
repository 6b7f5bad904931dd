package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	donationdomain "github.com/foodbridge/foodbridge/internal/donation/domain"
)

type Service interface {
	Submit(ctx context.Context, orgID snowflake.ID, donationID string) (*DonationRequest, error)
	GetByID(ctx context.Context, id string) (*DonationRequest, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]DonationRequest, error)
	MarkNotified(ctx context.Context, orgID snowflake.ID, id string) error

	ListPending(ctx context.Context) ([]PendingRequestView, error)
	Approve(ctx context.Context, id, adminID, notes string) (*DonationRequest, error)
	Reject(ctx context.Context, id, adminID, notes string) (*DonationRequest, error)
}

// PendingRequestView pairs a pending request with the donation and requester
// context an admin needs to decide it.
type PendingRequestView struct {
	Request          DonationRequest          `json:"request"`
	Donation         *donationdomain.Donation `json:"donation,omitempty"`
	OrganizationName string                   `json:"organization_name"`
}

var (
	ErrRequestNotFound = errors.New("request_not_found")
	ErrAlreadyDecided  = errors.New("request_already_decided")
	ErrDuplicateOpen   = errors.New("request_already_open")
	ErrNotRequester    = errors.New("not_request_owner")
)

// DecisionOutcome labels recorded on decision metrics.
const (
	OutcomeApproved = "approved"
	OutcomeRejected = "rejected"
)
