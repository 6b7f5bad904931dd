package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/clock"
	donationdomain "github.com/foodbridge/foodbridge/internal/donation/domain"
	"github.com/foodbridge/foodbridge/internal/donationrequest/domain"
	"github.com/foodbridge/foodbridge/internal/observability/metrics"
	organizationdomain "github.com/foodbridge/foodbridge/internal/organization/domain"
	"go.uber.org/zap"
)

type service struct {
	log       *zap.Logger
	repo      domain.Repository
	donations donationdomain.Service
	orgs      organizationdomain.Repository
	genID     *snowflake.Node
	clock     clock.Clock
	metrics   *metrics.Metrics
}

func NewService(
	log *zap.Logger,
	repo domain.Repository,
	donations donationdomain.Service,
	orgs organizationdomain.Repository,
	genID *snowflake.Node,
	clk clock.Clock,
	m *metrics.Metrics,
) domain.Service {
	return &service{
		log:       log.Named("donationrequest.service"),
		repo:      repo,
		donations: donations,
		orgs:      orgs,
		genID:     genID,
		clock:     clk,
		metrics:   m,
	}
}

func (s *service) Submit(ctx context.Context, orgID snowflake.ID, donationID string) (*domain.DonationRequest, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(donationID))
	if err != nil {
		return nil, donationdomain.ErrDonationNotFound
	}

	open, err := s.repo.HasOpenRequest(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, domain.ErrDuplicateOpen
	}

	if _, err := s.donations.Reserve(ctx, id, orgID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	request := domain.DonationRequest{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		DonationID: id,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		// the reservation must not outlive a failed request insert
		if releaseErr := s.donations.Release(ctx, id); releaseErr != nil {
			s.log.Error("failed to release reservation after insert failure",
				zap.String("donation_id", id.String()),
				zap.Error(releaseErr),
			)
		}
		return nil, err
	}

	s.metrics.RecordRequestSubmitted(ctx)
	s.log.Info("donation request submitted",
		zap.String("request_id", request.ID.String()),
		zap.String("donation_id", id.String()),
		zap.String("org_id", orgID.String()),
	)
	return &request, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.DonationRequest, error) {
	requestID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrRequestNotFound
	}
	return s.repo.FindByID(ctx, requestID)
}

func (s *service) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.DonationRequest, error) {
	return s.repo.ListByOrg(ctx, orgID)
}

func (s *service) MarkNotified(ctx context.Context, orgID snowflake.ID, id string) error {
	request, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if request.OrgID != orgID {
		return domain.ErrNotRequester
	}
	if request.NotificationShown {
		return nil
	}

	return s.repo.UpdateFields(ctx, request.ID, map[string]any{
		"notification_shown": true,
		"updated_at":         s.clock.Now(),
	})
}

func (s *service) ListPending(ctx context.Context) ([]domain.PendingRequestView, error) {
	pending, err := s.repo.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, err
	}

	views := make([]domain.PendingRequestView, 0, len(pending))
	for _, request := range pending {
		view := domain.PendingRequestView{Request: request}

		if donation, err := s.donations.GetByID(ctx, request.DonationID.String()); err == nil {
			view.Donation = donation
		} else if !errors.Is(err, donationdomain.ErrDonationNotFound) {
			return nil, err
		}

		if org, err := s.orgs.FindByID(ctx, request.OrgID); err == nil {
			view.OrganizationName = org.Name
		} else if !errors.Is(err, organizationdomain.ErrOrganizationNotFound) {
			return nil, err
		}

		views = append(views, view)
	}
	return views, nil
}

func (s *service) Approve(ctx context.Context, id, adminID, notes string) (*domain.DonationRequest, error) {
	request, err := s.decide(ctx, id, adminID, notes, domain.StatusApproved)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRequestDecided(ctx, domain.OutcomeApproved)
	s.log.Info("donation request approved",
		zap.String("request_id", request.ID.String()),
		zap.String("admin_id", adminID),
	)
	return request, nil
}

func (s *service) Reject(ctx context.Context, id, adminID, notes string) (*domain.DonationRequest, error) {
	request, err := s.decide(ctx, id, adminID, notes, domain.StatusRejected)
	if err != nil {
		return nil, err
	}

	// a rejected claim puts the donation back in the pool
	if err := s.donations.Release(ctx, request.DonationID); err != nil && !errors.Is(err, donationdomain.ErrNotAvailable) {
		return nil, err
	}

	s.metrics.RecordRequestDecided(ctx, domain.OutcomeRejected)
	s.log.Info("donation request rejected",
		zap.String("request_id", request.ID.String()),
		zap.String("admin_id", adminID),
	)
	return request, nil
}

func (s *service) decide(ctx context.Context, id, adminID, notes, status string) (*domain.DonationRequest, error) {
	request, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyDecided
	}

	now := s.clock.Now()
	decided, err := s.repo.Decide(ctx, request.ID, map[string]any{
		"status":     status,
		"decided_by": strings.TrimSpace(adminID),
		"decided_at": now,
		"notes":      strings.TrimSpace(notes),
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, domain.ErrAlreadyDecided
	}

	return s.repo.FindByID(ctx, request.ID)
}
