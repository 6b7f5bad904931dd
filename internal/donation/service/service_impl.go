package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/clock"
	"github.com/foodbridge/foodbridge/internal/donation/domain"
	"github.com/foodbridge/foodbridge/internal/observability/metrics"
	"github.com/foodbridge/foodbridge/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type service struct {
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *metrics.Metrics
}

func NewService(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, clk clock.Clock, m *metrics.Metrics) domain.Service {
	return &service{
		log:     log.Named("donation.service"),
		repo:    repo,
		genID:   genID,
		clock:   clk,
		metrics: m,
	}
}

func (s *service) Create(ctx context.Context, orgID snowflake.ID, req domain.CreateDonationRequest) (*domain.Donation, error) {
	for _, field := range []string{
		req.FoodType,
		req.FoodName,
		req.Quantity,
		req.QuantityUnit,
		req.PickupAddress,
		req.ContactPhone,
	} {
		if strings.TrimSpace(field) == "" {
			return nil, domain.ErrMissingField
		}
	}
	if req.ExpiryDate.IsZero() {
		return nil, domain.ErrMissingField
	}

	now := s.clock.Now()
	if req.ExpiryDate.Before(now) {
		return nil, domain.ErrExpiryInPast
	}

	donation := domain.Donation{
		ID:                    s.genID.Generate(),
		OrgID:                 orgID,
		FoodType:              strings.TrimSpace(req.FoodType),
		FoodName:              strings.TrimSpace(req.FoodName),
		Quantity:              strings.TrimSpace(req.Quantity),
		QuantityUnit:          strings.TrimSpace(req.QuantityUnit),
		ExpiryDate:            req.ExpiryDate.UTC(),
		PickupAddress:         strings.TrimSpace(req.PickupAddress),
		ContactPhone:          strings.TrimSpace(req.ContactPhone),
		RefrigerationRequired: req.RefrigerationRequired,
		Notes:                 strings.TrimSpace(req.Notes),
		Status:                domain.StatusAvailable,
		Metadata:              datatypes.JSONMap{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, err
	}

	s.metrics.RecordDonationCreated(ctx, donation.FoodType)
	s.log.Info("donation created",
		zap.String("donation_id", donation.ID.String()),
		zap.String("org_id", orgID.String()),
		zap.String("food_type", donation.FoodType),
	)
	return &donation, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	donationID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrDonationNotFound
	}
	return s.repo.FindByID(ctx, donationID)
}

func (s *service) ListMine(ctx context.Context, orgID snowflake.ID) ([]domain.Donation, error) {
	return s.repo.ListByOrg(ctx, orgID)
}

func (s *service) ListAvailableFromOthers(ctx context.Context, orgID snowflake.ID) ([]domain.Donation, error) {
	return s.repo.ListAvailableExcluding(ctx, orgID)
}

func (s *service) ListAll(ctx context.Context) ([]domain.Donation, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListByStatus(ctx context.Context, status string) ([]domain.Donation, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, status)
}

func (s *service) ListPage(ctx context.Context, status string, page pagination.Pagination) ([]domain.Donation, pagination.PageInfo, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && !domain.ValidStatus(status) {
		return nil, pagination.PageInfo{}, domain.ErrInvalidStatus
	}
	return s.repo.ListPage(ctx, status, page)
}

func (s *service) Update(ctx context.Context, orgID snowflake.ID, id string, req domain.UpdateDonationRequest) (*domain.Donation, error) {
	donation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.OrgID != orgID {
		return nil, domain.ErrNotOwner
	}
	if donation.Status != domain.StatusAvailable {
		return nil, domain.ErrNotAvailable
	}

	fields := map[string]any{}
	setText := func(column string, v *string) error {
		if v == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" && column != "notes" {
			return domain.ErrMissingField
		}
		fields[column] = trimmed
		return nil
	}

	for column, v := range map[string]*string{
		"food_type":      req.FoodType,
		"food_name":      req.FoodName,
		"quantity":       req.Quantity,
		"quantity_unit":  req.QuantityUnit,
		"pickup_address": req.PickupAddress,
		"contact_phone":  req.ContactPhone,
		"notes":          req.Notes,
	} {
		if err := setText(column, v); err != nil {
			return nil, err
		}
	}
	if req.ExpiryDate != nil {
		if req.ExpiryDate.Before(s.clock.Now()) {
			return nil, domain.ErrExpiryInPast
		}
		fields["expiry_date"] = req.ExpiryDate.UTC()
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.clock.Now()
		if err := s.repo.UpdateFields(ctx, donation.ID, fields); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, donation.ID)
}

func (s *service) Cancel(ctx context.Context, orgID snowflake.ID, id string) (*domain.Donation, error) {
	donation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.OrgID != orgID {
		return nil, domain.ErrNotOwner
	}
	if donation.Status != domain.StatusAvailable {
		return nil, domain.ErrDonationNotActive
	}

	now := s.clock.Now()
	err = s.repo.UpdateFields(ctx, donation.ID, map[string]any{
		"status":     domain.StatusCancelled,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("donation cancelled", zap.String("donation_id", donation.ID.String()))
	return s.repo.FindByID(ctx, donation.ID)
}

func (s *service) UpdateStatus(ctx context.Context, id, status string) (*domain.Donation, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	donation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.repo.UpdateFields(ctx, donation.ID, map[string]any{
		"status":     status,
		"updated_at": s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, donation.ID)
}

func (s *service) Reserve(ctx context.Context, id, orgID snowflake.ID) (*domain.Donation, error) {
	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.OrgID == orgID {
		return nil, domain.ErrOwnDonation
	}

	claimed, err := s.repo.Reserve(ctx, id, orgID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domain.ErrNotAvailable
	}

	return s.repo.FindByID(ctx, id)
}

func (s *service) Release(ctx context.Context, id snowflake.ID) error {
	return s.repo.Release(ctx, id, s.clock.Now())
}

func (s *service) ExpiringSoon(ctx context.Context, within time.Duration) ([]domain.Donation, error) {
	cutoff := s.clock.Now().Add(within)
	return s.repo.ListExpiringBefore(ctx, cutoff, domain.StatusAvailable)
}

func (s *service) ExpiringSoonMine(ctx context.Context, orgID snowflake.ID, within time.Duration) ([]domain.Donation, error) {
	cutoff := s.clock.Now().Add(within)
	return s.repo.ListExpiringBeforeForOrg(ctx, orgID, cutoff, domain.StatusAvailable)
}

func (s *service) ExpireSweep(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired donations swept", zap.Int64("count", n))
	}
	return n, nil
}
