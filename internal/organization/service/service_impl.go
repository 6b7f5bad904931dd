package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/auth/password"
	"github.com/foodbridge/foodbridge/internal/clock"
	"github.com/foodbridge/foodbridge/internal/organization/domain"
	"github.com/foodbridge/foodbridge/pkg/db"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const minPasswordLength = 8

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{
		log:   log.Named("organization.service"),
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidEmail
	}

	if len(req.Password) < minPasswordLength {
		return nil, domain.ErrInvalidPassword
	}

	orgType := strings.ToUpper(strings.TrimSpace(req.Type))
	if orgType != domain.TypeNGO && orgType != domain.TypeIndividual {
		return nil, domain.ErrInvalidType
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	org := domain.Organization{
		ID:           s.genID.Generate(),
		Name:         name,
		Slug:         slug.Make(name),
		OrgType:      orgType,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Description:  strings.TrimSpace(req.Description),
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, org); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("organization registered",
		zap.String("org_id", org.ID.String()),
		zap.String("org_type", orgType),
	)

	return toResponse(&org), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.OrganizationResponse, error) {
	orgID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrOrganizationNotFound
	}

	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return toResponse(org), nil
}

func (s *service) List(ctx context.Context) ([]domain.OrganizationResponse, error) {
	orgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		out = append(out, *toResponse(&orgs[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.OrganizationResponse, error) {
	fields := map[string]any{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
		fields["slug"] = slug.Make(name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, domain.ErrInvalidEmail
		}
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, domain.ErrInvalidEmail
		}
		fields["email"] = email
	}
	if req.Type != nil {
		orgType := strings.ToUpper(strings.TrimSpace(*req.Type))
		if orgType != domain.TypeNGO && orgType != domain.TypeIndividual {
			return nil, domain.ErrInvalidType
		}
		fields["org_type"] = orgType
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		fields["address"] = strings.TrimSpace(*req.Address)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.clock.Now()
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return nil, domain.ErrEmailTaken
			}
			return nil, err
		}
	}

	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, err
	}
	return toResponse(org), nil
}

func toResponse(org *domain.Organization) *domain.OrganizationResponse {
	return &domain.OrganizationResponse{
		ID:          org.ID.String(),
		Name:        org.Name,
		Slug:        org.Slug,
		Email:       org.Email,
		Phone:       org.Phone,
		Address:     org.Address,
		Type:        org.OrgType,
		Description: org.Description,
		CreatedAt:   org.CreatedAt,
	}
}
