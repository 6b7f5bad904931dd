package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/donationrequest/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, request domain.DonationRequest) error {
	return r.db.WithContext(ctx).Create(&request).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.DonationRequest, error) {
	var request domain.DonationRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repo) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.DonationRequest, error) {
	var requests []domain.DonationRequest
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repo) ListByStatus(ctx context.Context, status string) ([]domain.DonationRequest, error) {
	var requests []domain.DonationRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.DonationRequest{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *repo) Decide(ctx context.Context, id snowflake.ID, fields map[string]any) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.DonationRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(fields)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *repo) HasOpenRequest(ctx context.Context, orgID, donationID snowflake.ID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.DonationRequest{}).
		Where("org_id = ? AND donation_id = ? AND status = ?", orgID, donationID, domain.StatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
