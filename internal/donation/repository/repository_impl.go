package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/donation/domain"
	"github.com/foodbridge/foodbridge/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, donation domain.Donation) error {
	return r.db.WithContext(ctx).Create(&donation).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Donation, error) {
	var donation domain.Donation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repo) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.Donation, error) {
	var donations []domain.Donation
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&donations).Error
	return donations, err
}

func (r *repo) ListByStatus(ctx context.Context, status string) ([]domain.Donation, error) {
	var donations []domain.Donation
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&donations).Error
	return donations, err
}

func (r *repo) ListAvailableExcluding(ctx context.Context, orgID snowflake.ID) ([]domain.Donation, error) {
	var donations []domain.Donation
	err := r.db.WithContext(ctx).
		Where("status = ? AND org_id <> ?", domain.StatusAvailable, orgID).
		Order("expiry_date ASC").
		Find(&donations).Error
	return donations, err
}

func (r *repo) ListAll(ctx context.Context) ([]domain.Donation, error) {
	var donations []domain.Donation
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&donations).Error
	return donations, err
}

func (r *repo) ListPage(ctx context.Context, status string, page pagination.Pagination) ([]domain.Donation, pagination.PageInfo, error) {
	size := page.Limit()

	q := r.db.WithContext(ctx).Model(&domain.Donation{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		after, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		lastID, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", after, after, lastID)
	}

	var donations []domain.Donation
	err := q.Order("created_at DESC, id DESC").Limit(size + 1).Find(&donations).Error
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	info := pagination.PageInfo{}
	if len(donations) > size {
		donations = donations[:size]
		last := donations[len(donations)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, pagination.PageInfo{}, err
		}
		info.NextPageToken = token
		info.HasMore = true
	}
	return donations, info, nil
}

func (r *repo) ListExpiringBefore(ctx context.Context, cutoff time.Time, status string) ([]domain.Donation, error) {
	var donations []domain.Donation
	err := r.db.WithContext(ctx).
		Where("expiry_date < ? AND status = ?", cutoff, status).
		Order("expiry_date ASC").
		Find(&donations).Error
	return donations, err
}

func (r *repo) ListExpiringBeforeForOrg(ctx context.Context, orgID snowflake.ID, cutoff time.Time, status string) ([]domain.Donation, error) {
	var donations []domain.Donation
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND expiry_date < ? AND status = ?", orgID, cutoff, status).
		Order("expiry_date ASC").
		Find(&donations).Error
	return donations, err
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Donation{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrDonationNotFound
	}
	return nil
}

func (r *repo) Reserve(ctx context.Context, id, orgID snowflake.ID, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Donation{}).
		Where("id = ? AND status = ? AND org_id <> ?", id, domain.StatusAvailable, orgID).
		Updates(map[string]any{
			"status":       domain.StatusReserved,
			"requested_by": orgID,
			"requested_at": at,
			"updated_at":   at,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *repo) Release(ctx context.Context, id snowflake.ID, at time.Time) error {
	tx := r.db.WithContext(ctx).Model(&domain.Donation{}).
		Where("id = ? AND status = ?", id, domain.StatusReserved).
		Updates(map[string]any{
			"status":       domain.StatusAvailable,
			"requested_by": nil,
			"requested_at": nil,
			"updated_at":   at,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotAvailable
	}
	return nil
}

func (r *repo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Donation{}).
		Where("expiry_date < ? AND status NOT IN ?", now, []string{
			domain.StatusExpired,
			domain.StatusCollected,
			domain.StatusDelivered,
			domain.StatusCancelled,
		}).
		Updates(map[string]any{
			"status":     domain.StatusExpired,
			"updated_at": now,
		})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
