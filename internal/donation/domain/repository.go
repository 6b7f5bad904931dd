package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/pkg/db/pagination"
)

type Repository interface {
	Create(ctx context.Context, donation Donation) error
	FindByID(ctx context.Context, id snowflake.ID) (*Donation, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Donation, error)
	ListByStatus(ctx context.Context, status string) ([]Donation, error)
	ListAvailableExcluding(ctx context.Context, orgID snowflake.ID) ([]Donation, error)
	ListAll(ctx context.Context) ([]Donation, error)
	ListPage(ctx context.Context, status string, page pagination.Pagination) ([]Donation, pagination.PageInfo, error)
	ListExpiringBefore(ctx context.Context, cutoff time.Time, status string) ([]Donation, error)
	ListExpiringBeforeForOrg(ctx context.Context, orgID snowflake.ID, cutoff time.Time, status string) ([]Donation, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error

	// Reserve flips an AVAILABLE donation not owned by orgID to RESERVED.
	// It reports whether the row was claimed.
	Reserve(ctx context.Context, id, orgID snowflake.ID, at time.Time) (bool, error)

	// Release returns a RESERVED donation to AVAILABLE and clears the
	// requester columns.
	Release(ctx context.Context, id snowflake.ID, at time.Time) error

	// MarkExpired transitions every unexpired donation whose expiry date has
	// passed and returns the number of rows changed.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}
