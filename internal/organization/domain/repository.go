package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, org Organization) error
	FindByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	FindByEmail(ctx context.Context, email string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
}
