// Package seed bootstraps the development dataset: a default admin account
// and a handful of sample organizations. Seeding is idempotent and only runs
// when enabled in config.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/foodbridge/foodbridge/internal/auth/domain"
	"github.com/foodbridge/foodbridge/internal/auth/password"
	organizationdomain "github.com/foodbridge/foodbridge/internal/organization/domain"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "changeme-admin"
	defaultOrgPassword   = "changeme-org"
)

type sampleOrg struct {
	Name    string
	Type    string
	Email   string
	Phone   string
	Address string
}

var sampleOrgs = []sampleOrg{
	{Name: "Food Bank Organization", Type: organizationdomain.TypeNGO, Email: "foodbank@example.com", Phone: "123-456-7890", Address: "123 Main St, City"},
	{Name: "Community Kitchen", Type: organizationdomain.TypeNGO, Email: "kitchen@example.com", Phone: "987-654-3210", Address: "456 Oak St, City"},
	{Name: "Homeless Shelter", Type: organizationdomain.TypeNGO, Email: "shelter@example.com", Phone: "555-555-5555", Address: "789 Pine St, City"},
}

// EnsureAdminAndSampleOrgs seeds the default admin plus sample organizations
// when the respective tables are empty.
func EnsureAdminAndSampleOrgs(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAdminTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureSampleOrgsTx(ctx, tx, node)
	})
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var admin authdomain.Admin
	err := tx.WithContext(ctx).Where("username = ?", defaultAdminUsername).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}
	admin = authdomain.Admin{
		ID:           node.Generate(),
		Username:     defaultAdminUsername,
		PasswordHash: hashed,
		CreatedAt:    time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&admin).Error
}

func ensureSampleOrgsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&organizationdomain.Organization{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash(defaultOrgPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, sample := range sampleOrgs {
		org := organizationdomain.Organization{
			ID:           node.Generate(),
			Name:         sample.Name,
			Slug:         slug.Make(sample.Name),
			OrgType:      sample.Type,
			Email:        sample.Email,
			PasswordHash: hashed,
			Phone:        sample.Phone,
			Address:      sample.Address,
			Metadata:     datatypes.JSONMap{"seeded": true},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
			return err
		}
	}
	return nil
}
