// Package domain contains persistence models for the organization service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Organization types accepted at registration.
const (
	TypeNGO        = "NGO"
	TypeIndividual = "INDIVIDUAL"
)

// Organization is a registered donor or recipient account.
type Organization struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name         string            `gorm:"type:text;not null" json:"name"`
	Slug         string            `gorm:"type:text;not null" json:"slug"`
	OrgType      string            `gorm:"type:text;not null;column:org_type" json:"type"`
	Email        string            `gorm:"type:text;not null;uniqueIndex:ux_organizations_email" json:"email"`
	PasswordHash string            `gorm:"type:text;not null" json:"-"`
	Phone        string            `gorm:"type:text" json:"phone"`
	Address      string            `gorm:"type:text" json:"address"`
	Description  string            `gorm:"type:text" json:"description"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }
