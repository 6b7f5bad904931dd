// Package domain contains persistence models for the donation service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Donation lifecycle states.
const (
	StatusAvailable = "AVAILABLE"
	StatusReserved  = "RESERVED"
	StatusCollected = "COLLECTED"
	StatusDelivered = "DELIVERED"
	StatusExpired   = "EXPIRED"
	StatusCancelled = "CANCELLED"
)

// Donation is a food offer posted by an organization.
type Donation struct {
	ID                    snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID                 snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	FoodType              string            `gorm:"type:text;not null" json:"food_type"`
	FoodName              string            `gorm:"type:text;not null" json:"food_name"`
	Quantity              string            `gorm:"type:text;not null" json:"quantity"`
	QuantityUnit          string            `gorm:"type:text;not null" json:"quantity_unit"`
	ExpiryDate            time.Time         `gorm:"not null;index" json:"expiry_date"`
	PickupAddress         string            `gorm:"type:text;not null" json:"pickup_address"`
	ContactPhone          string            `gorm:"type:text;not null" json:"contact_phone"`
	RefrigerationRequired bool              `gorm:"not null;default:false" json:"refrigeration_required"`
	Notes                 string            `gorm:"type:text" json:"notes"`
	Status                string            `gorm:"type:text;not null;index" json:"status"`
	RequestedBy           *snowflake.ID     `gorm:"column:requested_by" json:"requested_by,omitempty"`
	RequestedAt           *time.Time        `gorm:"column:requested_at" json:"requested_at,omitempty"`
	Metadata              datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt             time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Donation) TableName() string { return "donations" }
