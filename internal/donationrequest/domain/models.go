// Package domain contains persistence models for donation requests.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Request lifecycle states.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// DonationRequest is a recipient's claim on a donation, awaiting an admin
// decision.
type DonationRequest struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID             snowflake.ID `gorm:"not null;index" json:"organization_id"`
	DonationID        snowflake.ID `gorm:"not null;index" json:"donation_id"`
	Status            string       `gorm:"type:text;not null;index" json:"status"`
	Notes             string       `gorm:"type:text" json:"notes"`
	DecidedBy         string       `gorm:"type:text;column:decided_by" json:"decided_by,omitempty"`
	DecidedAt         *time.Time   `gorm:"column:decided_at" json:"decided_at,omitempty"`
	NotificationShown bool         `gorm:"not null;default:false" json:"notification_shown"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (DonationRequest) TableName() string { return "donation_requests" }
