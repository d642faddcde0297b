package models

import (
	"time"
)

// MaxPlatformFeeBps caps the platform fee at 10% (1000 basis points).
const MaxPlatformFeeBps = 1000

// PlatformConfig is the single configuration row created at first boot.
// Only the owner may change the fee.
type PlatformConfig struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Owner          string    `gorm:"size:255;not null" json:"owner"`
	PlatformFeeBps uint64    `gorm:"not null" json:"platform_fee_bps"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PlatformConfig) TableName() string {
	return "platform_config"
}

// IDCounter is the single shared id allocator row. Ids are handed out in call
// order across all entity types, so they interleave; that is intentional.
type IDCounter struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	NextID uint64 `gorm:"not null" json:"next_id"`
}

func (IDCounter) TableName() string {
	return "id_counter"
}

// UpdateFeeRequest represents an owner request to change the platform fee
type UpdateFeeRequest struct {
	NewFeeBps *uint64 `json:"new_fee_bps" binding:"required"`
}
