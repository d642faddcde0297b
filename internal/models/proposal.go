package models

import (
	"time"
)

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "PENDING"
	ProposalStatusAccepted ProposalStatus = "ACCEPTED"
	ProposalStatusRejected ProposalStatus = "REJECTED"
)

// Proposal represents a freelancer's bid on an open project. At most one
// proposal per project ever reaches ACCEPTED; the rest become REJECTED at
// that moment.
type Proposal struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProjectID      uint64         `gorm:"not null;index" json:"project_id"`
	Freelancer     string         `gorm:"size:255;not null;index" json:"freelancer"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	Price          uint64         `gorm:"not null" json:"price"`
	TimelineInDays uint64         `gorm:"not null" json:"timeline_in_days"`
	Status         ProposalStatus `gorm:"size:50;not null;default:PENDING;index" json:"status"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// SubmitProposalRequest represents a request to bid on an open project
type SubmitProposalRequest struct {
	Description    string `json:"description" binding:"required"`
	Price          uint64 `json:"price" binding:"required"`
	TimelineInDays uint64 `json:"timeline_in_days"`
}
