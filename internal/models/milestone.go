package models

import (
	"time"
)

type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "PENDING"
	MilestoneStatusSubmitted MilestoneStatus = "SUBMITTED"
	MilestoneStatusApproved  MilestoneStatus = "APPROVED"
	MilestoneStatusRejected  MilestoneStatus = "REJECTED"
)

// Milestone represents a budget-bounded unit of deliverable work. The sum of
// all milestone amounts for a project never exceeds the project budget.
type Milestone struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProjectID   uint64          `gorm:"not null;index" json:"project_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Amount      uint64          `gorm:"not null" json:"amount"`
	Status      MilestoneStatus `gorm:"size:50;not null;default:PENDING;index" json:"status"`
	CreatedAt   time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Milestone) TableName() string {
	return "milestones"
}

// CreateMilestoneRequest represents a request to carve a milestone out of the
// remaining project budget
type CreateMilestoneRequest struct {
	Description string `json:"description" binding:"required"`
	Amount      uint64 `json:"amount" binding:"required"`
}
