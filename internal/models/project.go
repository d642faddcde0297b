package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectStatusOpen       ProjectStatus = "OPEN"
	ProjectStatusInProgress ProjectStatus = "IN_PROGRESS"
	ProjectStatusDisputed   ProjectStatus = "DISPUTED"
	ProjectStatusCompleted  ProjectStatus = "COMPLETED"
	ProjectStatusCancelled  ProjectStatus = "CANCELLED"
)

// Project represents a client-funded escrow project. The budget equals the
// deposit attached at creation and never changes afterwards.
type Project struct {
	ID          uint64        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Client      string        `gorm:"size:255;not null;index" json:"client"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text;not null" json:"description"`
	Budget      uint64        `gorm:"not null" json:"budget"`
	Deadline    time.Time     `gorm:"not null" json:"deadline"`
	Status      ProjectStatus `gorm:"size:50;not null;default:OPEN;index" json:"status"`
	Freelancer  *string       `gorm:"size:255;index" json:"freelancer,omitempty"`
	CreatedAt   time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectMember links an account to a project it participates in,
// as client or as the accepted freelancer.
type ProjectMember struct {
	ProjectID uint64    `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	Address   string    `gorm:"primaryKey;size:255" json:"address"`
	Role      string    `gorm:"size:20;not null" json:"role"` // "client" or "freelancer"
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}

// CreateProjectRequest represents a request to create a funded project
type CreateProjectRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description" binding:"required"`
	DeadlineSeconds uint64 `json:"deadline_seconds"`
	DepositAmount   uint64 `json:"deposit_amount" binding:"required"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID            uint64        `json:"id"`
	Client        string        `json:"client"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Budget        uint64        `json:"budget"`
	BudgetDisplay string        `json:"budget_display"`
	Deadline      time.Time     `json:"deadline"`
	Status        ProjectStatus `json:"status"`
	Freelancer    *string       `json:"freelancer,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
