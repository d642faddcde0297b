package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventProjectCreated    EventType = "project_created"
	EventProjectCancelled  EventType = "project_cancelled"
	EventProposalSubmitted EventType = "proposal_submitted"
	EventProposalAccepted  EventType = "proposal_accepted"
	EventMilestoneCreated  EventType = "milestone_created"
	EventMilestoneSubmit   EventType = "milestone_submitted"
	EventMilestoneApproved EventType = "milestone_approved"
	EventMilestoneRejected EventType = "milestone_rejected"
	EventDisputeCreated    EventType = "dispute_created"
	EventDisputeVoted      EventType = "dispute_voted"
	EventDisputeResolved   EventType = "dispute_resolved"
	EventReviewSubmitted   EventType = "review_submitted"
	EventFeeUpdated        EventType = "fee_updated"
)

// EscrowEvent is the structured audit record emitted by every command, in the
// same transaction as the state change. It is advisory output for indexers
// and is never read back by the workflow.
type EscrowEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Type      EventType `gorm:"size:50;not null;index" json:"type"`
	ProjectID uint64    `gorm:"not null;index" json:"project_id"`
	EntityID  uint64    `gorm:"not null" json:"entity_id"`
	Actor     string    `gorm:"size:255;not null" json:"actor"`
	Amount    uint64    `gorm:"not null;default:0" json:"amount"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EscrowEvent) TableName() string {
	return "escrow_events"
}
