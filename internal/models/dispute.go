package models

import (
	"time"
)

// Dispute is keyed by its project id: a project has at most one dispute.
// Vote totals are weighted sums of each voter's voting power.
type Dispute struct {
	ProjectID          uint64    `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	Initiator          string    `gorm:"size:255;not null" json:"initiator"`
	Reason             string    `gorm:"type:text;not null" json:"reason"`
	VotesForClient     uint64    `gorm:"not null;default:0" json:"votes_for_client"`
	VotesForFreelancer uint64    `gorm:"not null;default:0" json:"votes_for_freelancer"`
	VoterCount         uint64    `gorm:"not null;default:0" json:"voter_count"`
	Resolved           bool      `gorm:"not null;default:false" json:"resolved"`
	CreatedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Dispute) TableName() string {
	return "disputes"
}

// DisputeVote records one voter's weighted vote. The composite key keeps a
// voter from voting twice on the same dispute.
type DisputeVote struct {
	ProjectID uint64    `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	Voter     string    `gorm:"primaryKey;size:255" json:"voter"`
	ForClient bool      `gorm:"not null" json:"for_client"`
	Weight    uint64    `gorm:"not null" json:"weight"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (DisputeVote) TableName() string {
	return "dispute_votes"
}

// CreateDisputeRequest represents a request to dispute an in-progress project
type CreateDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// VoteRequest represents one vote on an open dispute
type VoteRequest struct {
	VoteForClient *bool `json:"vote_for_client" binding:"required"`
}

// DisputeResponse represents a dispute plus its recorded voters
type DisputeResponse struct {
	ProjectID          uint64    `json:"project_id"`
	Initiator          string    `json:"initiator"`
	Reason             string    `json:"reason"`
	VotesForClient     uint64    `json:"votes_for_client"`
	VotesForFreelancer uint64    `json:"votes_for_freelancer"`
	Resolved           bool      `json:"resolved"`
	Voters             []string  `json:"voters"`
	CreatedAt          time.Time `json:"created_at"`
}
