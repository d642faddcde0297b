package repository

import (
	"context"
	"errors"
	"time"

	"freelance-escrow/internal/models"

	"gorm.io/gorm"
)

// Ledger provides typed access to every entity table plus the shared id
// allocator. All writes made through a transaction-bound Ledger commit or
// roll back as one unit with the surrounding gorm transaction.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a Ledger bound to the given transaction handle.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// NextID advances the shared counter by one and returns the value it held.
// The increment runs as a single UPDATE so concurrent allocations serialize
// on the counter row; ids are never reused and the advance commits together
// with the entity write that consumed the id.
func (l *Ledger) NextID(ctx context.Context) (uint64, error) {
	res := l.db.WithContext(ctx).
		Model(&models.IDCounter{}).
		Where("id = ?", 1).
		Update("next_id", gorm.Expr("next_id + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, models.ErrNotFound
	}
	var counter models.IDCounter
	if err := l.db.WithContext(ctx).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.NextID - 1, nil
}

// SeedCounter creates the allocator row starting at 1.
func (l *Ledger) SeedCounter(ctx context.Context) error {
	return l.db.WithContext(ctx).Create(&models.IDCounter{ID: 1, NextID: 1}).Error
}

// GetConfig returns the platform configuration row.
func (l *Ledger) GetConfig(ctx context.Context) (*models.PlatformConfig, error) {
	var config models.PlatformConfig
	err := l.db.WithContext(ctx).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig persists the platform configuration, rejecting fees above the
// cap.
func (l *Ledger) SaveConfig(ctx context.Context, config *models.PlatformConfig) error {
	if config.PlatformFeeBps > models.MaxPlatformFeeBps {
		return models.ErrInvalidFee
	}
	return l.db.WithContext(ctx).Save(config).Error
}

// GetProject retrieves a project by id.
func (l *Ledger) GetProject(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	err := l.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// SaveProject persists a project, enforcing the entity-local invariants.
func (l *Ledger) SaveProject(ctx context.Context, project *models.Project) error {
	if project.Title == "" {
		return models.ErrEmptyTitle
	}
	if project.Description == "" {
		return models.ErrEmptyDescription
	}
	if project.Budget == 0 {
		return models.ErrInsufficientFunds
	}
	return l.db.WithContext(ctx).Save(project).Error
}

// ListProjects returns projects ordered by ascending id, starting after the
// given cursor.
func (l *Ledger) ListProjects(ctx context.Context, startAfter uint64, limit int) ([]*models.Project, error) {
	var projects []*models.Project
	err := l.db.WithContext(ctx).
		Where("id > ?", startAfter).
		Order("id ASC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProposal retrieves a proposal by id.
func (l *Ledger) GetProposal(ctx context.Context, id uint64) (*models.Proposal, error) {
	var proposal models.Proposal
	err := l.db.WithContext(ctx).Where("id = ?", id).First(&proposal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// SaveProposal persists a proposal.
func (l *Ledger) SaveProposal(ctx context.Context, proposal *models.Proposal) error {
	if proposal.Description == "" {
		return models.ErrEmptyDescription
	}
	return l.db.WithContext(ctx).Save(proposal).Error
}

// ProjectProposals returns all proposals for a project in id order.
func (l *Ledger) ProjectProposals(ctx context.Context, projectID uint64) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	err := l.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

// ProjectProposalIDs returns the ids of all proposals for a project.
func (l *Ledger) ProjectProposalIDs(ctx context.Context, projectID uint64) ([]uint64, error) {
	var ids []uint64
	err := l.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetMilestone retrieves a milestone by id.
func (l *Ledger) GetMilestone(ctx context.Context, id uint64) (*models.Milestone, error) {
	var milestone models.Milestone
	err := l.db.WithContext(ctx).Where("id = ?", id).First(&milestone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &milestone, nil
}

// SaveMilestone persists a milestone, enforcing the entity-local invariants.
func (l *Ledger) SaveMilestone(ctx context.Context, milestone *models.Milestone) error {
	if milestone.Description == "" {
		return models.ErrEmptyDescription
	}
	if milestone.Amount == 0 {
		return models.ErrInvalidAmount
	}
	return l.db.WithContext(ctx).Save(milestone).Error
}

// ProjectMilestones returns all milestones for a project in id order.
func (l *Ledger) ProjectMilestones(ctx context.Context, projectID uint64) ([]*models.Milestone, error) {
	var milestones []*models.Milestone
	err := l.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&milestones).Error
	if err != nil {
		return nil, err
	}
	return milestones, nil
}

// ProjectMilestoneIDs returns the ids of all milestones for a project.
func (l *Ledger) ProjectMilestoneIDs(ctx context.Context, projectID uint64) ([]uint64, error) {
	var ids []uint64
	err := l.db.WithContext(ctx).
		Model(&models.Milestone{}).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetDispute retrieves the dispute for a project.
func (l *Ledger) GetDispute(ctx context.Context, projectID uint64) (*models.Dispute, error) {
	var dispute models.Dispute
	err := l.db.WithContext(ctx).Where("project_id = ?", projectID).First(&dispute).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// SaveDispute persists a dispute.
func (l *Ledger) SaveDispute(ctx context.Context, dispute *models.Dispute) error {
	if dispute.Reason == "" {
		return models.ErrEmptyReason
	}
	return l.db.WithContext(ctx).Save(dispute).Error
}

// HasVoted reports whether the account already voted on the dispute.
func (l *Ledger) HasVoted(ctx context.Context, projectID uint64, voter string) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).
		Model(&models.DisputeVote{}).
		Where("project_id = ? AND voter = ?", projectID, voter).
		Count(&count).Error
	return count > 0, err
}

// SaveVote records a vote.
func (l *Ledger) SaveVote(ctx context.Context, vote *models.DisputeVote) error {
	return l.db.WithContext(ctx).Create(vote).Error
}

// DisputeVoters returns the voter addresses of the current dispute round in
// vote order. Votes from earlier rounds stay stored (they keep their voters
// used up) but predate the round's opening time and are filtered out here.
func (l *Ledger) DisputeVoters(ctx context.Context, projectID uint64, openedAt time.Time) ([]string, error) {
	var voters []string
	err := l.db.WithContext(ctx).
		Model(&models.DisputeVote{}).
		Where("project_id = ? AND created_at >= ?", projectID, openedAt).
		Order("created_at ASC").
		Pluck("voter", &voters).Error
	if err != nil {
		return nil, err
	}
	return voters, nil
}

// SaveReview persists a review.
func (l *Ledger) SaveReview(ctx context.Context, review *models.Review) error {
	return l.db.WithContext(ctx).Create(review).Error
}

// HasReviewed reports whether the account already reviewed this project.
func (l *Ledger) HasReviewed(ctx context.Context, projectID uint64, reviewer string) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("project_id = ? AND reviewer = ?", projectID, reviewer).
		Count(&count).Error
	return count > 0, err
}

// GetUserStats returns the rating aggregate for an account, or a fresh zero
// aggregate when the account has no rating history.
func (l *Ledger) GetUserStats(ctx context.Context, address string) (*models.UserStats, error) {
	var stats models.UserStats
	err := l.db.WithContext(ctx).Where("address = ?", address).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserStats{Address: address, VotingPower: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// SaveUserStats persists a rating aggregate.
func (l *Ledger) SaveUserStats(ctx context.Context, stats *models.UserStats) error {
	return l.db.WithContext(ctx).Save(stats).Error
}

// VotingPower returns the dispute-vote weight for an account. Accounts with
// no rating history vote with weight 1.
func (l *Ledger) VotingPower(ctx context.Context, address string) (uint64, error) {
	stats, err := l.GetUserStats(ctx, address)
	if err != nil {
		return 0, err
	}
	if stats.RatingCount == 0 {
		return 1, nil
	}
	return stats.VotingPower, nil
}

// AddProjectMember records an account's membership in a project.
func (l *Ledger) AddProjectMember(ctx context.Context, projectID uint64, address, role string) error {
	member := models.ProjectMember{
		ProjectID: projectID,
		Address:   address,
		Role:      role,
	}
	return l.db.WithContext(ctx).Create(&member).Error
}

// UserProjectIDs returns the ids of every project the account participates
// in, in id order. Absent membership yields an empty list, not an error.
func (l *Ledger) UserProjectIDs(ctx context.Context, address string) ([]uint64, error) {
	var ids []uint64
	err := l.db.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Where("address = ?", address).
		Order("project_id ASC").
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AppendEvent records a structured event alongside the state change.
func (l *Ledger) AppendEvent(ctx context.Context, event *models.EscrowEvent) error {
	return l.db.WithContext(ctx).Create(event).Error
}

// SaveEscrowTransaction records a fund movement.
func (l *Ledger) SaveEscrowTransaction(ctx context.Context, tx *models.EscrowTransaction) error {
	return l.db.WithContext(ctx).Create(tx).Error
}

// ProjectTransactions returns the fund-movement history for a project.
func (l *Ledger) ProjectTransactions(ctx context.Context, projectID uint64) ([]*models.EscrowTransaction, error) {
	var txs []*models.EscrowTransaction
	err := l.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// PendingPayouts returns releases and refunds that were booked but never got
// an on-chain signature, oldest first.
func (l *Ledger) PendingPayouts(ctx context.Context, limit int) ([]*models.EscrowTransaction, error) {
	var txs []*models.EscrowTransaction
	err := l.db.WithContext(ctx).
		Where("tx_hash IS NULL AND type IN ?", []models.EscrowTransactionType{
			models.EscrowTransactionTypeRelease,
			models.EscrowTransactionTypeRefund,
		}).
		Order("created_at ASC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// ReleasedTotal sums the approved milestone amounts for a project, i.e. the
// part of the budget already released from escrow.
func (l *Ledger) ReleasedTotal(ctx context.Context, projectID uint64) (uint64, error) {
	milestones, err := l.ProjectMilestones(ctx, projectID)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, m := range milestones {
		if m.Status == models.MilestoneStatusApproved {
			total += m.Amount
		}
	}
	return total, nil
}
