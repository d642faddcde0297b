package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"freelance-escrow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateMilestone carves a unit of work out of the remaining budget. The sum
// of all milestone amounts for a project can never exceed its budget; this is
// checked incrementally on every creation.
func (s *EscrowService) CreateMilestone(
	ctx context.Context,
	caller string,
	projectID uint64,
	req *models.CreateMilestoneRequest,
) (*models.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var milestone *models.Milestone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		project, err := led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		if project.Client != caller {
			return models.ErrUnauthorized
		}
		if project.Status != models.ProjectStatusInProgress {
			return models.ErrProjectNotInProgress
		}
		if req.Description == "" {
			return models.ErrEmptyDescription
		}
		if req.Amount == 0 {
			return models.ErrInvalidAmount
		}

		existing, err := led.ProjectMilestones(ctx, projectID)
		if err != nil {
			return err
		}
		total := req.Amount
		for _, m := range existing {
			total += m.Amount
		}
		if total > project.Budget {
			return models.ErrBudgetExceeded
		}

		id, err := led.NextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate milestone id: %w", err)
		}

		milestone = &models.Milestone{
			ID:          id,
			ProjectID:   projectID,
			Description: req.Description,
			Amount:      req.Amount,
			Status:      models.MilestoneStatusPending,
			CreatedAt:   time.Now(),
		}
		if err := led.SaveMilestone(ctx, milestone); err != nil {
			return err
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventMilestoneCreated,
			ProjectID: projectID,
			EntityID:  id,
			Actor:     caller,
			Amount:    req.Amount,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Milestone %d created on project %d for %d", milestone.ID, projectID, milestone.Amount)
	return milestone, nil
}

// SubmitMilestone marks a milestone as delivered by the freelancer. Rejected
// milestones can be resubmitted after rework.
func (s *EscrowService) SubmitMilestone(
	ctx context.Context,
	caller string,
	projectID uint64,
	milestoneID uint64,
) (*models.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var milestone *models.Milestone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		project, err := led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		if project.Freelancer == nil || *project.Freelancer != caller {
			return models.ErrUnauthorized
		}
		if project.Status != models.ProjectStatusInProgress {
			return models.ErrProjectNotInProgress
		}

		milestone, err = led.GetMilestone(ctx, milestoneID)
		if err != nil {
			return err
		}
		if milestone.ProjectID != projectID {
			return models.ErrInvalidMilestone
		}
		if milestone.Status != models.MilestoneStatusPending && milestone.Status != models.MilestoneStatusRejected {
			return models.ErrMilestoneNotSubmittable
		}

		milestone.Status = models.MilestoneStatusSubmitted
		if err := led.SaveMilestone(ctx, milestone); err != nil {
			return err
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventMilestoneSubmit,
			ProjectID: projectID,
			EntityID:  milestoneID,
			Actor:     caller,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Milestone %d submitted on project %d", milestoneID, projectID)
	return milestone, nil
}

// ApproveMilestone releases the milestone amount to the freelancer, minus the
// platform fee. Approving the last unapproved milestone completes the
// project, provided the project has at least one milestone.
func (s *EscrowService) ApproveMilestone(
	ctx context.Context,
	caller string,
	projectID uint64,
	milestoneID uint64,
) (*models.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		milestone *models.Milestone
		release   *models.EscrowTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		project, err := led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		if project.Client != caller {
			return models.ErrUnauthorized
		}
		if project.Status != models.ProjectStatusInProgress {
			return models.ErrProjectNotInProgress
		}

		milestone, err = led.GetMilestone(ctx, milestoneID)
		if err != nil {
			return err
		}
		if milestone.ProjectID != projectID {
			return models.ErrInvalidMilestone
		}
		if milestone.Status != models.MilestoneStatusSubmitted {
			return models.ErrMilestoneNotSubmitted
		}

		milestone.Status = models.MilestoneStatusApproved
		if err := led.SaveMilestone(ctx, milestone); err != nil {
			return err
		}

		config, err := led.GetConfig(ctx)
		if err != nil {
			return err
		}
		release, err = s.payouts.ReleaseMilestone(ctx, led, project, milestone, config.PlatformFeeBps)
		if err != nil {
			return err
		}

		// Complete the project once every milestone is approved
		milestones, err := led.ProjectMilestones(ctx, projectID)
		if err != nil {
			return err
		}
		allApproved := true
		for _, m := range milestones {
			if m.Status != models.MilestoneStatusApproved {
				allApproved = false
				break
			}
		}
		if allApproved && len(milestones) > 0 {
			project.Status = models.ProjectStatusCompleted
			if err := led.SaveProject(ctx, project); err != nil {
				return err
			}
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventMilestoneApproved,
			ProjectID: projectID,
			EntityID:  milestoneID,
			Actor:     caller,
			Amount:    milestone.Amount,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Milestone %d approved on project %d, releasing %d", milestoneID, projectID, milestone.Amount)
	s.payouts.Submit(ctx, s.db, release)
	return milestone, nil
}

// RejectMilestone sends a submitted milestone back to the freelancer for
// rework. The freelancer can resubmit it afterwards.
func (s *EscrowService) RejectMilestone(
	ctx context.Context,
	caller string,
	projectID uint64,
	milestoneID uint64,
) (*models.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var milestone *models.Milestone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		project, err := led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		if project.Client != caller {
			return models.ErrUnauthorized
		}
		if project.Status != models.ProjectStatusInProgress {
			return models.ErrProjectNotInProgress
		}

		milestone, err = led.GetMilestone(ctx, milestoneID)
		if err != nil {
			return err
		}
		if milestone.ProjectID != projectID {
			return models.ErrInvalidMilestone
		}
		if milestone.Status != models.MilestoneStatusSubmitted {
			return models.ErrMilestoneNotSubmitted
		}

		milestone.Status = models.MilestoneStatusRejected
		if err := led.SaveMilestone(ctx, milestone); err != nil {
			return err
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventMilestoneRejected,
			ProjectID: projectID,
			EntityID:  milestoneID,
			Actor:     caller,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Milestone %d rejected on project %d", milestoneID, projectID)
	return milestone, nil
}
