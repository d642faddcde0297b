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

// SubmitProposal records a freelancer's bid on an open project. The client
// cannot bid on their own project and the price cannot exceed the budget.
func (s *EscrowService) SubmitProposal(
	ctx context.Context,
	freelancer string,
	projectID uint64,
	req *models.SubmitProposalRequest,
) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var proposal *models.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		project, err := led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		if project.Status != models.ProjectStatusOpen {
			return models.ErrProjectNotOpen
		}
		if project.Client == freelancer {
			return models.ErrUnauthorized
		}
		if req.Price > project.Budget {
			return models.ErrBudgetExceeded
		}
		if req.Description == "" {
			return models.ErrEmptyDescription
		}

		id, err := led.NextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate proposal id: %w", err)
		}

		proposal = &models.Proposal{
			ID:             id,
			ProjectID:      projectID,
			Freelancer:     freelancer,
			Description:    req.Description,
			Price:          req.Price,
			TimelineInDays: req.TimelineInDays,
			Status:         models.ProposalStatusPending,
			CreatedAt:      time.Now(),
		}
		if err := led.SaveProposal(ctx, proposal); err != nil {
			return err
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventProposalSubmitted,
			ProjectID: projectID,
			EntityID:  id,
			Actor:     freelancer,
			Amount:    req.Price,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Proposal %d submitted on project %d by %s", proposal.ID, projectID, freelancer)
	return proposal, nil
}

// AcceptProposal locks in one freelancer: the chosen proposal becomes
// ACCEPTED, every other pending proposal becomes REJECTED, and the project
// moves to IN_PROGRESS.
func (s *EscrowService) AcceptProposal(
	ctx context.Context,
	caller string,
	projectID uint64,
	proposalID uint64,
) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var proposal *models.Proposal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		project, err := led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		if project.Client != caller {
			return models.ErrUnauthorized
		}
		if project.Status != models.ProjectStatusOpen {
			return models.ErrProjectNotOpen
		}

		proposal, err = led.GetProposal(ctx, proposalID)
		if err != nil {
			return err
		}
		if proposal.ProjectID != projectID {
			return models.ErrInvalidProposal
		}
		if proposal.Status != models.ProposalStatusPending {
			return models.ErrProposalNotPending
		}

		proposal.Status = models.ProposalStatusAccepted
		if err := led.SaveProposal(ctx, proposal); err != nil {
			return err
		}

		project.Status = models.ProjectStatusInProgress
		project.Freelancer = &proposal.Freelancer
		if err := led.SaveProject(ctx, project); err != nil {
			return err
		}

		if err := led.AddProjectMember(ctx, projectID, proposal.Freelancer, "freelancer"); err != nil {
			return err
		}

		// Reject all sibling pending proposals
		siblings, err := led.ProjectProposals(ctx, projectID)
		if err != nil {
			return err
		}
		for _, other := range siblings {
			if other.ID == proposalID || other.Status != models.ProposalStatusPending {
				continue
			}
			other.Status = models.ProposalStatusRejected
			if err := led.SaveProposal(ctx, other); err != nil {
				return err
			}
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventProposalAccepted,
			ProjectID: projectID,
			EntityID:  proposalID,
			Actor:     caller,
			Amount:    proposal.Price,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Proposal %d accepted on project %d, freelancer %s", proposalID, projectID, proposal.Freelancer)
	return proposal, nil
}
