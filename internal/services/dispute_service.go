package services

import (
	"context"
	"log"
	"sync"
	"time"

	"freelance-escrow/internal/models"
	"freelance-escrow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// disputeQuorum is the minimum number of distinct voters before a tally is
// evaluated for resolution.
const disputeQuorum = 3

// DisputeService runs the quorum-based arbitration of stalled projects. The
// mutex serializes votes so no concurrent tally update is lost.
type DisputeService struct {
	db      *gorm.DB
	ledger  *repository.Ledger
	payouts *PayoutService
	mu      sync.Mutex
}

func NewDisputeService(db *gorm.DB, payouts *PayoutService) *DisputeService {
	return &DisputeService{
		db:      db,
		ledger:  repository.NewLedger(db),
		payouts: payouts,
	}
}

// CreateDispute freezes an in-progress project and opens it for community
// voting. Either party can initiate; the dispute is keyed by the project id.
func (s *DisputeService) CreateDispute(
	ctx context.Context,
	caller string,
	projectID uint64,
	req *models.CreateDisputeRequest,
) (*models.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dispute *models.Dispute
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		project, err := led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		isClient := project.Client == caller
		isFreelancer := project.Freelancer != nil && *project.Freelancer == caller
		if !isClient && !isFreelancer {
			return models.ErrUnauthorized
		}
		if project.Status != models.ProjectStatusInProgress {
			return models.ErrProjectNotInProgress
		}
		if req.Reason == "" {
			return models.ErrEmptyReason
		}

		dispute = &models.Dispute{
			ProjectID: projectID,
			Initiator: caller,
			Reason:    req.Reason,
			CreatedAt: time.Now(),
		}
		if err := led.SaveDispute(ctx, dispute); err != nil {
			return err
		}

		project.Status = models.ProjectStatusDisputed
		if err := led.SaveProject(ctx, project); err != nil {
			return err
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventDisputeCreated,
			ProjectID: projectID,
			EntityID:  projectID,
			Actor:     caller,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Dispute opened on project %d by %s", projectID, caller)
	return dispute, nil
}

// VoteOnDispute adds one weighted vote and, once three or more distinct
// voters have participated, attempts resolution. A strictly greater client
// tally cancels the project and refunds the unreleased budget; a strictly
// greater freelancer tally resumes it. An exact tie leaves the dispute open
// and every later vote re-runs the same evaluation.
func (s *DisputeService) VoteOnDispute(
	ctx context.Context,
	voter string,
	projectID uint64,
	voteForClient bool,
) (*models.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		dispute *models.Dispute
		refund  *models.EscrowTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		project, err := led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		if project.Status != models.ProjectStatusDisputed {
			return models.ErrProjectNotDisputed
		}
		if project.Client == voter || (project.Freelancer != nil && *project.Freelancer == voter) {
			return models.ErrUnauthorized
		}

		dispute, err = led.GetDispute(ctx, projectID)
		if err != nil {
			return err
		}
		if dispute.Resolved {
			return models.ErrDisputeResolved
		}

		voted, err := led.HasVoted(ctx, projectID, voter)
		if err != nil {
			return err
		}
		if voted {
			return models.ErrAlreadyVoted
		}

		power, err := led.VotingPower(ctx, voter)
		if err != nil {
			return err
		}

		if voteForClient {
			dispute.VotesForClient += power
		} else {
			dispute.VotesForFreelancer += power
		}
		dispute.VoterCount++

		if err := led.SaveVote(ctx, &models.DisputeVote{
			ProjectID: projectID,
			Voter:     voter,
			ForClient: voteForClient,
			Weight:    power,
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}

		if err := led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventDisputeVoted,
			ProjectID: projectID,
			EntityID:  projectID,
			Actor:     voter,
			Amount:    power,
		}); err != nil {
			return err
		}

		if dispute.VoterCount >= disputeQuorum && dispute.VotesForClient != dispute.VotesForFreelancer {
			clientWins := dispute.VotesForClient > dispute.VotesForFreelancer
			refund, err = s.resolve(ctx, led, project, dispute, clientWins)
			if err != nil {
				return err
			}
		}

		return led.SaveDispute(ctx, dispute)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Vote recorded on project %d dispute by %s (for client: %v)", projectID, voter, voteForClient)
	s.payouts.Submit(ctx, s.db, refund)
	return dispute, nil
}

// resolve applies the arbitration outcome. Client win: the project is
// cancelled and whatever the milestones have not already released goes back
// to the client. Freelancer win: the project resumes where it stood.
func (s *DisputeService) resolve(
	ctx context.Context,
	led *repository.Ledger,
	project *models.Project,
	dispute *models.Dispute,
	clientWins bool,
) (*models.EscrowTransaction, error) {
	dispute.Resolved = true

	var refund *models.EscrowTransaction
	if clientWins {
		project.Status = models.ProjectStatusCancelled

		released, err := led.ReleasedTotal(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		if remaining := project.Budget - released; remaining > 0 {
			refund, err = s.payouts.RecordRefund(ctx, led, project, project.Client, remaining)
			if err != nil {
				return nil, err
			}
		}
	} else {
		project.Status = models.ProjectStatusInProgress
	}

	if err := led.SaveProject(ctx, project); err != nil {
		return nil, err
	}

	winner := project.Client
	if !clientWins && project.Freelancer != nil {
		winner = *project.Freelancer
	}
	if err := led.AppendEvent(ctx, &models.EscrowEvent{
		ID:        uuid.New(),
		Type:      models.EventDisputeResolved,
		ProjectID: project.ID,
		EntityID:  project.ID,
		Actor:     winner,
	}); err != nil {
		return nil, err
	}

	log.Printf("Dispute on project %d resolved, winner %s", project.ID, winner)
	return refund, nil
}
