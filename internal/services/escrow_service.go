package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"freelance-escrow/internal/models"
	"freelance-escrow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EscrowService is the workflow controller for the project lifecycle. Every
// command validates the caller and the current state inside one database
// transaction, so a failed precondition leaves no partial write behind; the
// mutex keeps concurrent commands from interleaving their reads and writes.
type EscrowService struct {
	db      *gorm.DB
	ledger  *repository.Ledger
	payouts *PayoutService
	mu      sync.Mutex
}

func NewEscrowService(db *gorm.DB, payouts *PayoutService) *EscrowService {
	return &EscrowService{
		db:      db,
		ledger:  repository.NewLedger(db),
		payouts: payouts,
	}
}

// CreateProject opens a new project funded with the attached deposit. The
// deposit becomes the immutable project budget.
func (s *EscrowService) CreateProject(
	ctx context.Context,
	client string,
	req *models.CreateProjectRequest,
) (*models.Project, error) {
	if req.Title == "" {
		return nil, models.ErrEmptyTitle
	}
	if req.Description == "" {
		return nil, models.ErrEmptyDescription
	}
	if req.DepositAmount == 0 {
		return nil, models.ErrInsufficientFunds
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var project *models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		id, err := led.NextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate project id: %w", err)
		}

		now := time.Now()
		project = &models.Project{
			ID:          id,
			Client:      client,
			Title:       req.Title,
			Description: req.Description,
			Budget:      req.DepositAmount,
			Deadline:    now.Add(time.Duration(req.DeadlineSeconds) * time.Second),
			Status:      models.ProjectStatusOpen,
			CreatedAt:   now,
		}
		if err := led.SaveProject(ctx, project); err != nil {
			return err
		}

		if err := led.AddProjectMember(ctx, id, client, "client"); err != nil {
			return err
		}

		if err := s.payouts.RecordDeposit(ctx, led, project); err != nil {
			return err
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventProjectCreated,
			ProjectID: id,
			EntityID:  id,
			Actor:     client,
			Amount:    project.Budget,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Project %d created by %s with budget %d", project.ID, client, project.Budget)
	return project, nil
}

// CancelProject cancels an open project and refunds the full deposit to the
// client. Only open projects can be cancelled directly; a running project can
// only end through milestones or a dispute.
func (s *EscrowService) CancelProject(ctx context.Context, caller string, projectID uint64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		project *models.Project
		refund  *models.EscrowTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		var err error
		project, err = led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		if project.Client != caller {
			return models.ErrUnauthorized
		}
		if project.Status != models.ProjectStatusOpen {
			return models.ErrProjectNotOpen
		}

		project.Status = models.ProjectStatusCancelled
		if err := led.SaveProject(ctx, project); err != nil {
			return err
		}

		refund, err = s.payouts.RecordRefund(ctx, led, project, project.Client, project.Budget)
		if err != nil {
			return err
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventProjectCancelled,
			ProjectID: projectID,
			EntityID:  projectID,
			Actor:     caller,
			Amount:    project.Budget,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Project %d cancelled by client %s", projectID, caller)
	s.payouts.Submit(ctx, s.db, refund)
	return project, nil
}
