package services

import (
	"context"

	"freelance-escrow/internal/models"
	"freelance-escrow/internal/repository"

	"gorm.io/gorm"
)

// DefaultProjectPageSize is the page size used when a listing request does
// not specify a limit.
const DefaultProjectPageSize = 30

// QueryService serves the read side: entity lookups, listings and
// projections. Reads run outside command transactions and never mutate
// state.
type QueryService struct {
	ledger *repository.Ledger
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{ledger: repository.NewLedger(db)}
}

// ProjectView converts a project to its API projection.
func ProjectView(project *models.Project) *models.ProjectResponse {
	return &models.ProjectResponse{
		ID:            project.ID,
		Client:        project.Client,
		Title:         project.Title,
		Description:   project.Description,
		Budget:        project.Budget,
		BudgetDisplay: models.DisplayAmount(project.Budget).String(),
		Deadline:      project.Deadline,
		Status:        project.Status,
		Freelancer:    project.Freelancer,
		CreatedAt:     project.CreatedAt,
	}
}

// GetProject returns one project by id.
func (s *QueryService) GetProject(ctx context.Context, id uint64) (*models.ProjectResponse, error) {
	project, err := s.ledger.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return ProjectView(project), nil
}

// ListProjects pages through all projects in ascending id order. A zero
// startAfter begins at the first project; a zero limit applies the default
// page size.
func (s *QueryService) ListProjects(ctx context.Context, startAfter uint64, limit int) ([]*models.ProjectResponse, error) {
	if limit <= 0 {
		limit = DefaultProjectPageSize
	}
	projects, err := s.ledger.ListProjects(ctx, startAfter, limit)
	if err != nil {
		return nil, err
	}
	views := make([]*models.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		views = append(views, ProjectView(p))
	}
	return views, nil
}

// UserProjects returns every project the account participates in, as client
// or accepted freelancer.
func (s *QueryService) UserProjects(ctx context.Context, address string) ([]*models.ProjectResponse, error) {
	ids, err := s.ledger.UserProjectIDs(ctx, address)
	if err != nil {
		return nil, err
	}
	views := make([]*models.ProjectResponse, 0, len(ids))
	for _, id := range ids {
		project, err := s.ledger.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		views = append(views, ProjectView(project))
	}
	return views, nil
}

// UserProjectIDs returns just the project ids for an account.
func (s *QueryService) UserProjectIDs(ctx context.Context, address string) ([]uint64, error) {
	return s.ledger.UserProjectIDs(ctx, address)
}

// GetProposal returns one proposal by id.
func (s *QueryService) GetProposal(ctx context.Context, id uint64) (*models.Proposal, error) {
	return s.ledger.GetProposal(ctx, id)
}

// ProjectProposals returns all proposals submitted on a project.
func (s *QueryService) ProjectProposals(ctx context.Context, projectID uint64) ([]*models.Proposal, error) {
	if _, err := s.ledger.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.ledger.ProjectProposals(ctx, projectID)
}

// ProjectProposalIDs returns just the proposal ids on a project.
func (s *QueryService) ProjectProposalIDs(ctx context.Context, projectID uint64) ([]uint64, error) {
	return s.ledger.ProjectProposalIDs(ctx, projectID)
}

// GetMilestone returns one milestone by id.
func (s *QueryService) GetMilestone(ctx context.Context, id uint64) (*models.Milestone, error) {
	return s.ledger.GetMilestone(ctx, id)
}

// ProjectMilestones returns all milestones of a project.
func (s *QueryService) ProjectMilestones(ctx context.Context, projectID uint64) ([]*models.Milestone, error) {
	if _, err := s.ledger.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.ledger.ProjectMilestones(ctx, projectID)
}

// ProjectMilestoneIDs returns just the milestone ids of a project.
func (s *QueryService) ProjectMilestoneIDs(ctx context.Context, projectID uint64) ([]uint64, error) {
	return s.ledger.ProjectMilestoneIDs(ctx, projectID)
}

// GetDispute returns the dispute on a project together with its recorded
// voters.
func (s *QueryService) GetDispute(ctx context.Context, projectID uint64) (*models.DisputeResponse, error) {
	dispute, err := s.ledger.GetDispute(ctx, projectID)
	if err != nil {
		return nil, err
	}
	voters, err := s.ledger.DisputeVoters(ctx, projectID, dispute.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &models.DisputeResponse{
		ProjectID:          dispute.ProjectID,
		Initiator:          dispute.Initiator,
		Reason:             dispute.Reason,
		VotesForClient:     dispute.VotesForClient,
		VotesForFreelancer: dispute.VotesForFreelancer,
		Resolved:           dispute.Resolved,
		Voters:             voters,
		CreatedAt:          dispute.CreatedAt,
	}, nil
}

// ProjectTransactions returns the fund-movement history of a project.
func (s *QueryService) ProjectTransactions(ctx context.Context, projectID uint64) ([]*models.EscrowTransaction, error) {
	if _, err := s.ledger.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.ledger.ProjectTransactions(ctx, projectID)
}
