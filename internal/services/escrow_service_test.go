package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"freelance-escrow/internal/models"
)

const (
	testOwner      = "owner-wallet"
	testClient     = "client-wallet"
	testFreelancer = "freelancer-wallet"
)

func newTestDB(t *testing.T) *gorm.DB {
	// Unique shared-cache name per test so parallel tests don't share state
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.PlatformConfig{},
		&models.IDCounter{},
		&models.User{},
		&models.UserStats{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Proposal{},
		&models.Milestone{},
		&models.Dispute{},
		&models.DisputeVote{},
		&models.Review{},
		&models.EscrowTransaction{},
		&models.EscrowEvent{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

type testEnv struct {
	db       *gorm.DB
	escrow   *EscrowService
	disputes *DisputeService
	reviews  *ReviewService
	platform *PlatformService
	queries  *QueryService
}

func newTestEnv(t *testing.T, feeBps uint64) *testEnv {
	db := newTestDB(t)

	// No custody wallet in tests, payouts stay ledger-only
	payouts := NewPayoutService(nil, testOwner)
	env := &testEnv{
		db:       db,
		escrow:   NewEscrowService(db, payouts),
		disputes: NewDisputeService(db, payouts),
		reviews:  NewReviewService(db),
		platform: NewPlatformService(db),
		queries:  NewQueryService(db),
	}

	if err := env.platform.EnsureInstantiated(context.Background(), testOwner, feeBps); err != nil {
		t.Fatalf("failed to instantiate platform: %v", err)
	}
	return env
}

// startProject creates a funded project, one accepted proposal and returns
// the project id.
func startProject(t *testing.T, env *testEnv, budget, price uint64) uint64 {
	ctx := context.Background()

	project, err := env.escrow.CreateProject(ctx, testClient, &models.CreateProjectRequest{
		Title:         "Landing page",
		Description:   "Design and build a landing page",
		DepositAmount: budget,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	proposal, err := env.escrow.SubmitProposal(ctx, testFreelancer, project.ID, &models.SubmitProposalRequest{
		Description:    "I can do this in a week",
		Price:          price,
		TimelineInDays: 7,
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}

	if _, err := env.escrow.AcceptProposal(ctx, testClient, project.ID, proposal.ID); err != nil {
		t.Fatalf("AcceptProposal failed: %v", err)
	}
	return project.ID
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t, 250)
	ctx := context.Background()

	projectID := startProject(t, env, 1000, 800)

	m1, err := env.escrow.CreateMilestone(ctx, testClient, projectID, &models.CreateMilestoneRequest{
		Description: "First half",
		Amount:      400,
	})
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}
	m2, err := env.escrow.CreateMilestone(ctx, testClient, projectID, &models.CreateMilestoneRequest{
		Description: "Second half",
		Amount:      400,
	})
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}

	if _, err := env.escrow.SubmitMilestone(ctx, testFreelancer, projectID, m1.ID); err != nil {
		t.Fatalf("SubmitMilestone failed: %v", err)
	}
	if _, err := env.escrow.ApproveMilestone(ctx, testClient, projectID, m1.ID); err != nil {
		t.Fatalf("ApproveMilestone failed: %v", err)
	}

	project, err := env.queries.GetProject(ctx, projectID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if project.Status != models.ProjectStatusInProgress {
		t.Errorf("expected IN_PROGRESS after first approval, got %s", project.Status)
	}

	if _, err := env.escrow.SubmitMilestone(ctx, testFreelancer, projectID, m2.ID); err != nil {
		t.Fatalf("SubmitMilestone failed: %v", err)
	}
	if _, err := env.escrow.ApproveMilestone(ctx, testClient, projectID, m2.ID); err != nil {
		t.Fatalf("ApproveMilestone failed: %v", err)
	}

	project, err = env.queries.GetProject(ctx, projectID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if project.Status != models.ProjectStatusCompleted {
		t.Errorf("expected COMPLETED after last approval, got %s", project.Status)
	}

	// Ledger: one deposit, two releases with a 2.5% fee each
	txs, err := env.queries.ProjectTransactions(ctx, projectID)
	if err != nil {
		t.Fatalf("ProjectTransactions failed: %v", err)
	}
	var deposits, releases, fees int
	var releasedTotal, feeTotal uint64
	for _, tx := range txs {
		switch tx.Type {
		case models.EscrowTransactionTypeDeposit:
			deposits++
		case models.EscrowTransactionTypeRelease:
			releases++
			releasedTotal += tx.Amount
		case models.EscrowTransactionTypeFee:
			fees++
			feeTotal += tx.Amount
		}
	}
	if deposits != 1 || releases != 2 || fees != 2 {
		t.Errorf("unexpected ledger shape: %d deposits, %d releases, %d fees", deposits, releases, fees)
	}
	if releasedTotal != 780 || feeTotal != 20 {
		t.Errorf("expected 780 released and 20 fees, got %d and %d", releasedTotal, feeTotal)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	if _, err := env.escrow.CreateProject(ctx, testClient, &models.CreateProjectRequest{
		Description:   "no title",
		DepositAmount: 100,
	}); !errors.Is(err, models.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}

	if _, err := env.escrow.CreateProject(ctx, testClient, &models.CreateProjectRequest{
		Title:       "No deposit",
		Description: "unfunded",
	}); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestCancelProject(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	project, err := env.escrow.CreateProject(ctx, testClient, &models.CreateProjectRequest{
		Title:         "Short lived",
		Description:   "will be cancelled",
		DepositAmount: 500,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if _, err := env.escrow.CancelProject(ctx, testFreelancer, project.ID); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for non-client cancel, got %v", err)
	}

	cancelled, err := env.escrow.CancelProject(ctx, testClient, project.ID)
	if err != nil {
		t.Fatalf("CancelProject failed: %v", err)
	}
	if cancelled.Status != models.ProjectStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}

	txs, err := env.queries.ProjectTransactions(ctx, project.ID)
	if err != nil {
		t.Fatalf("ProjectTransactions failed: %v", err)
	}
	var refunded uint64
	for _, tx := range txs {
		if tx.Type == models.EscrowTransactionTypeRefund {
			refunded += tx.Amount
		}
	}
	if refunded != 500 {
		t.Errorf("expected full 500 refund, got %d", refunded)
	}

	// Cancelled is terminal
	if _, err := env.escrow.CancelProject(ctx, testClient, project.ID); !errors.Is(err, models.ErrProjectNotOpen) {
		t.Errorf("expected ErrProjectNotOpen on double cancel, got %v", err)
	}
}

func TestProposalRules(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	project, err := env.escrow.CreateProject(ctx, testClient, &models.CreateProjectRequest{
		Title:         "API integration",
		Description:   "integrate a payment API",
		DepositAmount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if _, err := env.escrow.SubmitProposal(ctx, testClient, project.ID, &models.SubmitProposalRequest{
		Description: "bidding on my own project",
		Price:       500,
	}); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for self-bid, got %v", err)
	}

	if _, err := env.escrow.SubmitProposal(ctx, testFreelancer, project.ID, &models.SubmitProposalRequest{
		Description: "too expensive",
		Price:       1500,
	}); !errors.Is(err, models.ErrBudgetExceeded) {
		t.Errorf("expected ErrBudgetExceeded, got %v", err)
	}

	p1, err := env.escrow.SubmitProposal(ctx, testFreelancer, project.ID, &models.SubmitProposalRequest{
		Description: "first bid",
		Price:       900,
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}
	p2, err := env.escrow.SubmitProposal(ctx, "other-freelancer", project.ID, &models.SubmitProposalRequest{
		Description: "second bid",
		Price:       800,
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}

	if _, err := env.escrow.AcceptProposal(ctx, testClient, project.ID, p1.ID); err != nil {
		t.Fatalf("AcceptProposal failed: %v", err)
	}

	// Exactly one accepted, the sibling is rejected
	other, err := env.queries.GetProposal(ctx, p2.ID)
	if err != nil {
		t.Fatalf("GetProposal failed: %v", err)
	}
	if other.Status != models.ProposalStatusRejected {
		t.Errorf("expected sibling proposal REJECTED, got %s", other.Status)
	}

	// No bids once the project left OPEN
	if _, err := env.escrow.SubmitProposal(ctx, "late-freelancer", project.ID, &models.SubmitProposalRequest{
		Description: "too late",
		Price:       100,
	}); !errors.Is(err, models.ErrProjectNotOpen) {
		t.Errorf("expected ErrProjectNotOpen, got %v", err)
	}
	if _, err := env.escrow.AcceptProposal(ctx, testClient, project.ID, p2.ID); !errors.Is(err, models.ErrProjectNotOpen) {
		t.Errorf("expected ErrProjectNotOpen on second accept, got %v", err)
	}
}

func TestMilestoneBudgetConservation(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	projectID := startProject(t, env, 1000, 1000)

	if _, err := env.escrow.CreateMilestone(ctx, testClient, projectID, &models.CreateMilestoneRequest{
		Description: "phase one", Amount: 600,
	}); err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}
	if _, err := env.escrow.CreateMilestone(ctx, testClient, projectID, &models.CreateMilestoneRequest{
		Description: "phase two", Amount: 400,
	}); err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}

	// Budget is exhausted, the next milestone must fail and change nothing
	if _, err := env.escrow.CreateMilestone(ctx, testClient, projectID, &models.CreateMilestoneRequest{
		Description: "one too many", Amount: 1,
	}); !errors.Is(err, models.ErrBudgetExceeded) {
		t.Errorf("expected ErrBudgetExceeded, got %v", err)
	}

	milestones, err := env.queries.ProjectMilestones(ctx, projectID)
	if err != nil {
		t.Fatalf("ProjectMilestones failed: %v", err)
	}
	if len(milestones) != 2 {
		t.Errorf("expected 2 milestones after failed creation, got %d", len(milestones))
	}
}

func TestMilestoneResubmitAfterRejection(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	projectID := startProject(t, env, 1000, 800)
	m, err := env.escrow.CreateMilestone(ctx, testClient, projectID, &models.CreateMilestoneRequest{
		Description: "single deliverable", Amount: 800,
	})
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}

	// Approving before submission must fail and leave the milestone pending
	if _, err := env.escrow.ApproveMilestone(ctx, testClient, projectID, m.ID); !errors.Is(err, models.ErrMilestoneNotSubmitted) {
		t.Errorf("expected ErrMilestoneNotSubmitted, got %v", err)
	}

	if _, err := env.escrow.SubmitMilestone(ctx, testFreelancer, projectID, m.ID); err != nil {
		t.Fatalf("SubmitMilestone failed: %v", err)
	}
	if _, err := env.escrow.RejectMilestone(ctx, testClient, projectID, m.ID); err != nil {
		t.Fatalf("RejectMilestone failed: %v", err)
	}

	// Rejected work can be redone and resubmitted
	resubmitted, err := env.escrow.SubmitMilestone(ctx, testFreelancer, projectID, m.ID)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if resubmitted.Status != models.MilestoneStatusSubmitted {
		t.Errorf("expected SUBMITTED after resubmit, got %s", resubmitted.Status)
	}

	if _, err := env.escrow.ApproveMilestone(ctx, testClient, projectID, m.ID); err != nil {
		t.Fatalf("ApproveMilestone failed: %v", err)
	}

	project, err := env.queries.GetProject(ctx, projectID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if project.Status != models.ProjectStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", project.Status)
	}

	// Completed is terminal for milestone transitions
	if _, err := env.escrow.SubmitMilestone(ctx, testFreelancer, projectID, m.ID); !errors.Is(err, models.ErrProjectNotInProgress) {
		t.Errorf("expected ErrProjectNotInProgress, got %v", err)
	}
}

func TestSharedIDAllocation(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	project, err := env.escrow.CreateProject(ctx, testClient, &models.CreateProjectRequest{
		Title:         "First",
		Description:   "first entity",
		DepositAmount: 100,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if project.ID != 1 {
		t.Errorf("expected first id 1, got %d", project.ID)
	}

	proposal, err := env.escrow.SubmitProposal(ctx, testFreelancer, project.ID, &models.SubmitProposalRequest{
		Description: "bid",
		Price:       100,
	})
	if err != nil {
		t.Fatalf("SubmitProposal failed: %v", err)
	}
	// Proposals and projects draw from the same counter
	if proposal.ID != 2 {
		t.Errorf("expected interleaved id 2, got %d", proposal.ID)
	}

	second, err := env.escrow.CreateProject(ctx, testClient, &models.CreateProjectRequest{
		Title:         "Second",
		Description:   "second entity",
		DepositAmount: 100,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if second.ID != 3 {
		t.Errorf("expected id 3, got %d", second.ID)
	}
}

func TestConcurrentProjectCreationUniqueIDs(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	const n = 8
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[uint64]bool)
	)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			project, err := env.escrow.CreateProject(ctx, testClient, &models.CreateProjectRequest{
				Title:         "Parallel",
				Description:   "created under contention",
				DepositAmount: 100,
			})
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			ids[project.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if len(ids) != n {
		t.Errorf("expected %d distinct project ids, got %d", n, len(ids))
	}
}

func TestBudgetDisplayedInSOL(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	// 2.5 SOL deposited as lamports
	project, err := env.escrow.CreateProject(ctx, testClient, &models.CreateProjectRequest{
		Title:         "Priced in SOL",
		Description:   "display check",
		DepositAmount: 2_500_000_000,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	view, err := env.queries.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if view.BudgetDisplay != "2.5" {
		t.Errorf("expected budget display 2.5, got %s", view.BudgetDisplay)
	}
}
