package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"freelance-escrow/internal/models"
)

func setupLedger(t *testing.T) *Ledger {
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
		&models.Project{},
		&models.ProjectMember{},
		&models.UserStats{},
		&models.EscrowTransaction{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return NewLedger(db)
}

func TestNextIDMonotonic(t *testing.T) {
	led := setupLedger(t)
	ctx := context.Background()

	if err := led.SeedCounter(ctx); err != nil {
		t.Fatalf("SeedCounter failed: %v", err)
	}

	for want := uint64(1); want <= 5; want++ {
		id, err := led.NextID(ctx)
		if err != nil {
			t.Fatalf("NextID failed: %v", err)
		}
		if id != want {
			t.Errorf("expected id %d, got %d", want, id)
		}
	}
}

func TestListProjectsPagination(t *testing.T) {
	led := setupLedger(t)
	ctx := context.Background()

	for i := uint64(1); i <= 5; i++ {
		project := &models.Project{
			ID:          i,
			Client:      "client",
			Title:       fmt.Sprintf("Project %d", i),
			Description: "listing fixture",
			Budget:      100,
			Deadline:    time.Now().Add(time.Hour),
			Status:      models.ProjectStatusOpen,
		}
		if err := led.SaveProject(ctx, project); err != nil {
			t.Fatalf("SaveProject failed: %v", err)
		}
	}

	page, err := led.ListProjects(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(page) != 2 || page[0].ID != 3 || page[1].ID != 4 {
		t.Errorf("expected projects [3 4], got %v", page)
	}

	// Cursor past the end yields an empty page
	empty, err := led.ListProjects(ctx, 5, 10)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty page, got %d projects", len(empty))
	}
}

func TestGetProjectNotFound(t *testing.T) {
	led := setupLedger(t)

	if _, err := led.GetProject(context.Background(), 99); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVotingPowerDefaults(t *testing.T) {
	led := setupLedger(t)
	ctx := context.Background()

	power, err := led.VotingPower(ctx, "fresh-wallet")
	if err != nil {
		t.Fatalf("VotingPower failed: %v", err)
	}
	if power != 1 {
		t.Errorf("expected default power 1, got %d", power)
	}

	if err := led.SaveUserStats(ctx, &models.UserStats{
		Address:     "rated-wallet",
		RatingTotal: 9,
		RatingCount: 2,
		VotingPower: 4,
	}); err != nil {
		t.Fatalf("SaveUserStats failed: %v", err)
	}

	power, err = led.VotingPower(ctx, "rated-wallet")
	if err != nil {
		t.Fatalf("VotingPower failed: %v", err)
	}
	if power != 4 {
		t.Errorf("expected power 4, got %d", power)
	}
}

func TestPendingPayouts(t *testing.T) {
	led := setupLedger(t)
	ctx := context.Background()

	hash := "sig"
	rows := []*models.EscrowTransaction{
		{ID: uuid.New(), ProjectID: 1, Type: models.EscrowTransactionTypeDeposit, Address: "a", Amount: 10},
		{ID: uuid.New(), ProjectID: 1, Type: models.EscrowTransactionTypeRelease, Address: "b", Amount: 20},
		{ID: uuid.New(), ProjectID: 1, Type: models.EscrowTransactionTypeRelease, Address: "c", Amount: 30, TxHash: &hash},
		{ID: uuid.New(), ProjectID: 1, Type: models.EscrowTransactionTypeRefund, Address: "d", Amount: 40},
	}
	for _, row := range rows {
		if err := led.SaveEscrowTransaction(ctx, row); err != nil {
			t.Fatalf("SaveEscrowTransaction failed: %v", err)
		}
	}

	pending, err := led.PendingPayouts(ctx, 10)
	if err != nil {
		t.Fatalf("PendingPayouts failed: %v", err)
	}
	// Deposits and already-submitted releases are excluded
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending payouts, got %d", len(pending))
	}
	for _, p := range pending {
		if p.TxHash != nil || p.Type == models.EscrowTransactionTypeDeposit {
			t.Errorf("unexpected pending row: %+v", p)
		}
	}
}
