package jobs

import (
	"context"
	"log"
	"time"

	"freelance-escrow/internal/repository"
	"freelance-escrow/internal/services"

	"gorm.io/gorm"
)

// PayoutRetrier re-submits booked releases and refunds that never received an
// on-chain signature, e.g. because the RPC node was down at approval time.
type PayoutRetrier struct {
	db       *gorm.DB
	ledger   *repository.Ledger
	payouts  *services.PayoutService
	interval time.Duration
	stopChan chan struct{}
}

// NewPayoutRetrier creates a new payout retry job
func NewPayoutRetrier(db *gorm.DB, payouts *services.PayoutService, interval time.Duration) *PayoutRetrier {
	return &PayoutRetrier{
		db:       db,
		ledger:   repository.NewLedger(db),
		payouts:  payouts,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the retry loop
func (pr *PayoutRetrier) Start() {
	log.Printf("[PayoutRetrier] Starting payout retry job (interval: %v)", pr.interval)

	ticker := time.NewTicker(pr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pr.retryPending()
		case <-pr.stopChan:
			log.Println("[PayoutRetrier] Stopping payout retry job")
			return
		}
	}
}

// Stop stops the retry loop
func (pr *PayoutRetrier) Stop() {
	close(pr.stopChan)
}

// retryPending finds unsubmitted payouts and pushes them through the custody
// wallet again
func (pr *PayoutRetrier) retryPending() {
	ctx := context.Background()

	pending, err := pr.ledger.PendingPayouts(ctx, 100)
	if err != nil {
		log.Printf("[PayoutRetrier] Error fetching pending payouts: %v", err)
		return
	}

	if len(pending) == 0 {
		return
	}

	log.Printf("[PayoutRetrier] Retrying %d pending payouts", len(pending))

	for _, escrowTx := range pending {
		pr.payouts.Submit(ctx, pr.db, escrowTx)
	}
}
