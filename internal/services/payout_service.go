package services

import (
	"context"
	"errors"
	"log"
	"time"

	"freelance-escrow/internal/blockchain"
	"freelance-escrow/internal/models"
	"freelance-escrow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const feeBpsDenominator = 10_000

// PayoutService keeps the fund-movement ledger and pushes releases and
// refunds through the custody wallet. Ledger rows are written inside the
// caller's transaction; the on-chain transfer happens after commit and is
// best-effort, so a node outage never rolls back a state change.
type PayoutService struct {
	wallet     *blockchain.EscrowWallet
	feeAddress string
}

func NewPayoutService(wallet *blockchain.EscrowWallet, feeAddress string) *PayoutService {
	return &PayoutService{
		wallet:     wallet,
		feeAddress: feeAddress,
	}
}

// RecordDeposit books the client's funding deposit for a new project.
func (ps *PayoutService) RecordDeposit(
	ctx context.Context,
	led *repository.Ledger,
	project *models.Project,
) error {
	return led.SaveEscrowTransaction(ctx, &models.EscrowTransaction{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Type:      models.EscrowTransactionTypeDeposit,
		Address:   project.Client,
		Amount:    project.Budget,
		CreatedAt: time.Now(),
	})
}

// ReleaseMilestone books the milestone payout to the freelancer minus the
// platform fee, plus a separate fee row when the fee is non-zero. Returns the
// release row so the caller can submit it on-chain after commit.
func (ps *PayoutService) ReleaseMilestone(
	ctx context.Context,
	led *repository.Ledger,
	project *models.Project,
	milestone *models.Milestone,
	feeBps uint64,
) (*models.EscrowTransaction, error) {
	if project.Freelancer == nil {
		return nil, models.ErrInvalidProposal
	}

	fee := milestone.Amount * feeBps / feeBpsDenominator
	payout := milestone.Amount - fee

	release := &models.EscrowTransaction{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		MilestoneID: &milestone.ID,
		Type:        models.EscrowTransactionTypeRelease,
		Address:     *project.Freelancer,
		Amount:      payout,
		CreatedAt:   time.Now(),
	}
	if err := led.SaveEscrowTransaction(ctx, release); err != nil {
		return nil, err
	}

	if fee > 0 {
		feeTx := &models.EscrowTransaction{
			ID:          uuid.New(),
			ProjectID:   project.ID,
			MilestoneID: &milestone.ID,
			Type:        models.EscrowTransactionTypeFee,
			Address:     ps.feeAddress,
			Amount:      fee,
			CreatedAt:   time.Now(),
		}
		if err := led.SaveEscrowTransaction(ctx, feeTx); err != nil {
			return nil, err
		}
	}

	log.Printf("Milestone %d release booked: payout %d, fee %d (%d bps)", milestone.ID, payout, fee, feeBps)
	return release, nil
}

// RecordRefund books a refund of escrowed funds back to the recipient.
func (ps *PayoutService) RecordRefund(
	ctx context.Context,
	led *repository.Ledger,
	project *models.Project,
	recipient string,
	amount uint64,
) (*models.EscrowTransaction, error) {
	refund := &models.EscrowTransaction{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Type:      models.EscrowTransactionTypeRefund,
		Address:   recipient,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	if err := led.SaveEscrowTransaction(ctx, refund); err != nil {
		return nil, err
	}
	return refund, nil
}

// Submit pushes a booked release or refund through the custody wallet and
// stamps the ledger row with the signature. Failures are logged, not
// returned: the ledger row stays without a tx hash and can be retried by ops.
func (ps *PayoutService) Submit(ctx context.Context, db *gorm.DB, escrowTx *models.EscrowTransaction) {
	if escrowTx == nil || ps.wallet == nil {
		return
	}

	sig, err := ps.wallet.Transfer(ctx, escrowTx.Address, escrowTx.Amount)
	if err != nil {
		if errors.Is(err, blockchain.ErrNoCustodyWallet) {
			return
		}
		log.Printf("Warning: on-chain transfer for %s failed: %v", escrowTx.ID, err)
		return
	}

	escrowTx.TxHash = &sig
	if err := db.WithContext(ctx).Model(&models.EscrowTransaction{}).
		Where("id = ?", escrowTx.ID).
		Update("tx_hash", sig).Error; err != nil {
		log.Printf("Warning: failed to record tx hash for %s: %v", escrowTx.ID, err)
	}
}
