package models

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EscrowTransactionType string

const (
	EscrowTransactionTypeDeposit EscrowTransactionType = "DEPOSIT"
	EscrowTransactionTypeRelease EscrowTransactionType = "RELEASE"
	EscrowTransactionTypeFee     EscrowTransactionType = "FEE"
	EscrowTransactionTypeRefund  EscrowTransactionType = "REFUND"
)

// amountScale is the number of lamports per SOL. All stored amounts are
// lamports; display projections convert to SOL.
const amountScale = 1_000_000_000

// DisplayAmount converts lamports to SOL.
func DisplayAmount(base uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(base), 0).
		Div(decimal.NewFromInt(amountScale))
}

// EscrowTransaction is the fund-movement ledger for a project: the deposit
// made at creation, per-milestone releases and fee cuts, and refunds on
// cancellation. TxHash is filled once the on-chain transfer is submitted.
type EscrowTransaction struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uint64                `gorm:"not null;index" json:"project_id"`
	MilestoneID *uint64               `json:"milestone_id,omitempty"`
	Type        EscrowTransactionType `gorm:"size:50;not null" json:"type"`
	Address     string                `gorm:"size:255;not null;index" json:"address"`
	Amount      uint64                `gorm:"not null" json:"amount"`
	TxHash      *string               `gorm:"size:255" json:"tx_hash,omitempty"`
	CreatedAt   time.Time             `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EscrowTransaction) TableName() string {
	return "escrow_transactions"
}
