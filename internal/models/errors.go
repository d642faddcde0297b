package models

import "errors"

// Workflow errors. Every failed command surfaces exactly one of these; the
// HTTP layer maps them to status codes with errors.Is.
var (
	// Wrong actor for the operation
	ErrUnauthorized = errors.New("unauthorized")

	// Invalid input
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrEmptyDescription  = errors.New("description cannot be empty")
	ErrEmptyReason       = errors.New("dispute reason cannot be empty")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("project must be funded with a non-zero deposit")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidFee        = errors.New("platform fee cannot exceed 1000 basis points")
	ErrInvalidWallet     = errors.New("invalid wallet address")

	// Operation attempted from a state that does not permit it
	ErrProjectNotOpen          = errors.New("project is not open")
	ErrProjectNotInProgress    = errors.New("project is not in progress")
	ErrProjectNotDisputed      = errors.New("project is not disputed")
	ErrProjectNotCompleted     = errors.New("project is not completed")
	ErrProposalNotPending      = errors.New("proposal is not pending")
	ErrInvalidProposal         = errors.New("proposal does not belong to this project")
	ErrInvalidMilestone        = errors.New("milestone does not belong to this project")
	ErrMilestoneNotSubmittable = errors.New("milestone is not pending or rejected")
	ErrMilestoneNotSubmitted   = errors.New("milestone is not submitted")

	// Referenced id does not exist
	ErrNotFound = errors.New("not found")

	// Milestone sum would exceed the project budget, or a proposal prices
	// above it
	ErrBudgetExceeded = errors.New("amount exceeds project budget")

	// Arbiter re-entry guards
	ErrAlreadyVoted    = errors.New("account has already voted on this dispute")
	ErrDisputeResolved = errors.New("dispute is already resolved")
	ErrAlreadyReviewed = errors.New("account has already reviewed this project")
)
