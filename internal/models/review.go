package models

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Review is left by one party of a completed project about the other.
type Review struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProjectID uint64    `gorm:"not null;index:idx_reviews_project_reviewer,unique" json:"project_id"`
	Reviewer  string    `gorm:"size:255;not null;index:idx_reviews_project_reviewer,unique" json:"reviewer"`
	Reviewee  string    `gorm:"size:255;not null;index" json:"reviewee"`
	Rating    uint8     `gorm:"not null" json:"rating"` // 1-5
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// UserStats aggregates the ratings an account has received. VotingPower is
// the integer average of received ratings and weighs the account's dispute
// votes; accounts with no rating history vote with weight 1.
type UserStats struct {
	Address     string    `gorm:"primaryKey;size:255" json:"address"`
	RatingTotal uint64    `gorm:"not null;default:0" json:"rating_total"`
	RatingCount uint64    `gorm:"not null;default:0" json:"rating_count"`
	VotingPower uint64    `gorm:"not null;default:1" json:"voting_power"`
	UpdatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

// AverageRating returns the exact average received rating for display,
// e.g. 4.5 for ratings 5 and 4. Workflow logic only ever uses the integer
// VotingPower.
func (s *UserStats) AverageRating() decimal.Decimal {
	if s.RatingCount == 0 {
		return decimal.Zero
	}
	total := decimal.NewFromBigInt(new(big.Int).SetUint64(s.RatingTotal), 0)
	count := decimal.NewFromBigInt(new(big.Int).SetUint64(s.RatingCount), 0)
	return total.DivRound(count, 2)
}

// SubmitReviewRequest represents a review of the other party of a completed
// project
type SubmitReviewRequest struct {
	Rating  uint8  `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// UserRatingResponse is the public rating projection for an account
type UserRatingResponse struct {
	Address       string `json:"address"`
	Rating        uint64 `json:"rating"` // integer average, 0 with no history
	RatingAverage string `json:"rating_average"`
	Count         uint64 `json:"count"`
}
