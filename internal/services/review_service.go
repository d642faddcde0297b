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

// ReviewService handles post-completion reviews and the rating aggregates
// that feed dispute voting power.
type ReviewService struct {
	db     *gorm.DB
	ledger *repository.Ledger
	mu     sync.Mutex
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		db:     db,
		ledger: repository.NewLedger(db),
	}
}

// SubmitReview lets one party of a completed project rate the other. Each
// party gets exactly one review per project; the reviewee's voting power is
// recomputed as the integer average of all ratings received so far.
func (s *ReviewService) SubmitReview(
	ctx context.Context,
	reviewer string,
	projectID uint64,
	req *models.SubmitReviewRequest,
) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, models.ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var review *models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		led := s.ledger.WithTx(tx)

		project, err := led.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		if project.Status != models.ProjectStatusCompleted {
			return models.ErrProjectNotCompleted
		}

		var reviewee string
		switch {
		case project.Client == reviewer:
			if project.Freelancer == nil {
				return models.ErrUnauthorized
			}
			reviewee = *project.Freelancer
		case project.Freelancer != nil && *project.Freelancer == reviewer:
			reviewee = project.Client
		default:
			return models.ErrUnauthorized
		}

		reviewed, err := led.HasReviewed(ctx, projectID, reviewer)
		if err != nil {
			return err
		}
		if reviewed {
			return models.ErrAlreadyReviewed
		}

		id, err := led.NextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate review id: %w", err)
		}

		review = &models.Review{
			ID:        id,
			ProjectID: projectID,
			Reviewer:  reviewer,
			Reviewee:  reviewee,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: time.Now(),
		}
		if err := led.SaveReview(ctx, review); err != nil {
			return err
		}

		stats, err := led.GetUserStats(ctx, reviewee)
		if err != nil {
			return err
		}
		stats.RatingTotal += uint64(req.Rating)
		stats.RatingCount++
		stats.VotingPower = stats.RatingTotal / stats.RatingCount
		stats.UpdatedAt = time.Now()
		if err := led.SaveUserStats(ctx, stats); err != nil {
			return err
		}

		return led.AppendEvent(ctx, &models.EscrowEvent{
			ID:        uuid.New(),
			Type:      models.EventReviewSubmitted,
			ProjectID: projectID,
			EntityID:  id,
			Actor:     reviewer,
			Amount:    uint64(req.Rating),
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Review %d submitted on project %d: %s rated %s %d/5", review.ID, projectID, reviewer, review.Reviewee, review.Rating)
	return review, nil
}

// UserRating returns the public rating projection for an account.
func (s *ReviewService) UserRating(ctx context.Context, address string) (*models.UserRatingResponse, error) {
	stats, err := s.ledger.GetUserStats(ctx, address)
	if err != nil {
		return nil, err
	}

	var rating uint64
	if stats.RatingCount > 0 {
		rating = stats.RatingTotal / stats.RatingCount
	}
	return &models.UserRatingResponse{
		Address:       address,
		Rating:        rating,
		RatingAverage: stats.AverageRating().String(),
		Count:         stats.RatingCount,
	}, nil
}
