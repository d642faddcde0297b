package services

import (
	"context"
	"errors"
	"testing"

	"freelance-escrow/internal/models"
)

// completeProject drives a project through a single milestone to COMPLETED.
func completeProject(t *testing.T, env *testEnv) uint64 {
	ctx := context.Background()

	projectID := startProject(t, env, 1000, 1000)
	m, err := env.escrow.CreateMilestone(ctx, testClient, projectID, &models.CreateMilestoneRequest{
		Description: "everything", Amount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}
	if _, err := env.escrow.SubmitMilestone(ctx, testFreelancer, projectID, m.ID); err != nil {
		t.Fatalf("SubmitMilestone failed: %v", err)
	}
	if _, err := env.escrow.ApproveMilestone(ctx, testClient, projectID, m.ID); err != nil {
		t.Fatalf("ApproveMilestone failed: %v", err)
	}
	return projectID
}

func TestSubmitReviewGuards(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	// Reviews only after completion
	runningID := startProject(t, env, 500, 500)
	if _, err := env.reviews.SubmitReview(ctx, testClient, runningID, &models.SubmitReviewRequest{
		Rating: 5,
	}); !errors.Is(err, models.ErrProjectNotCompleted) {
		t.Errorf("expected ErrProjectNotCompleted, got %v", err)
	}

	projectID := completeProject(t, env)

	// Only the two parties may review
	if _, err := env.reviews.SubmitReview(ctx, "bystander", projectID, &models.SubmitReviewRequest{
		Rating: 5,
	}); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	review, err := env.reviews.SubmitReview(ctx, testClient, projectID, &models.SubmitReviewRequest{
		Rating:  5,
		Comment: "great work",
	})
	if err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}
	if review.Reviewee != testFreelancer {
		t.Errorf("expected reviewee %s, got %s", testFreelancer, review.Reviewee)
	}

	// One review per party per project
	if _, err := env.reviews.SubmitReview(ctx, testClient, projectID, &models.SubmitReviewRequest{
		Rating: 4,
	}); !errors.Is(err, models.ErrAlreadyReviewed) {
		t.Errorf("expected ErrAlreadyReviewed, got %v", err)
	}

	// The freelancer reviews the client in return
	back, err := env.reviews.SubmitReview(ctx, testFreelancer, projectID, &models.SubmitReviewRequest{
		Rating: 4,
	})
	if err != nil {
		t.Fatalf("freelancer review failed: %v", err)
	}
	if back.Reviewee != testClient {
		t.Errorf("expected reviewee %s, got %s", testClient, back.Reviewee)
	}
}

func TestRatingAggregationFeedsVotingPower(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	// Two completed projects, the freelancer receives a 5 and a 4
	first := completeProject(t, env)
	second := completeProject(t, env)

	if _, err := env.reviews.SubmitReview(ctx, testClient, first, &models.SubmitReviewRequest{Rating: 5}); err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}
	if _, err := env.reviews.SubmitReview(ctx, testClient, second, &models.SubmitReviewRequest{Rating: 4}); err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}

	rating, err := env.reviews.UserRating(ctx, testFreelancer)
	if err != nil {
		t.Fatalf("UserRating failed: %v", err)
	}
	// Integer average of 5 and 4 truncates to 4
	if rating.Rating != 4 || rating.Count != 2 {
		t.Errorf("expected integer rating 4 from 2 reviews, got %d from %d", rating.Rating, rating.Count)
	}
	if rating.RatingAverage != "4.5" {
		t.Errorf("expected display average 4.5, got %s", rating.RatingAverage)
	}

	var stats models.UserStats
	if err := env.db.Where("address = ?", testFreelancer).First(&stats).Error; err != nil {
		t.Fatalf("failed to load stats: %v", err)
	}
	if stats.VotingPower != 4 {
		t.Errorf("expected voting power 4, got %d", stats.VotingPower)
	}
}

func TestUserRatingWithoutHistory(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	rating, err := env.reviews.UserRating(ctx, "unknown-wallet")
	if err != nil {
		t.Fatalf("UserRating failed: %v", err)
	}
	if rating.Rating != 0 || rating.Count != 0 {
		t.Errorf("expected empty rating, got %+v", rating)
	}
}
