package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"freelance-escrow/internal/models"
)

// respondError maps workflow errors onto HTTP status codes. Unknown errors
// become a 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrEmptyTitle),
		errors.Is(err, models.ErrEmptyDescription),
		errors.Is(err, models.ErrEmptyReason),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInvalidRating),
		errors.Is(err, models.ErrInvalidFee),
		errors.Is(err, models.ErrInvalidWallet):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrProjectNotOpen),
		errors.Is(err, models.ErrProjectNotInProgress),
		errors.Is(err, models.ErrProjectNotDisputed),
		errors.Is(err, models.ErrProjectNotCompleted),
		errors.Is(err, models.ErrProposalNotPending),
		errors.Is(err, models.ErrInvalidProposal),
		errors.Is(err, models.ErrInvalidMilestone),
		errors.Is(err, models.ErrMilestoneNotSubmittable),
		errors.Is(err, models.ErrMilestoneNotSubmitted),
		errors.Is(err, models.ErrBudgetExceeded),
		errors.Is(err, models.ErrAlreadyVoted),
		errors.Is(err, models.ErrDisputeResolved),
		errors.Is(err, models.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// pathID parses a numeric path parameter. A false return means the response
// has already been written.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
