package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-escrow/internal/auth"
	"freelance-escrow/internal/models"
	"freelance-escrow/internal/services"
)

// DisputeHandler handles dispute creation and voting
type DisputeHandler struct {
	disputes *services.DisputeService
	queries  *services.QueryService
}

func NewDisputeHandler(disputes *services.DisputeService, queries *services.QueryService) *DisputeHandler {
	return &DisputeHandler{
		disputes: disputes,
		queries:  queries,
	}
}

// CreateDispute freezes an in-progress project for arbitration
// POST /api/projects/:id/dispute
func (h *DisputeHandler) CreateDispute(c *gin.Context) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CreateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dispute, err := h.disputes.CreateDispute(c.Request.Context(), wallet, projectID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dispute)
}

// VoteOnDispute records one weighted vote on an open dispute
// POST /api/projects/:id/dispute/votes
func (h *DisputeHandler) VoteOnDispute(c *gin.Context) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dispute, err := h.disputes.VoteOnDispute(c.Request.Context(), wallet, projectID, *req.VoteForClient)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// GetDispute returns the dispute on a project with its voters
// GET /api/projects/:id/dispute
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	dispute, err := h.queries.GetDispute(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}
