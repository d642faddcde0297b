package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-escrow/internal/auth"
	"freelance-escrow/internal/models"
	"freelance-escrow/internal/services"
)

// MilestoneHandler handles milestone creation, delivery and approval
type MilestoneHandler struct {
	escrow  *services.EscrowService
	queries *services.QueryService
}

func NewMilestoneHandler(escrow *services.EscrowService, queries *services.QueryService) *MilestoneHandler {
	return &MilestoneHandler{
		escrow:  escrow,
		queries: queries,
	}
}

// CreateMilestone carves a unit of work out of the project budget
// POST /api/projects/:id/milestones
func (h *MilestoneHandler) CreateMilestone(c *gin.Context) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	milestone, err := h.escrow.CreateMilestone(c.Request.Context(), wallet, projectID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, milestone)
}

// SubmitMilestone marks a milestone as delivered
// POST /api/projects/:id/milestones/:milestoneId/submit
func (h *MilestoneHandler) SubmitMilestone(c *gin.Context) {
	h.transition(c, h.escrow.SubmitMilestone)
}

// ApproveMilestone releases the milestone payout
// POST /api/projects/:id/milestones/:milestoneId/approve
func (h *MilestoneHandler) ApproveMilestone(c *gin.Context) {
	h.transition(c, h.escrow.ApproveMilestone)
}

// RejectMilestone sends a submitted milestone back for rework
// POST /api/projects/:id/milestones/:milestoneId/reject
func (h *MilestoneHandler) RejectMilestone(c *gin.Context) {
	h.transition(c, h.escrow.RejectMilestone)
}

func (h *MilestoneHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, caller string, projectID, milestoneID uint64) (*models.Milestone, error),
) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	milestoneID, ok := pathID(c, "milestoneId")
	if !ok {
		return
	}

	milestone, err := op(c.Request.Context(), wallet, projectID, milestoneID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, milestone)
}

// GetMilestone returns one milestone
// GET /api/milestones/:id
func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	milestoneID, ok := pathID(c, "id")
	if !ok {
		return
	}

	milestone, err := h.queries.GetMilestone(c.Request.Context(), milestoneID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, milestone)
}

// ProjectMilestones returns all milestones of a project
// GET /api/projects/:id/milestones
func (h *MilestoneHandler) ProjectMilestones(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	milestones, err := h.queries.ProjectMilestones(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	ids, err := h.queries.ProjectMilestoneIDs(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"milestone_ids": ids,
		"milestones":    milestones,
	})
}
