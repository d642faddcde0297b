package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-escrow/internal/auth"
	"freelance-escrow/internal/models"
	"freelance-escrow/internal/services"
)

// ProposalHandler handles freelancer bids on open projects
type ProposalHandler struct {
	escrow  *services.EscrowService
	queries *services.QueryService
}

func NewProposalHandler(escrow *services.EscrowService, queries *services.QueryService) *ProposalHandler {
	return &ProposalHandler{
		escrow:  escrow,
		queries: queries,
	}
}

// SubmitProposal records a bid on an open project
// POST /api/projects/:id/proposals
func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.escrow.SubmitProposal(c.Request.Context(), wallet, projectID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// AcceptProposal locks in one freelancer and starts the project
// POST /api/projects/:id/proposals/:proposalId/accept
func (h *ProposalHandler) AcceptProposal(c *gin.Context) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	proposalID, ok := pathID(c, "proposalId")
	if !ok {
		return
	}

	proposal, err := h.escrow.AcceptProposal(c.Request.Context(), wallet, projectID, proposalID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// GetProposal returns one proposal
// GET /api/proposals/:id
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	proposalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	proposal, err := h.queries.GetProposal(c.Request.Context(), proposalID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// ProjectProposals returns all proposals on a project
// GET /api/projects/:id/proposals
func (h *ProposalHandler) ProjectProposals(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	proposals, err := h.queries.ProjectProposals(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	ids, err := h.queries.ProjectProposalIDs(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal_ids": ids,
		"proposals":    proposals,
	})
}
