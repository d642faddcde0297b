package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"freelance-escrow/internal/auth"
	"freelance-escrow/internal/models"
	"freelance-escrow/internal/services"
)

// ProjectHandler handles project lifecycle endpoints
type ProjectHandler struct {
	escrow  *services.EscrowService
	queries *services.QueryService
}

func NewProjectHandler(escrow *services.EscrowService, queries *services.QueryService) *ProjectHandler {
	return &ProjectHandler{
		escrow:  escrow,
		queries: queries,
	}
}

// CreateProject opens a new funded project
// POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.escrow.CreateProject(c.Request.Context(), wallet, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, services.ProjectView(project))
}

// CancelProject cancels an open project and refunds the deposit
// POST /api/projects/:id/cancel
func (h *ProjectHandler) CancelProject(c *gin.Context) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.escrow.CancelProject(c.Request.Context(), wallet, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.ProjectView(project))
}

// GetProject returns one project
// GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.queries.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// ListProjects pages through all projects in id order
// GET /api/projects?start_after=0&limit=30
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	startAfter, _ := strconv.ParseUint(c.DefaultQuery("start_after", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	projects, err := h.queries.ListProjects(c.Request.Context(), startAfter, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// UserProjects returns every project an account participates in
// GET /api/users/:address/projects
func (h *ProjectHandler) UserProjects(c *gin.Context) {
	address := c.Param("address")

	projects, err := h.queries.UserProjects(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}
	ids, err := h.queries.UserProjectIDs(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project_ids": ids,
		"projects":    projects,
	})
}

// ProjectTransactions returns the fund-movement history of a project
// GET /api/projects/:id/transactions
func (h *ProjectHandler) ProjectTransactions(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	txs, err := h.queries.ProjectTransactions(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
