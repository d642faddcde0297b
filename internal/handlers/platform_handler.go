package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"freelance-escrow/internal/auth"
	"freelance-escrow/internal/models"
	"freelance-escrow/internal/services"
)

// PlatformHandler handles platform configuration endpoints
type PlatformHandler struct {
	platform *services.PlatformService
}

func NewPlatformHandler(platform *services.PlatformService) *PlatformHandler {
	return &PlatformHandler{platform: platform}
}

// GetConfig returns the platform configuration
// GET /api/config
func (h *PlatformHandler) GetConfig(c *gin.Context) {
	config, err := h.platform.GetConfig(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, config)
}

// UpdateFee changes the platform fee, owner only
// PUT /api/admin/fee
func (h *PlatformHandler) UpdateFee(c *gin.Context) {
	wallet, ok := auth.GetWalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config, err := h.platform.UpdatePlatformFee(c.Request.Context(), wallet, *req.NewFeeBps)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, config)
}
