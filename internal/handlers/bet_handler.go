package handlers

import (
	"net/http"

	"betting-market/internal/auth"
	"betting-market/internal/models"
	"betting-market/internal/services"

	"github.com/gin-gonic/gin"
)

type BetHandler struct {
	betService    *services.BetService
	payoutService *services.PayoutService
}

func NewBetHandler(betService *services.BetService, payoutService *services.PayoutService) *BetHandler {
	return &BetHandler{
		betService:    betService,
		payoutService: payoutService,
	}
}

// PlaceBet stakes on one outcome of an open market
// POST /api/markets/:id/bets
func (h *BetHandler) PlaceBet(c *gin.Context) {
	bettor, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	position, err := h.betService.PlaceBet(c.Request.Context(), c.Param("id"), bettor, req.OutcomeIndex, req.Amount, req.DepositTxSignature)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    position.ToResponse(),
	})
}

// Claim pays out the caller's share of a confirmed market
// POST /api/markets/:id/claim
func (h *BetHandler) Claim(c *gin.Context) {
	bettor, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	payout, err := h.payoutService.Claim(c.Request.Context(), c.Param("id"), bettor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payout":  payout,
	})
}

// GetPosition returns the caller's position on a market
// GET /api/markets/:id/position
func (h *BetHandler) GetPosition(c *gin.Context) {
	bettor, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	position, err := h.betService.GetPosition(c.Request.Context(), c.Param("id"), bettor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    position.ToResponse(),
	})
}
