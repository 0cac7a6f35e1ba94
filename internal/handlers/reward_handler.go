package handlers

import (
	"tokenride/internal/middleware"
	"tokenride/internal/models"
	"tokenride/internal/services"
	"tokenride/internal/utils"

	"github.com/gin-gonic/gin"
)

type RewardHandler struct {
	rewardService *services.RewardService
}

func NewRewardHandler(rewardService *services.RewardService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
	}
}

// Catalog lists available rewards, cheapest first.
func (h *RewardHandler) Catalog(c *gin.Context) {
	category := c.Query("category")
	if category == "all" {
		category = ""
	}
	featured := c.Query("featured") == "true"

	rewards, err := h.rewardService.Catalog(models.TokenCategory(category), featured)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rewards retrieved", gin.H{"rewards": rewards}, &utils.Meta{Count: len(rewards)})
}

// GetReward returns one catalog entry.
func (h *RewardHandler) GetReward(c *gin.Context) {
	reward, err := h.rewardService.GetReward(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Reward retrieved", gin.H{"reward": reward})
}

// Redeem burns tokens for a reward and returns the voucher plus the updated
// wallet.
func (h *RewardHandler) Redeem(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	redemption, wallet, err := h.rewardService.Redeem(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Reward redeemed successfully", gin.H{
		"redemption": redemption,
		"tokens":     wallet,
	})
}

// Redemptions lists the caller's redemption receipts.
func (h *RewardHandler) Redemptions(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	redemptions, total, err := h.rewardService.Redemptions(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Redemptions retrieved", gin.H{"redemptions": redemptions}, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// CategorySummaries reports balances alongside redeemable reward counts.
func (h *RewardHandler) CategorySummaries(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	summaries, err := h.rewardService.CategorySummaries(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Category summaries retrieved", gin.H{"categories": summaries})
}
