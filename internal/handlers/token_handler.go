package handlers

import (
	"tokenride/internal/middleware"
	"tokenride/internal/models"
	"tokenride/internal/services"
	"tokenride/internal/utils"

	"github.com/gin-gonic/gin"
)

type TokenHandler struct {
	tokenService *services.TokenService
}

func NewTokenHandler(tokenService *services.TokenService) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
	}
}

type addTokensRequest struct {
	Category string `json:"category" binding:"required"`
	Amount   int    `json:"amount" binding:"required,min=1"`
}

type transferTokensRequest struct {
	FromCategory string `json:"from_category" binding:"required"`
	ToCategory   string `json:"to_category" binding:"required"`
	Amount       int    `json:"amount" binding:"required,min=1"`
}

// GetBalance returns the caller's wallet, per category plus total.
func (h *TokenHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	wallet, err := h.tokenService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token balance retrieved", gin.H{"tokens": wallet})
}

// AddTokens credits a category directly.
func (h *TokenHandler) AddTokens(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request addTokensRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	wallet, err := h.tokenService.AddTokens(c.Request.Context(), userID, models.TokenCategory(request.Category), request.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Tokens added successfully", gin.H{"tokens": wallet})
}

// TransferTokens moves tokens between two categories of the caller's wallet.
func (h *TokenHandler) TransferTokens(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request transferTokensRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	wallet, err := h.tokenService.TransferTokens(
		c.Request.Context(),
		userID,
		models.TokenCategory(request.FromCategory),
		models.TokenCategory(request.ToCategory),
		request.Amount,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, "Tokens transferred successfully", gin.H{"tokens": wallet})
}

// History lists the caller's distributed ride payouts, newest first.
func (h *TokenHandler) History(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	rides, total, err := h.tokenService.History(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Token history retrieved", gin.H{"rides": rides}, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}
