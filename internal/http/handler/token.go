package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/dto"
	"editflow.app/server/internal/service"
)

type TokenHandler struct {
	tokenService service.TokenService
}

func NewTokenHandler(tokenService service.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

func (h *TokenHandler) Balance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	balance, err := h.tokenService.Balance(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "get balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Tokens: balance})
}

func (h *TokenHandler) Packs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"packs": h.tokenService.Packs()})
}

func (h *TokenHandler) Purchase(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "tokens must be a positive number")
		return
	}

	balance, err := h.tokenService.Purchase(c.Request.Context(), user.ID, req.Tokens)
	if err != nil {
		respondError(c, err, "purchase tokens")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Tokens: balance})
}

func (h *TokenHandler) History(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit := int32(50)
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}

	txns, err := h.tokenService.History(c.Request.Context(), user.ID, limit)
	if err != nil {
		respondError(c, err, "list token history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToTokenTransactions(txns)})
}
