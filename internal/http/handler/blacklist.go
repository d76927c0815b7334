package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/dto"
	"editflow.app/server/internal/service"
)

type BlacklistHandler struct {
	blacklistService service.BlacklistService
}

func NewBlacklistHandler(blacklistService service.BlacklistService) *BlacklistHandler {
	return &BlacklistHandler{blacklistService: blacklistService}
}

func (h *BlacklistHandler) Words(c *gin.Context) {
	words, err := h.blacklistService.Words(c.Request.Context())
	if err != nil {
		respondError(c, err, "list blacklist")
		return
	}
	if words == nil {
		words = []string{}
	}
	c.JSON(http.StatusOK, dto.BlacklistResponse{Words: words})
}

func (h *BlacklistHandler) Request(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.WordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "word is required")
		return
	}

	r, err := h.blacklistService.Request(c.Request.Context(), user.ID, req.Word)
	if err != nil {
		respondError(c, err, "request blacklist word")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBlacklistRequestResponse(r))
}

func (h *BlacklistHandler) ListRequests(c *gin.Context) {
	reqs, err := h.blacklistService.ListPendingRequests(c.Request.Context())
	if err != nil {
		respondError(c, err, "list blacklist requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": dto.ToBlacklistRequestResponses(reqs)})
}

func (h *BlacklistHandler) Approve(c *gin.Context) {
	requestID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	r, err := h.blacklistService.Approve(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err, "approve blacklist request")
		return
	}
	c.JSON(http.StatusOK, dto.ToBlacklistRequestResponse(r))
}

func (h *BlacklistHandler) RejectRequest(c *gin.Context) {
	requestID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	r, err := h.blacklistService.RejectRequest(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err, "reject blacklist request")
		return
	}
	c.JSON(http.StatusOK, dto.ToBlacklistRequestResponse(r))
}

func (h *BlacklistHandler) AddWord(c *gin.Context) {
	var req dto.WordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "word is required")
		return
	}

	if err := h.blacklistService.Add(c.Request.Context(), req.Word); err != nil {
		respondError(c, err, "add blacklist word")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BlacklistHandler) RemoveWord(c *gin.Context) {
	if err := h.blacklistService.Remove(c.Request.Context(), c.Param("word")); err != nil {
		respondError(c, err, "remove blacklist word")
		return
	}
	c.Status(http.StatusNoContent)
}
