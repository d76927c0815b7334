package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/dto"
	"editflow.app/server/internal/service"
)

type InvitationHandler struct {
	invService service.InvitationService
}

func NewInvitationHandler(invService service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invService: invService}
}

// Create invites another user to collaborate on the document in the path.
func (h *InvitationHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req dto.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username is required")
		return
	}

	ctx := c.Request.Context()
	inv, err := h.invService.Invite(ctx, docID, user.ID, req.Username)
	if err != nil {
		respondError(c, err, "create invitation")
		return
	}

	slog.InfoContext(ctx, "invitation created",
		"invitation_id", inv.ID,
		"document_id", docID,
	)
	c.JSON(http.StatusCreated, dto.ToInvitationResponse(inv, false))
}

func (h *InvitationHandler) ListForDocument(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	docID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	invs, err := h.invService.ListForDocument(c.Request.Context(), docID, user.ID)
	if err != nil {
		respondError(c, err, "list document invitations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": dto.ToInvitationResponses(invs, false)})
}

// ListPending lists invitations addressed to the current user. These carry
// the token needed to accept or decline.
func (h *InvitationHandler) ListPending(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	invs, err := h.invService.ListPendingForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "list pending invitations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": dto.ToInvitationResponses(invs, true)})
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.InvitationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "token is required")
		return
	}

	inv, err := h.invService.Accept(c.Request.Context(), req.Token, user.ID)
	if err != nil {
		respondError(c, err, "accept invitation")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvitationResponse(inv, false))
}

func (h *InvitationHandler) Decline(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.InvitationTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "token is required")
		return
	}

	inv, err := h.invService.Decline(c.Request.Context(), req.Token, user.ID)
	if err != nil {
		respondError(c, err, "decline invitation")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvitationResponse(inv, false))
}

func (h *InvitationHandler) Revoke(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	invID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	inv, err := h.invService.Revoke(c.Request.Context(), invID, user.ID)
	if err != nil {
		respondError(c, err, "revoke invitation")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvitationResponse(inv, false))
}
