package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/dto"
	"editflow.app/server/internal/service"
)

type ComplaintHandler struct {
	complaintService service.ComplaintService
}

func NewComplaintHandler(complaintService service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

func (h *ComplaintHandler) File(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.FileComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "respondent_id and note are required")
		return
	}

	complaint, err := h.complaintService.File(c.Request.Context(), user.ID, req.RespondentID, req.Note)
	if err != nil {
		respondError(c, err, "file complaint")
		return
	}
	c.JSON(http.StatusCreated, dto.ToComplaintResponse(complaint))
}

// Inbox lists complaints against the current user that still need a
// response.
func (h *ComplaintHandler) Inbox(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	complaints, err := h.complaintService.ListUnansweredForRespondent(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "list complaint inbox")
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": dto.ToComplaintResponses(complaints)})
}

func (h *ComplaintHandler) Respond(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	complaintID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req dto.RespondComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "note is required")
		return
	}

	complaint, err := h.complaintService.Respond(c.Request.Context(), complaintID, user.ID, req.Note)
	if err != nil {
		respondError(c, err, "respond to complaint")
		return
	}
	c.JSON(http.StatusOK, dto.ToComplaintResponse(complaint))
}

func (h *ComplaintHandler) ListOpen(c *gin.Context) {
	complaints, err := h.complaintService.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err, "list open complaints")
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": dto.ToComplaintResponses(complaints)})
}

func (h *ComplaintHandler) Resolve(c *gin.Context) {
	complaintID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req dto.ResolveComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "resolution is required")
		return
	}

	complaint, err := h.complaintService.Resolve(c.Request.Context(), complaintID, req.Resolution, req.Penalty)
	if err != nil {
		respondError(c, err, "resolve complaint")
		return
	}
	c.JSON(http.StatusOK, dto.ToComplaintResponse(complaint))
}
