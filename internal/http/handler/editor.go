package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"editflow.app/server/common/logger"
	"editflow.app/server/internal/http/dto"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/service"
)

type EditorHandler struct {
	editorService service.EditorService
}

func NewEditorHandler(editorService service.EditorService) *EditorHandler {
	return &EditorHandler{editorService: editorService}
}

func (h *EditorHandler) Start(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.StartSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	sess, err := h.editorService.Start(c.Request.Context(), user.ID, req.DocumentID)
	if err != nil {
		respondError(c, err, "start editing session")
		return
	}
	h.respond(c, http.StatusCreated, sess)
}

func (h *EditorHandler) Get(c *gin.Context) {
	user, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	sess, err := h.editorService.Get(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		respondError(c, err, "get editing session")
		return
	}
	h.respond(c, http.StatusOK, sess)
}

func (h *EditorHandler) Submit(c *gin.Context) {
	user, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "text is required")
		return
	}

	sess, err := h.editorService.Submit(c.Request.Context(), user.ID, sessionID, req.Text)
	if err != nil {
		respondError(c, err, "submit text")
		return
	}
	h.respond(c, http.StatusOK, sess)
}

func (h *EditorHandler) Accept(c *gin.Context) {
	user, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	sess, err := h.editorService.Accept(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		respondError(c, err, "accept correction")
		return
	}
	h.respond(c, http.StatusOK, sess)
}

func (h *EditorHandler) Reject(c *gin.Context) {
	user, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	sess, err := h.editorService.Reject(c.Request.Context(), user.ID, sessionID, req.Reason)
	if err != nil {
		respondError(c, err, "reject correction")
		return
	}
	h.respond(c, http.StatusOK, sess)
}

func (h *EditorHandler) Transform(c *gin.Context) {
	user, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	sess, err := h.editorService.Transform(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		respondError(c, err, "transform text")
		return
	}
	h.respond(c, http.StatusOK, sess)
}

func (h *EditorHandler) LoadDocument(c *gin.Context) {
	user, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req dto.LoadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "document_id is required")
		return
	}

	sess, err := h.editorService.LoadDocument(c.Request.Context(), user.ID, sessionID, req.DocumentID)
	if err != nil {
		respondError(c, err, "load document")
		return
	}
	h.respond(c, http.StatusOK, sess)
}

func (h *EditorHandler) Save(c *gin.Context) {
	user, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req dto.SaveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	doc, err := h.editorService.Save(c.Request.Context(), user.ID, sessionID, req.Title)
	if err != nil {
		respondError(c, err, "save document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

func (h *EditorHandler) Download(c *gin.Context) {
	user, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	filename, text, err := h.editorService.Download(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		respondError(c, err, "download text")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *EditorHandler) Close(c *gin.Context) {
	user, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	if err := h.editorService.Close(c.Request.Context(), user.ID, sessionID); err != nil {
		respondError(c, err, "close editing session")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EditorHandler) sessionParams(c *gin.Context) (*model.User, string, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, "", false
	}
	sessionID := c.Param("id")
	if sessionID == "" {
		badRequest(c, "invalid session id")
		return nil, "", false
	}
	c.Request = c.Request.WithContext(logger.WithLogFields(c.Request.Context(), logger.LogFields{
		EditingSessionID: &sessionID,
	}))
	return user, sessionID, true
}

func (h *EditorHandler) respond(c *gin.Context, status int, sess *model.EditingSession) {
	resp, err := dto.ToEditingSessionResponse(sess)
	if err != nil {
		respondError(c, err, "render editing session")
		return
	}
	c.JSON(status, resp)
}
