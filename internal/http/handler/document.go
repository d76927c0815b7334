package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"editflow.app/server/common/logger"
	"editflow.app/server/internal/http/dto"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/service"
)

type DocumentHandler struct {
	documentService service.DocumentService
}

func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	docs, err := h.documentService.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "list documents")
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": dto.ToDocumentSummaries(docs)})
}

func (h *DocumentHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		respondError(c, err, "create document")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

func (h *DocumentHandler) Get(c *gin.Context) {
	user, docID, ok := h.documentParams(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), user.ID, docID)
	if err != nil {
		respondError(c, err, "get document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// Update changes the title, the content or both.
func (h *DocumentHandler) Update(c *gin.Context) {
	user, docID, ok := h.documentParams(c)
	if !ok {
		return
	}

	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Title == nil && req.Content == nil {
		badRequest(c, "title or content is required")
		return
	}

	ctx := c.Request.Context()
	var (
		doc *model.Document
		err error
	)
	if req.Content != nil {
		if doc, err = h.documentService.UpdateContent(ctx, user.ID, docID, *req.Content); err != nil {
			respondError(c, err, "update document content")
			return
		}
	}
	if req.Title != nil {
		if doc, err = h.documentService.UpdateTitle(ctx, user.ID, docID, *req.Title); err != nil {
			respondError(c, err, "update document title")
			return
		}
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	user, docID, ok := h.documentParams(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), user.ID, docID); err != nil {
		respondError(c, err, "delete document")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) documentParams(c *gin.Context) (*model.User, int64, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, 0, false
	}
	docID, ok := int64Param(c, "id")
	if !ok {
		return nil, 0, false
	}
	c.Request = c.Request.WithContext(logger.WithLogFields(c.Request.Context(), logger.LogFields{
		DocumentID: &docID,
	}))
	return user, docID, true
}
