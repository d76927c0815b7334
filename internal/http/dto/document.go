package dto

import (
	"time"

	"editflow.app/server/internal/model"
)

type CreateDocumentRequest struct {
	Title   string `json:"title" binding:"max=255"`
	Content string `json:"content"`
}

type UpdateDocumentRequest struct {
	Title   *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Content *string `json:"content,omitempty"`
}

type DocumentResponse struct {
	ID        int64     `json:"id,string"`
	OwnerID   int64     `json:"owner_id,string"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToDocumentResponse(d *model.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type DocumentSummaryResponse struct {
	ID        int64     `json:"id,string"`
	OwnerID   int64     `json:"owner_id,string"`
	Title     string    `json:"title"`
	Shared    bool      `json:"shared"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToDocumentSummaries(docs []model.DocumentSummary) []DocumentSummaryResponse {
	out := make([]DocumentSummaryResponse, len(docs))
	for i, d := range docs {
		out[i] = DocumentSummaryResponse{
			ID:        d.ID,
			OwnerID:   d.OwnerID,
			Title:     d.Title,
			Shared:    d.Shared,
			UpdatedAt: d.UpdatedAt,
		}
	}
	return out
}
