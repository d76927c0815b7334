package dto

import (
	"time"

	"editflow.app/server/internal/editor"
	"editflow.app/server/internal/model"
)

type StartSessionRequest struct {
	DocumentID *int64 `json:"document_id,string,omitempty"`
}

type SubmitRequest struct {
	Text string `json:"text" binding:"required"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type LoadDocumentRequest struct {
	DocumentID int64 `json:"document_id,string" binding:"required"`
}

type SaveRequest struct {
	Title string `json:"title" binding:"max=255"`
}

// EditingSessionResponse is what the editor view renders: the reconciled
// segments, their display projection and where the review cursor is.
type EditingSessionResponse struct {
	ID         string                   `json:"id"`
	DocumentID *int64                   `json:"document_id,string,omitempty"`
	Title      string                   `json:"title"`
	Segments   []editor.SegmentRecord   `json:"segments"`
	Rendered   []editor.RenderedSegment `json:"rendered"`
	Cursor     int                      `json:"cursor"`
	Done       bool                     `json:"done"`
	Counts     editor.ReviewCounts      `json:"counts"`
	Current    *CurrentCorrection       `json:"current,omitempty"`
	Applied    int                      `json:"applied"`
	Discarded  int                      `json:"discarded"`
	Miss       string                   `json:"miss,omitempty"`
	Text       string                   `json:"text"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

type CurrentCorrection struct {
	Original   string `json:"original"`
	Correction string `json:"correction"`
}

func ToEditingSessionResponse(s *model.EditingSession) (*EditingSessionResponse, error) {
	review, err := s.Review()
	if err != nil {
		return nil, err
	}
	segments := review.Segments()

	resp := &EditingSessionResponse{
		ID:         s.ID,
		DocumentID: s.DocumentID,
		Title:      s.Title,
		Segments:   s.Segments,
		Rendered:   editor.Render(segments, review.Cursor()),
		Cursor:     review.Cursor(),
		Done:       review.Done(),
		Counts:     review.Counts(),
		Applied:    s.Applied,
		Discarded:  s.Discarded,
		Miss:       s.Miss,
		Text:       editor.Materialize(segments),
		UpdatedAt:  s.UpdatedAt,
	}
	if cur, ok := review.Current(); ok {
		resp.Current = &CurrentCorrection{Original: cur.Text, Correction: cur.Correction}
	}
	return resp, nil
}
