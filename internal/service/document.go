package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"editflow.app/server/common/id"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/store"
)

const DefaultDocumentTitle = "Untitled"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNotDocumentOwner = errors.New("only the owner can do this")
)

type DocumentService interface {
	Create(ctx context.Context, ownerID int64, title, content string) (*model.Document, error)
	// Get returns the document if userID owns it or is a collaborator.
	Get(ctx context.Context, userID, documentID int64) (*model.Document, error)
	ListForUser(ctx context.Context, userID int64) ([]model.DocumentSummary, error)
	UpdateTitle(ctx context.Context, userID, documentID int64, title string) (*model.Document, error)
	UpdateContent(ctx context.Context, userID, documentID int64, content string) (*model.Document, error)
	Delete(ctx context.Context, userID, documentID int64) error
}

type documentService struct {
	docs store.DocumentStore
}

func NewDocumentService(docs store.DocumentStore) DocumentService {
	return &documentService{docs: docs}
}

func (s *documentService) Create(ctx context.Context, ownerID int64, title, content string) (*model.Document, error) {
	doc := &model.Document{
		ID:      id.New(),
		OwnerID: ownerID,
		Title:   normalizeTitle(title),
		Content: content,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	slog.InfoContext(ctx, "document created", "document_id", doc.ID, "owner_id", ownerID)
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, userID, documentID int64) (*model.Document, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}
	if doc.OwnerID == userID {
		return doc, nil
	}

	ok, err := s.docs.HasAccess(ctx, documentID, userID)
	if err != nil {
		return nil, fmt.Errorf("checking document access: %w", err)
	}
	if !ok {
		// Not leaking existence to users without access.
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *documentService) ListForUser(ctx context.Context, userID int64) ([]model.DocumentSummary, error) {
	return s.docs.ListForUser(ctx, userID)
}

func (s *documentService) UpdateTitle(ctx context.Context, userID, documentID int64, title string) (*model.Document, error) {
	if _, err := s.Get(ctx, userID, documentID); err != nil {
		return nil, err
	}
	doc, err := s.docs.UpdateTitle(ctx, documentID, normalizeTitle(title))
	if err != nil {
		return nil, fmt.Errorf("updating document title: %w", err)
	}
	return doc, nil
}

func (s *documentService) UpdateContent(ctx context.Context, userID, documentID int64, content string) (*model.Document, error) {
	if _, err := s.Get(ctx, userID, documentID); err != nil {
		return nil, err
	}
	doc, err := s.docs.UpdateContent(ctx, documentID, content)
	if err != nil {
		return nil, fmt.Errorf("updating document content: %w", err)
	}
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, userID, documentID int64) error {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if doc.OwnerID != userID {
		return ErrNotDocumentOwner
	}
	if err := s.docs.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	slog.InfoContext(ctx, "document deleted", "document_id", documentID)
	return nil
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultDocumentTitle
	}
	return title
}
