package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"editflow.app/server/core/db"
	"editflow.app/server/internal/model"
)

const documentColumns = `id, owner_id, title, content, created_at, updated_at`

type documentStore struct {
	db db.DBTX
}

func newDocumentStore(conn db.DBTX) DocumentStore {
	return &documentStore{db: conn}
}

func (s *documentStore) Create(ctx context.Context, doc *model.Document) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO documents (id, owner_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+documentColumns, doc.ID, doc.OwnerID, doc.Title, doc.Content)
	created, err := scanDocument(row)
	if err != nil {
		return mapErr(err)
	}
	*doc = *created
	return nil
}

func (s *documentStore) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	row := s.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return doc, nil
}

func (s *documentStore) ListForUser(ctx context.Context, userID int64) ([]model.DocumentSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT d.id, d.owner_id, d.title, d.owner_id <> $1 AS shared, d.updated_at
		FROM documents d
		WHERE d.owner_id = $1
		   OR EXISTS (SELECT 1 FROM document_access a WHERE a.document_id = d.id AND a.user_id = $1)
		ORDER BY d.updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(row pgx.Row) (*model.DocumentSummary, error) {
		var d model.DocumentSummary
		if err := row.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Shared, &d.UpdatedAt); err != nil {
			return nil, err
		}
		return &d, nil
	})
}

func (s *documentStore) UpdateTitle(ctx context.Context, id int64, title string) (*model.Document, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE documents SET title = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+documentColumns, id, title)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return doc, nil
}

func (s *documentStore) UpdateContent(ctx context.Context, id int64, content string) (*model.Document, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE documents SET content = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+documentColumns, id, content)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return doc, nil
}

func (s *documentStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *documentStore) DeleteByOwner(ctx context.Context, ownerID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM documents WHERE owner_id = $1`, ownerID)
	return err
}

func (s *documentStore) HasAccess(ctx context.Context, documentID, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM documents WHERE id = $1 AND owner_id = $2
			UNION ALL
			SELECT 1 FROM document_access WHERE document_id = $1 AND user_id = $2
		)`, documentID, userID).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (s *documentStore) GrantAccess(ctx context.Context, documentID, userID int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO document_access (document_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, documentID, userID)
	return err
}

func (s *documentStore) RevokeAllAccess(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM document_access WHERE user_id = $1`, userID)
	return err
}

func scanDocument(row pgx.Row) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
