package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"editflow.app/server/core/db"
	"editflow.app/server/internal/model"
)

const complaintColumns = `id, complainant_id, respondent_id, complainant_note, respondent_note,
	status, resolution, penalty, responded_at, resolved_at, created_at`

type complaintStore struct {
	db db.DBTX
}

func newComplaintStore(conn db.DBTX) ComplaintStore {
	return &complaintStore{db: conn}
}

func (s *complaintStore) Create(ctx context.Context, c *model.Complaint) error {
	created, err := s.getOne(ctx, `
		INSERT INTO complaints (id, complainant_id, respondent_id, complainant_note, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+complaintColumns,
		c.ID, c.ComplainantID, c.RespondentID, c.ComplainantNote, string(model.ComplaintStatusOpen))
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

func (s *complaintStore) GetByID(ctx context.Context, id int64) (*model.Complaint, error) {
	return s.getOne(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
}

func (s *complaintStore) ListUnansweredForRespondent(ctx context.Context, respondentID int64) ([]model.Complaint, error) {
	return s.list(ctx, `
		SELECT `+complaintColumns+`
		FROM complaints
		WHERE respondent_id = $1 AND respondent_note IS NULL AND status = 'open'
		ORDER BY created_at`, respondentID)
}

func (s *complaintStore) ListOpen(ctx context.Context) ([]model.Complaint, error) {
	return s.list(ctx, `
		SELECT `+complaintColumns+`
		FROM complaints
		WHERE status = 'open'
		ORDER BY created_at`)
}

func (s *complaintStore) Respond(ctx context.Context, id, respondentID int64, note string) (*model.Complaint, error) {
	return s.getOne(ctx, `
		UPDATE complaints
		SET respondent_note = $3, responded_at = now()
		WHERE id = $1 AND respondent_id = $2 AND respondent_note IS NULL AND status = 'open'
		RETURNING `+complaintColumns, id, respondentID, note)
}

func (s *complaintStore) Resolve(ctx context.Context, id int64, resolution model.ComplaintResolution, penalty int64) (*model.Complaint, error) {
	return s.getOne(ctx, `
		UPDATE complaints
		SET status = 'resolved', resolution = $2, penalty = $3, resolved_at = now()
		WHERE id = $1 AND status = 'open'
		RETURNING `+complaintColumns, id, string(resolution), penalty)
}

func (s *complaintStore) getOne(ctx context.Context, query string, args ...any) (*model.Complaint, error) {
	c, err := scanComplaint(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (s *complaintStore) list(ctx context.Context, query string, args ...any) ([]model.Complaint, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanComplaint)
}

func scanComplaint(row pgx.Row) (*model.Complaint, error) {
	var c model.Complaint
	var status string
	var resolution *string
	if err := row.Scan(&c.ID, &c.ComplainantID, &c.RespondentID, &c.ComplainantNote, &c.RespondentNote,
		&status, &resolution, &c.Penalty, &c.RespondedAt, &c.ResolvedAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = model.ComplaintStatus(status)
	if resolution != nil {
		r := model.ComplaintResolution(*resolution)
		c.Resolution = &r
	}
	return &c, nil
}
