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

var (
	ErrComplaintNotFound   = errors.New("complaint not found")
	ErrSelfComplaint       = errors.New("cannot file a complaint against yourself")
	ErrEmptyNote           = errors.New("note must not be blank")
	ErrAlreadyResponded    = errors.New("complaint already has a response")
	ErrComplaintResolved   = errors.New("complaint is already resolved")
	ErrInvalidResolution   = errors.New("unknown complaint resolution")
	ErrPenaltyRequired     = errors.New("a penalizing resolution needs a positive token amount")
	ErrNotComplaintSubject = errors.New("complaint is addressed to another user")
)

type ComplaintService interface {
	File(ctx context.Context, complainantID, respondentID int64, note string) (*model.Complaint, error)
	ListUnansweredForRespondent(ctx context.Context, respondentID int64) ([]model.Complaint, error)
	Respond(ctx context.Context, complaintID, respondentID int64, note string) (*model.Complaint, error)
	ListOpen(ctx context.Context) ([]model.Complaint, error)
	// Resolve closes a complaint. Penalizing resolutions take up to penalty
	// tokens from the penalized user through the ledger.
	Resolve(ctx context.Context, complaintID int64, resolution model.ComplaintResolution, penalty int64) (*model.Complaint, error)
}

type complaintService struct {
	txRunner  TxRunner
	complaint store.ComplaintStore
	userStore store.UserStore
}

func NewComplaintService(txRunner TxRunner, complaints store.ComplaintStore, userStore store.UserStore) ComplaintService {
	return &complaintService{
		txRunner:  txRunner,
		complaint: complaints,
		userStore: userStore,
	}
}

func (s *complaintService) File(ctx context.Context, complainantID, respondentID int64, note string) (*model.Complaint, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrEmptyNote
	}
	if complainantID == respondentID {
		return nil, ErrSelfComplaint
	}
	if _, err := s.userStore.GetByID(ctx, respondentID); err != nil {
		return nil, mapUserErr(err)
	}

	c := &model.Complaint{
		ID:              id.New(),
		ComplainantID:   complainantID,
		RespondentID:    respondentID,
		ComplainantNote: note,
		Status:          model.ComplaintStatusOpen,
	}
	if err := s.complaint.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating complaint: %w", err)
	}

	slog.InfoContext(ctx, "complaint filed",
		"complaint_id", c.ID,
		"complainant_id", complainantID,
		"respondent_id", respondentID)
	return c, nil
}

func (s *complaintService) ListUnansweredForRespondent(ctx context.Context, respondentID int64) ([]model.Complaint, error) {
	return s.complaint.ListUnansweredForRespondent(ctx, respondentID)
}

func (s *complaintService) Respond(ctx context.Context, complaintID, respondentID int64, note string) (*model.Complaint, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrEmptyNote
	}

	c, err := s.get(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if c.RespondentID != respondentID {
		return nil, ErrNotComplaintSubject
	}
	if c.RespondentNote != nil {
		return nil, ErrAlreadyResponded
	}

	updated, err := s.complaint.Respond(ctx, complaintID, respondentID, note)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAlreadyResponded
		}
		return nil, fmt.Errorf("responding to complaint: %w", err)
	}
	return updated, nil
}

func (s *complaintService) ListOpen(ctx context.Context) ([]model.Complaint, error) {
	return s.complaint.ListOpen(ctx)
}

func (s *complaintService) Resolve(ctx context.Context, complaintID int64, resolution model.ComplaintResolution, penalty int64) (*model.Complaint, error) {
	if !resolution.Valid() {
		return nil, ErrInvalidResolution
	}
	if resolution == model.ResolutionDismiss {
		penalty = 0
	} else if penalty <= 0 {
		return nil, ErrPenaltyRequired
	}

	var resolved *model.Complaint
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		c, err := sp.Complaints().GetByID(ctx, complaintID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrComplaintNotFound
			}
			return fmt.Errorf("getting complaint: %w", err)
		}
		if c.Status == model.ComplaintStatusResolved {
			return ErrComplaintResolved
		}

		charged := int64(0)
		if penalty > 0 {
			target := c.RespondentID
			if resolution == model.ResolutionPenalizeComplainant {
				target = c.ComplainantID
			}
			_, applied, err := adjustBalance(ctx, sp.Tokens(), target, -penalty, model.TokenReasonPenalty, true)
			if err != nil {
				return fmt.Errorf("charging penalty: %w", err)
			}
			charged = -applied
		}

		resolved, err = sp.Complaints().Resolve(ctx, complaintID, resolution, charged)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrComplaintResolved
			}
			return fmt.Errorf("resolving complaint: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "complaint resolved",
		"complaint_id", complaintID,
		"resolution", resolution,
		"penalty", resolved.Penalty)
	return resolved, nil
}

func (s *complaintService) get(ctx context.Context, complaintID int64) (*model.Complaint, error) {
	c, err := s.complaint.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, fmt.Errorf("getting complaint: %w", err)
	}
	return c, nil
}
