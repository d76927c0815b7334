package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"editflow.app/server/common"
	"editflow.app/server/common/logger"
	"editflow.app/server/common/otel"
	"editflow.app/server/core/config"
	"editflow.app/server/internal/checker"
	"editflow.app/server/internal/editor"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/queue"
	"editflow.app/server/internal/store"
)

var (
	ErrSessionNotFound   = errors.New("editing session not found")
	ErrEmptyText         = errors.New("text must not be blank")
	ErrWordLimitExceeded = errors.New("free tier word limit exceeded")
	ErrCooldownActive    = errors.New("free tier cooldown active")
	ErrSaveFailed        = errors.New("saving document failed")
)

// CooldownError carries how long a free-tier user has to wait.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %s", ErrCooldownActive, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// SaveError is returned when the materialized text could not be persisted.
// Text holds what was being saved so the caller can hand it back.
type SaveError struct {
	Text string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSaveFailed, e.Err)
}

func (e *SaveError) Is(target error) bool {
	return target == ErrSaveFailed
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// EditorConfig holds the knobs of the editing flow.
type EditorConfig struct {
	Pricing       editor.Pricing
	FreeWordLimit int
	FreeCooldown  time.Duration
	PositionHints bool
	SkipMissing   bool
}

func EditorConfigFrom(cfg config.Config) EditorConfig {
	return EditorConfig{
		Pricing: editor.Pricing{
			PerWord:   cfg.Tokens.CostPerWord,
			Accept:    cfg.Tokens.CostAccept,
			Save:      cfg.Tokens.CostSave,
			Transform: cfg.Tokens.CostTransform,
		},
		FreeWordLimit: cfg.Editor.FreeWordLimit,
		FreeCooldown:  cfg.Editor.FreeCooldown,
		PositionHints: cfg.Reconcile.PositionHints,
		SkipMissing:   cfg.Reconcile.SkipMissing,
	}
}

func (c EditorConfig) reconcileOptions() []editor.ReconcileOption {
	var opts []editor.ReconcileOption
	if c.PositionHints {
		opts = append(opts, editor.WithPositionHints())
	}
	if c.SkipMissing {
		opts = append(opts, editor.WithMissPolicy(editor.MissSkip))
	}
	return opts
}

// EditorService owns editing sessions: the submitted text, its reconciled
// segments and the review cursor. Every mutation goes through the session
// store's optimistic transaction, so concurrent requests on one session
// apply one after the other.
type EditorService interface {
	Start(ctx context.Context, userID int64, documentID *int64) (*model.EditingSession, error)
	Get(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error)
	// Submit censors text, sends it to the checker and replaces the session's
	// review with the reconciled result. On failure the previous review is
	// kept.
	Submit(ctx context.Context, userID int64, sessionID, text string) (*model.EditingSession, error)
	// Accept and Reject decide the error segment under the cursor. Past the
	// last error they fail with editor.ErrCursorOutOfRange and change
	// nothing.
	Accept(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error)
	Reject(ctx context.Context, userID int64, sessionID, reason string) (*model.EditingSession, error)
	Transform(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error)
	LoadDocument(ctx context.Context, userID int64, sessionID string, documentID int64) (*model.EditingSession, error)
	Save(ctx context.Context, userID int64, sessionID, title string) (*model.Document, error)
	Download(ctx context.Context, userID int64, sessionID string) (filename, text string, err error)
	Close(ctx context.Context, userID int64, sessionID string) error
}

type editorService struct {
	sessions  store.EditingSessionStore
	cooldowns store.CooldownStore
	users     store.UserStore
	tokens    TokenService
	documents DocumentService
	blacklist BlacklistService
	checker   checker.Checker
	producer  queue.Producer
	metrics   *otel.Metrics
	cfg       EditorConfig
}

type EditorDeps struct {
	Sessions  store.EditingSessionStore
	Cooldowns store.CooldownStore
	Users     store.UserStore
	Tokens    TokenService
	Documents DocumentService
	Blacklist BlacklistService
	Checker   checker.Checker
	Producer  queue.Producer
	Metrics   *otel.Metrics
}

func NewEditorService(deps EditorDeps, cfg EditorConfig) EditorService {
	return &editorService{
		sessions:  deps.Sessions,
		cooldowns: deps.Cooldowns,
		users:     deps.Users,
		tokens:    deps.Tokens,
		documents: deps.Documents,
		blacklist: deps.Blacklist,
		checker:   deps.Checker,
		producer:  deps.Producer,
		metrics:   deps.Metrics,
		cfg:       cfg,
	}
}

func (s *editorService) Start(ctx context.Context, userID int64, documentID *int64) (*model.EditingSession, error) {
	words, err := s.blacklist.Words(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &model.EditingSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     DefaultDocumentTitle,
		Blacklist: words,
		Segments:  editor.ToRecords(editor.Plain("")),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if documentID != nil {
		doc, err := s.documents.Get(ctx, userID, *documentID)
		if err != nil {
			return nil, err
		}
		sess.DocumentID = &doc.ID
		sess.Title = doc.Title
		sess.Segments = editor.ToRecords(editor.Plain(doc.Content))
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating editing session: %w", err)
	}
	s.metrics.SessionOpened(ctx)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		EditingSessionID: &sess.ID,
		DocumentID:       sess.DocumentID,
	})
	slog.InfoContext(ctx, "editing session started", "blacklist_size", len(words))
	return sess, nil
}

func (s *editorService) Get(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting editing session: %w", err)
	}
	if sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *editorService) Submit(ctx context.Context, userID int64, sessionID, text string) (*model.EditingSession, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{EditingSessionID: &sessionID})

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	sess, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	words := editor.WordCount(text)
	cost := 0
	freeTier := user.IsFreeTier() && s.cfg.FreeWordLimit > 0
	if freeTier {
		if words > s.cfg.FreeWordLimit {
			return nil, fmt.Errorf("%w: %d words, limit %d", ErrWordLimitExceeded, words, s.cfg.FreeWordLimit)
		}
		if s.cfg.FreeCooldown > 0 {
			ok, remaining, err := s.cooldowns.Acquire(ctx, userID, s.cfg.FreeCooldown)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &CooldownError{Remaining: remaining}
			}
		}
	} else {
		cost = s.cfg.Pricing.Cost(editor.ActionSubmit, text)
		if _, err := s.tokens.Debit(ctx, userID, int64(cost), model.TokenReasonSubmit); err != nil {
			return nil, err
		}
	}

	// Undo the charge or the cooldown if the text never reaches the session.
	failed := func(cause error) (*model.EditingSession, error) {
		if freeTier {
			if err := s.cooldowns.Release(ctx, userID); err != nil {
				slog.WarnContext(ctx, "failed to release cooldown", "error", err)
			}
		} else {
			s.refund(ctx, userID, cost)
		}
		return nil, cause
	}

	censored := editor.NewCensor(sess.Blacklist).Censor(text)

	spans, err := s.checker.Check(ctx, censored)
	if err != nil {
		slog.WarnContext(ctx, "grammar check failed", "error", err)
		return failed(err)
	}

	rec, err := editor.Reconcile(censored, spans, s.cfg.reconcileOptions()...)
	if err != nil {
		slog.WarnContext(ctx, "checker returned invalid spans", "error", err)
		return failed(err)
	}

	updated, err := s.update(ctx, userID, sessionID, func(sess *model.EditingSession) error {
		sess.Replace(rec.Segments)
		sess.Applied = rec.Applied
		sess.Discarded = rec.Discarded
		if rec.Miss != nil {
			sess.Miss = rec.Miss.Error()
		}
		return nil
	})
	if err != nil {
		return failed(err)
	}

	s.metrics.RecordSubmission(ctx, rec.Discarded)
	if rec.Miss != nil {
		slog.InfoContext(ctx, "some corrections could not be located",
			"applied", rec.Applied,
			"discarded", rec.Discarded,
			"miss", rec.Miss)
	}
	slog.InfoContext(ctx, "text submitted",
		"words", words,
		"cost", cost,
		"corrections", rec.Applied)

	s.publish(ctx, queue.Event{
		TaskType:         queue.TaskTypeTextSubmitted,
		UserID:           userID,
		EditingSessionID: sessionID,
		DocumentID:       updated.DocumentID,
		Cost:             cost,
	})
	return updated, nil
}

func (s *editorService) Accept(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{EditingSessionID: &sessionID})

	// Fail before charging when nothing is left to accept.
	if _, err := s.current(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	cost := s.cfg.Pricing.Cost(editor.ActionAccept, "")
	if _, err := s.tokens.Debit(ctx, userID, int64(cost), model.TokenReasonAccept); err != nil {
		return nil, err
	}

	var decided editor.ErrorSegment
	updated, err := s.update(ctx, userID, sessionID, func(sess *model.EditingSession) error {
		r, err := sess.Review()
		if err != nil {
			return err
		}
		decided, _ = r.Current()
		if err := r.Accept(); err != nil {
			return err
		}
		sess.SetReview(r)
		return nil
	})
	if err != nil {
		s.refund(ctx, userID, cost)
		return nil, err
	}

	s.metrics.RecordCorrection(ctx, "accepted")
	s.publish(ctx, queue.Event{
		TaskType:         queue.TaskTypeCorrectionAccepted,
		UserID:           userID,
		EditingSessionID: sessionID,
		DocumentID:       updated.DocumentID,
		Cost:             cost,
		Original:         decided.Text,
		Correction:       decided.Correction,
	})
	return updated, nil
}

func (s *editorService) Reject(ctx context.Context, userID int64, sessionID, reason string) (*model.EditingSession, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{EditingSessionID: &sessionID})

	var decided editor.ErrorSegment
	updated, err := s.update(ctx, userID, sessionID, func(sess *model.EditingSession) error {
		r, err := sess.Review()
		if err != nil {
			return err
		}
		decided, _ = r.Current()
		if err := r.Reject(); err != nil {
			return err
		}
		sess.SetReview(r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCorrection(ctx, "rejected")
	s.publish(ctx, queue.Event{
		TaskType:         queue.TaskTypeCorrectionRejected,
		UserID:           userID,
		EditingSessionID: sessionID,
		DocumentID:       updated.DocumentID,
		Original:         decided.Text,
		Correction:       decided.Correction,
		Reason:           strings.TrimSpace(reason),
	})
	return updated, nil
}

func (s *editorService) Transform(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{EditingSessionID: &sessionID})

	sess, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	text := sess.Text()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	cost := s.cfg.Pricing.Cost(editor.ActionTransform, text)
	if _, err := s.tokens.Debit(ctx, userID, int64(cost), model.TokenReasonTransform); err != nil {
		return nil, err
	}

	out, err := s.checker.Transform(ctx, editor.NewCensor(sess.Blacklist).Censor(text))
	if err != nil {
		slog.WarnContext(ctx, "style transform failed", "error", err)
		s.refund(ctx, userID, cost)
		return nil, err
	}

	updated, err := s.update(ctx, userID, sessionID, func(sess *model.EditingSession) error {
		sess.Replace(editor.Plain(out))
		return nil
	})
	if err != nil {
		s.refund(ctx, userID, cost)
		return nil, err
	}

	slog.InfoContext(ctx, "text transformed", "cost", cost)
	s.publish(ctx, queue.Event{
		TaskType:         queue.TaskTypeTextTransformed,
		UserID:           userID,
		EditingSessionID: sessionID,
		DocumentID:       updated.DocumentID,
		Cost:             cost,
	})
	return updated, nil
}

func (s *editorService) LoadDocument(ctx context.Context, userID int64, sessionID string, documentID int64) (*model.EditingSession, error) {
	doc, err := s.documents.Get(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, userID, sessionID, func(sess *model.EditingSession) error {
		sess.Replace(editor.Plain(doc.Content))
		sess.DocumentID = &doc.ID
		sess.Title = doc.Title
		return nil
	})
}

func (s *editorService) Save(ctx context.Context, userID int64, sessionID, title string) (*model.Document, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{EditingSessionID: &sessionID})

	sess, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	text := sess.Text()
	title = strings.TrimSpace(title)

	cost := s.cfg.Pricing.Cost(editor.ActionSave, text)
	if _, err := s.tokens.Debit(ctx, userID, int64(cost), model.TokenReasonSave); err != nil {
		return nil, err
	}

	doc, err := s.persist(ctx, userID, sess, title, text)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save document", "error", err)
		s.refund(ctx, userID, cost)
		return nil, &SaveError{Text: text, Err: err}
	}

	if _, err := s.update(ctx, userID, sessionID, func(sess *model.EditingSession) error {
		sess.DocumentID = &doc.ID
		sess.Title = doc.Title
		return nil
	}); err != nil {
		slog.WarnContext(ctx, "document saved but session not rebound", "error", err, "document_id", doc.ID)
	}

	slog.InfoContext(ctx, "document saved", "document_id", doc.ID, "cost", cost)
	s.publish(ctx, queue.Event{
		TaskType:         queue.TaskTypeDocumentSaved,
		UserID:           userID,
		EditingSessionID: sessionID,
		DocumentID:       &doc.ID,
		Cost:             cost,
	})
	return doc, nil
}

func (s *editorService) persist(ctx context.Context, userID int64, sess *model.EditingSession, title, text string) (*model.Document, error) {
	if sess.DocumentID == nil {
		if title == "" {
			title = sess.Title
		}
		return s.documents.Create(ctx, userID, title, text)
	}

	doc, err := s.documents.UpdateContent(ctx, userID, *sess.DocumentID, text)
	if err != nil {
		return nil, err
	}
	if title != "" && title != doc.Title {
		return s.documents.UpdateTitle(ctx, userID, doc.ID, title)
	}
	return doc, nil
}

func (s *editorService) Download(ctx context.Context, userID int64, sessionID string) (string, string, error) {
	sess, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return "", "", err
	}
	return common.Filename(sess.Title, "txt"), sess.Text(), nil
}

func (s *editorService) Close(ctx context.Context, userID int64, sessionID string) error {
	if _, err := s.Get(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("deleting editing session: %w", err)
	}
	s.metrics.SessionClosed(ctx)
	return nil
}

// current returns the error segment under the cursor, or
// editor.ErrCursorOutOfRange when every error has been reviewed.
func (s *editorService) current(ctx context.Context, userID int64, sessionID string) (editor.ErrorSegment, error) {
	sess, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return editor.ErrorSegment{}, err
	}
	r, err := sess.Review()
	if err != nil {
		return editor.ErrorSegment{}, err
	}
	seg, ok := r.Current()
	if !ok {
		return editor.ErrorSegment{}, fmt.Errorf("%w: no corrections left to review", editor.ErrCursorOutOfRange)
	}
	return seg, nil
}

func (s *editorService) update(ctx context.Context, userID int64, sessionID string, fn func(sess *model.EditingSession) error) (*model.EditingSession, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *model.EditingSession) error {
		if sess.UserID != userID {
			return ErrSessionNotFound
		}
		if err := fn(sess); err != nil {
			return err
		}
		sess.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *editorService) refund(ctx context.Context, userID int64, cost int) {
	if cost <= 0 {
		return
	}
	if _, err := s.tokens.Credit(ctx, userID, int64(cost), model.TokenReasonRefund); err != nil {
		slog.ErrorContext(ctx, "failed to refund tokens", "error", err, "amount", cost)
	}
}

// publish hands an event to the worker. Failures are logged, not returned.
func (s *editorService) publish(ctx context.Context, event queue.Event) {
	if s.producer == nil {
		return
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID := sc.TraceID().String()
		event.TraceID = &traceID
	} else if requestID := logger.GetLogFields(ctx).RequestID; requestID != nil {
		event.TraceID = requestID
	}
	if err := s.producer.Enqueue(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish editor event",
			"error", err,
			"task_type", event.TaskType)
	}
}
