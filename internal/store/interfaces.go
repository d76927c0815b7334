package store

import (
	"context"
	"errors"
	"time"

	"editflow.app/server/internal/model"
)

var (
	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = errors.New("conflict")

	// ErrTxConflict is returned when an optimistic redis transaction keeps
	// losing the race after every retry
	ErrTxConflict = errors.New("concurrent update, retry")
)

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	List(ctx context.Context, limit, offset int32) ([]model.User, error)
	SetRole(ctx context.Context, id int64, role model.Role) (*model.User, error)
	SetSuspended(ctx context.Context, id int64, suspended bool) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

// SessionStore defines the contract for login session data access
type SessionStore interface {
	GetValid(ctx context.Context, id int64) (*model.Session, error) // checks expiry
	Create(ctx context.Context, session *model.Session) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// TokenStore is the user balance plus its append-only ledger.
type TokenStore interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	// CompareAndSwapBalance sets the balance to next only if it still equals
	// expected. It reports whether the swap happened.
	CompareAndSwapBalance(ctx context.Context, userID, expected, next int64) (bool, error)
	AddTransaction(ctx context.Context, txn *model.TokenTransaction) error
	ListTransactions(ctx context.Context, userID int64, limit int32) ([]model.TokenTransaction, error)
}

// DocumentStore defines the contract for document and collaborator access
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id int64) (*model.Document, error)
	ListForUser(ctx context.Context, userID int64) ([]model.DocumentSummary, error)
	UpdateTitle(ctx context.Context, id int64, title string) (*model.Document, error)
	UpdateContent(ctx context.Context, id int64, content string) (*model.Document, error)
	Delete(ctx context.Context, id int64) error
	DeleteByOwner(ctx context.Context, ownerID int64) error
	HasAccess(ctx context.Context, documentID, userID int64) (bool, error)
	GrantAccess(ctx context.Context, documentID, userID int64) error
	RevokeAllAccess(ctx context.Context, userID int64) error
}

// InvitationStore defines the contract for document invitation data access
type InvitationStore interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetByID(ctx context.Context, id int64) (*model.Invitation, error)
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	GetPending(ctx context.Context, documentID, inviteeID int64) (*model.Invitation, error)
	ListPendingForUser(ctx context.Context, inviteeID int64) ([]model.Invitation, error)
	ListByDocument(ctx context.Context, documentID int64) ([]model.Invitation, error)
	// Transition moves a pending invitation to status. ErrNotFound means it
	// was not pending anymore.
	Transition(ctx context.Context, id int64, status model.InvitationStatus) (*model.Invitation, error)
	ExpireOld(ctx context.Context) error
}

// ComplaintStore defines the contract for complaint data access
type ComplaintStore interface {
	Create(ctx context.Context, c *model.Complaint) error
	GetByID(ctx context.Context, id int64) (*model.Complaint, error)
	ListUnansweredForRespondent(ctx context.Context, respondentID int64) ([]model.Complaint, error)
	ListOpen(ctx context.Context) ([]model.Complaint, error)
	// Respond stores the respondent's note once. ErrNotFound means the
	// complaint does not exist or was already answered.
	Respond(ctx context.Context, id, respondentID int64, note string) (*model.Complaint, error)
	Resolve(ctx context.Context, id int64, resolution model.ComplaintResolution, penalty int64) (*model.Complaint, error)
}

// BlacklistStore defines the contract for blacklist words and user requests
type BlacklistStore interface {
	ListWords(ctx context.Context) ([]string, error)
	HasWord(ctx context.Context, word string) (bool, error)
	AddWord(ctx context.Context, word string) error
	RemoveWord(ctx context.Context, word string) error
	CreateRequest(ctx context.Context, req *model.BlacklistRequest) error
	GetRequest(ctx context.Context, id int64) (*model.BlacklistRequest, error)
	ListPendingRequests(ctx context.Context) ([]model.BlacklistRequest, error)
	// DecideRequest moves a pending request to status. ErrNotFound means it
	// was already decided.
	DecideRequest(ctx context.Context, id int64, status model.BlacklistRequestStatus) (*model.BlacklistRequest, error)
}

// FeedbackStore persists rejected-correction feedback
type FeedbackStore interface {
	Create(ctx context.Context, fb *model.CorrectionFeedback) error
	ListByUser(ctx context.Context, userID int64, limit int32) ([]model.CorrectionFeedback, error)
}

// StatsStore holds per-user usage counters
type StatsStore interface {
	Get(ctx context.Context, userID int64) (*model.UserStats, error)
	Increment(ctx context.Context, userID int64, delta model.StatsDelta) error
}

// EditingSessionStore keeps open editor sessions in redis.
type EditingSessionStore interface {
	Create(ctx context.Context, sess *model.EditingSession) error
	Get(ctx context.Context, id string) (*model.EditingSession, error)
	// Update loads the session, applies fn and writes it back atomically. If
	// fn returns an error nothing is written.
	Update(ctx context.Context, id string, fn func(sess *model.EditingSession) error) (*model.EditingSession, error)
	Delete(ctx context.Context, id string) error
}

// CooldownStore throttles free-tier submissions.
type CooldownStore interface {
	// Acquire starts a cooldown of ttl for userID. If one is already running
	// it returns false and the time left.
	Acquire(ctx context.Context, userID int64, ttl time.Duration) (bool, time.Duration, error)
	Release(ctx context.Context, userID int64) error
}
