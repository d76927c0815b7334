package store

import (
	"editflow.app/server/core/db"
)

// Stores hands out postgres-backed stores bound to one connection, either
// the pool or a transaction.
type Stores struct {
	db db.DBTX
}

func NewStores(conn db.DBTX) *Stores {
	return &Stores{db: conn}
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.db)
}

func (s *Stores) Sessions() SessionStore {
	return newSessionStore(s.db)
}

func (s *Stores) Tokens() TokenStore {
	return newTokenStore(s.db)
}

func (s *Stores) Documents() DocumentStore {
	return newDocumentStore(s.db)
}

func (s *Stores) Invitations() InvitationStore {
	return newInvitationStore(s.db)
}

func (s *Stores) Complaints() ComplaintStore {
	return newComplaintStore(s.db)
}

func (s *Stores) Blacklist() BlacklistStore {
	return newBlacklistStore(s.db)
}

func (s *Stores) Feedback() FeedbackStore {
	return newFeedbackStore(s.db)
}

func (s *Stores) Stats() StatsStore {
	return newStatsStore(s.db)
}
