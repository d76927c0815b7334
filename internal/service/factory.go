package service

import (
	"editflow.app/server/common/otel"
	"editflow.app/server/core/config"
	"editflow.app/server/internal/checker"
	"editflow.app/server/internal/queue"
	"editflow.app/server/internal/store"
)

// Services builds every application service from one set of stores and
// collaborators.
type Services struct {
	stores    *store.Stores
	txRunner  TxRunner
	sessions  store.EditingSessionStore
	cooldowns store.CooldownStore
	checker   checker.Checker
	producer  queue.Producer
	metrics   *otel.Metrics
	cfg       config.Config
}

type ServicesDeps struct {
	Stores    *store.Stores
	TxRunner  TxRunner
	Sessions  store.EditingSessionStore
	Cooldowns store.CooldownStore
	Checker   checker.Checker
	Producer  queue.Producer
	Metrics   *otel.Metrics
}

func NewServices(deps ServicesDeps, cfg config.Config) *Services {
	return &Services{
		stores:    deps.Stores,
		txRunner:  deps.TxRunner,
		sessions:  deps.Sessions,
		cooldowns: deps.Cooldowns,
		checker:   deps.Checker,
		producer:  deps.Producer,
		metrics:   deps.Metrics,
		cfg:       cfg,
	}
}

func (s *Services) Users() UserService {
	return NewUserService(s.stores.Users())
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Users(), s.stores.Sessions())
}

func (s *Services) Admin() AdminService {
	return NewAdminService(s.txRunner, s.stores.Users())
}

func (s *Services) Tokens() TokenService {
	return NewTokenService(s.txRunner, s.stores.Tokens(), s.metrics)
}

func (s *Services) Documents() DocumentService {
	return NewDocumentService(s.stores.Documents())
}

func (s *Services) Invitations() InvitationService {
	return NewInvitationService(
		s.txRunner,
		s.stores.Invitations(),
		s.stores.Documents(),
		s.stores.Users(),
		int64(s.cfg.Tokens.InviteDeclinePenalty),
	)
}

func (s *Services) Complaints() ComplaintService {
	return NewComplaintService(s.txRunner, s.stores.Complaints(), s.stores.Users())
}

func (s *Services) Blacklist() BlacklistService {
	return NewBlacklistService(s.txRunner, s.stores.Blacklist())
}

func (s *Services) Stats() StatsService {
	return NewStatsService(s.stores.Stats(), s.stores.Feedback())
}

func (s *Services) Editor() EditorService {
	return NewEditorService(EditorDeps{
		Sessions:  s.sessions,
		Cooldowns: s.cooldowns,
		Users:     s.stores.Users(),
		Tokens:    s.Tokens(),
		Documents: s.Documents(),
		Blacklist: s.Blacklist(),
		Checker:   s.checker,
		Producer:  s.producer,
		Metrics:   s.metrics,
	}, EditorConfigFrom(s.cfg))
}
