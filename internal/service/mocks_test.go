package service_test

import (
	"context"
	"sync"

	"editflow.app/server/internal/editor"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/queue"
	"editflow.app/server/internal/service"
	"editflow.app/server/internal/store"
)

type mockUserStore struct {
	getByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	createFn        func(ctx context.Context, user *model.User) error
	setRoleFn       func(ctx context.Context, id int64, role model.Role) (*model.User, error)
	setSuspendedFn  func(ctx context.Context, id int64, suspended bool) (*model.User, error)
	deleteFn        func(ctx context.Context, id int64) error
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.User{ID: id, Role: model.RolePaid}, nil
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, store.ErrNotFound
}

func (m *mockUserStore) GetByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, store.ErrNotFound
}

func (m *mockUserStore) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserStore) List(_ context.Context, _, _ int32) ([]model.User, error) {
	return nil, nil
}

func (m *mockUserStore) SetRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	if m.setRoleFn != nil {
		return m.setRoleFn(ctx, id, role)
	}
	return &model.User{ID: id, Role: role}, nil
}

func (m *mockUserStore) SetSuspended(ctx context.Context, id int64, suspended bool) (*model.User, error) {
	if m.setSuspendedFn != nil {
		return m.setSuspendedFn(ctx, id, suspended)
	}
	return &model.User{ID: id, Suspended: suspended}, nil
}

func (m *mockUserStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockSessionStore struct {
	getValidFn     func(ctx context.Context, id int64) (*model.Session, error)
	deleteByUserFn func(ctx context.Context, userID int64) error
}

func (m *mockSessionStore) GetValid(ctx context.Context, id int64) (*model.Session, error) {
	if m.getValidFn != nil {
		return m.getValidFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockSessionStore) Create(_ context.Context, _ *model.Session) error {
	return nil
}

func (m *mockSessionStore) DeleteByUser(ctx context.Context, userID int64) error {
	if m.deleteByUserFn != nil {
		return m.deleteByUserFn(ctx, userID)
	}
	return nil
}

// memTokenStore keeps balances in memory with real compare-and-swap
// semantics. failSwaps makes the next n swaps lose the race.
type memTokenStore struct {
	mu        sync.Mutex
	balances  map[int64]int64
	txns      []model.TokenTransaction
	failSwaps int
}

func newMemTokenStore(balances map[int64]int64) *memTokenStore {
	return &memTokenStore{balances: balances}
}

func (m *memTokenStore) GetBalance(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[userID]
	if !ok {
		return 0, store.ErrNotFound
	}
	return b, nil
}

func (m *memTokenStore) CompareAndSwapBalance(_ context.Context, userID, expected, next int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSwaps > 0 {
		m.failSwaps--
		return false, nil
	}
	if m.balances[userID] != expected {
		return false, nil
	}
	m.balances[userID] = next
	return true, nil
}

func (m *memTokenStore) AddTransaction(_ context.Context, txn *model.TokenTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = append(m.txns, *txn)
	return nil
}

func (m *memTokenStore) ListTransactions(_ context.Context, userID int64, _ int32) ([]model.TokenTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TokenTransaction
	for _, t := range m.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTokenStore) balance(userID int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

func (m *memTokenStore) reasons() []model.TokenReason {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.TokenReason, len(m.txns))
	for i, t := range m.txns {
		out[i] = t.Reason
	}
	return out
}

type mockDocumentStore struct {
	createFn          func(ctx context.Context, doc *model.Document) error
	getByIDFn         func(ctx context.Context, id int64) (*model.Document, error)
	updateTitleFn     func(ctx context.Context, id int64, title string) (*model.Document, error)
	updateContentFn   func(ctx context.Context, id int64, content string) (*model.Document, error)
	deleteFn          func(ctx context.Context, id int64) error
	deleteByOwnerFn   func(ctx context.Context, ownerID int64) error
	hasAccessFn       func(ctx context.Context, documentID, userID int64) (bool, error)
	grantAccessFn     func(ctx context.Context, documentID, userID int64) error
	revokeAllAccessFn func(ctx context.Context, userID int64) error
}

func (m *mockDocumentStore) Create(ctx context.Context, doc *model.Document) error {
	if m.createFn != nil {
		return m.createFn(ctx, doc)
	}
	return nil
}

func (m *mockDocumentStore) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockDocumentStore) ListForUser(_ context.Context, _ int64) ([]model.DocumentSummary, error) {
	return nil, nil
}

func (m *mockDocumentStore) UpdateTitle(ctx context.Context, id int64, title string) (*model.Document, error) {
	if m.updateTitleFn != nil {
		return m.updateTitleFn(ctx, id, title)
	}
	return &model.Document{ID: id, Title: title}, nil
}

func (m *mockDocumentStore) UpdateContent(ctx context.Context, id int64, content string) (*model.Document, error) {
	if m.updateContentFn != nil {
		return m.updateContentFn(ctx, id, content)
	}
	return &model.Document{ID: id, Content: content}, nil
}

func (m *mockDocumentStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockDocumentStore) DeleteByOwner(ctx context.Context, ownerID int64) error {
	if m.deleteByOwnerFn != nil {
		return m.deleteByOwnerFn(ctx, ownerID)
	}
	return nil
}

func (m *mockDocumentStore) HasAccess(ctx context.Context, documentID, userID int64) (bool, error) {
	if m.hasAccessFn != nil {
		return m.hasAccessFn(ctx, documentID, userID)
	}
	return false, nil
}

func (m *mockDocumentStore) GrantAccess(ctx context.Context, documentID, userID int64) error {
	if m.grantAccessFn != nil {
		return m.grantAccessFn(ctx, documentID, userID)
	}
	return nil
}

func (m *mockDocumentStore) RevokeAllAccess(ctx context.Context, userID int64) error {
	if m.revokeAllAccessFn != nil {
		return m.revokeAllAccessFn(ctx, userID)
	}
	return nil
}

type mockInvitationStore struct {
	createFn       func(ctx context.Context, inv *model.Invitation) error
	getByIDFn      func(ctx context.Context, id int64) (*model.Invitation, error)
	getByTokenFn   func(ctx context.Context, token string) (*model.Invitation, error)
	getPendingFn   func(ctx context.Context, documentID, inviteeID int64) (*model.Invitation, error)
	transitionFn   func(ctx context.Context, id int64, status model.InvitationStatus) (*model.Invitation, error)
	transitions    []model.InvitationStatus
	expireOldCalls int
}

func (m *mockInvitationStore) Create(ctx context.Context, inv *model.Invitation) error {
	if m.createFn != nil {
		return m.createFn(ctx, inv)
	}
	return nil
}

func (m *mockInvitationStore) GetByID(ctx context.Context, id int64) (*model.Invitation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockInvitationStore) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, store.ErrNotFound
}

func (m *mockInvitationStore) GetPending(ctx context.Context, documentID, inviteeID int64) (*model.Invitation, error) {
	if m.getPendingFn != nil {
		return m.getPendingFn(ctx, documentID, inviteeID)
	}
	return nil, store.ErrNotFound
}

func (m *mockInvitationStore) ListPendingForUser(_ context.Context, _ int64) ([]model.Invitation, error) {
	return nil, nil
}

func (m *mockInvitationStore) ListByDocument(_ context.Context, _ int64) ([]model.Invitation, error) {
	return nil, nil
}

func (m *mockInvitationStore) Transition(ctx context.Context, id int64, status model.InvitationStatus) (*model.Invitation, error) {
	m.transitions = append(m.transitions, status)
	if m.transitionFn != nil {
		return m.transitionFn(ctx, id, status)
	}
	return &model.Invitation{ID: id, Status: status}, nil
}

func (m *mockInvitationStore) ExpireOld(_ context.Context) error {
	m.expireOldCalls++
	return nil
}

type mockComplaintStore struct {
	createFn  func(ctx context.Context, c *model.Complaint) error
	getByIDFn func(ctx context.Context, id int64) (*model.Complaint, error)
	respondFn func(ctx context.Context, id, respondentID int64, note string) (*model.Complaint, error)
	resolveFn func(ctx context.Context, id int64, resolution model.ComplaintResolution, penalty int64) (*model.Complaint, error)
}

func (m *mockComplaintStore) Create(ctx context.Context, c *model.Complaint) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil
}

func (m *mockComplaintStore) GetByID(ctx context.Context, id int64) (*model.Complaint, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockComplaintStore) ListUnansweredForRespondent(_ context.Context, _ int64) ([]model.Complaint, error) {
	return nil, nil
}

func (m *mockComplaintStore) ListOpen(_ context.Context) ([]model.Complaint, error) {
	return nil, nil
}

func (m *mockComplaintStore) Respond(ctx context.Context, id, respondentID int64, note string) (*model.Complaint, error) {
	if m.respondFn != nil {
		return m.respondFn(ctx, id, respondentID, note)
	}
	return &model.Complaint{ID: id, RespondentID: respondentID, RespondentNote: &note}, nil
}

func (m *mockComplaintStore) Resolve(ctx context.Context, id int64, resolution model.ComplaintResolution, penalty int64) (*model.Complaint, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, id, resolution, penalty)
	}
	return &model.Complaint{ID: id, Status: model.ComplaintStatusResolved, Resolution: &resolution, Penalty: penalty}, nil
}

type mockBlacklistStore struct {
	words           []string
	hasWordFn       func(ctx context.Context, word string) (bool, error)
	addWordFn       func(ctx context.Context, word string) error
	removeWordFn    func(ctx context.Context, word string) error
	createRequestFn func(ctx context.Context, req *model.BlacklistRequest) error
	getRequestFn    func(ctx context.Context, id int64) (*model.BlacklistRequest, error)
	decideFn        func(ctx context.Context, id int64, status model.BlacklistRequestStatus) (*model.BlacklistRequest, error)
	added           []string
}

func (m *mockBlacklistStore) ListWords(_ context.Context) ([]string, error) {
	return m.words, nil
}

func (m *mockBlacklistStore) HasWord(ctx context.Context, word string) (bool, error) {
	if m.hasWordFn != nil {
		return m.hasWordFn(ctx, word)
	}
	for _, w := range m.words {
		if w == word {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBlacklistStore) AddWord(ctx context.Context, word string) error {
	if m.addWordFn != nil {
		if err := m.addWordFn(ctx, word); err != nil {
			return err
		}
	}
	m.added = append(m.added, word)
	return nil
}

func (m *mockBlacklistStore) RemoveWord(ctx context.Context, word string) error {
	if m.removeWordFn != nil {
		return m.removeWordFn(ctx, word)
	}
	return nil
}

func (m *mockBlacklistStore) CreateRequest(ctx context.Context, req *model.BlacklistRequest) error {
	if m.createRequestFn != nil {
		return m.createRequestFn(ctx, req)
	}
	return nil
}

func (m *mockBlacklistStore) GetRequest(ctx context.Context, id int64) (*model.BlacklistRequest, error) {
	if m.getRequestFn != nil {
		return m.getRequestFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockBlacklistStore) ListPendingRequests(_ context.Context) ([]model.BlacklistRequest, error) {
	return nil, nil
}

func (m *mockBlacklistStore) DecideRequest(ctx context.Context, id int64, status model.BlacklistRequestStatus) (*model.BlacklistRequest, error) {
	if m.decideFn != nil {
		return m.decideFn(ctx, id, status)
	}
	return &model.BlacklistRequest{ID: id, Status: status}, nil
}

// mockStoreProvider hands the same mocks to every transaction.
type mockStoreProvider struct {
	users       *mockUserStore
	sessions    *mockSessionStore
	tokens      *memTokenStore
	documents   *mockDocumentStore
	invitations *mockInvitationStore
	complaints  *mockComplaintStore
	blacklist   *mockBlacklistStore
}

func newMockStoreProvider() *mockStoreProvider {
	return &mockStoreProvider{
		users:       &mockUserStore{},
		sessions:    &mockSessionStore{},
		tokens:      newMemTokenStore(map[int64]int64{}),
		documents:   &mockDocumentStore{},
		invitations: &mockInvitationStore{},
		complaints:  &mockComplaintStore{},
		blacklist:   &mockBlacklistStore{},
	}
}

func (m *mockStoreProvider) Users() store.UserStore             { return m.users }
func (m *mockStoreProvider) Sessions() store.SessionStore       { return m.sessions }
func (m *mockStoreProvider) Tokens() store.TokenStore           { return m.tokens }
func (m *mockStoreProvider) Documents() store.DocumentStore     { return m.documents }
func (m *mockStoreProvider) Invitations() store.InvitationStore { return m.invitations }
func (m *mockStoreProvider) Complaints() store.ComplaintStore   { return m.complaints }
func (m *mockStoreProvider) Blacklist() store.BlacklistStore    { return m.blacklist }

type mockTxRunner struct {
	stores service.StoreProvider
	calls  int
}

func (m *mockTxRunner) WithTx(_ context.Context, fn func(stores service.StoreProvider) error) error {
	m.calls++
	return fn(m.stores)
}

type mockChecker struct {
	checkFn     func(ctx context.Context, text string) ([]editor.ErrorSpan, error)
	transformFn func(ctx context.Context, text string) (string, error)
	checked     []string
}

func (m *mockChecker) Check(ctx context.Context, text string) ([]editor.ErrorSpan, error) {
	m.checked = append(m.checked, text)
	if m.checkFn != nil {
		return m.checkFn(ctx, text)
	}
	return nil, nil
}

func (m *mockChecker) Transform(ctx context.Context, text string) (string, error) {
	if m.transformFn != nil {
		return m.transformFn(ctx, text)
	}
	return text, nil
}

type recordingProducer struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingProducer) Enqueue(_ context.Context, event queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingProducer) Close() error {
	return nil
}

func (p *recordingProducer) types() []queue.TaskType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.TaskType, len(p.events))
	for i, e := range p.events {
		out[i] = e.TaskType
	}
	return out
}
