package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/middleware"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/service"
)

type mockAuthService struct {
	user *model.User
	err  error
}

func (m *mockAuthService) ValidateSession(_ context.Context, _ int64) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

// newAuthedRouter returns an engine whose routes under the returned group
// see user as the authenticated caller.
func newAuthedRouter(user *model.User) (*gin.Engine, *gin.RouterGroup) {
	router := gin.New()
	router.Use(middleware.Recovery())
	group := router.Group("", middleware.RequireAuth(&mockAuthService{user: user}))
	return router, group
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.SessionIDHeader, "1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

type mockUserService struct {
	createFn func(ctx context.Context, username, email string) (*model.User, error)
}

func (m *mockUserService) Create(ctx context.Context, username, email string) (*model.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, email)
	}
	return &model.User{ID: 1, Username: username, Email: email, Role: model.RoleFree}, nil
}

func (m *mockUserService) Get(_ context.Context, id int64) (*model.User, error) {
	return &model.User{ID: id}, nil
}

func (m *mockUserService) List(_ context.Context, _, _ int32) ([]model.User, error) {
	return nil, nil
}

type mockStatsService struct {
	stats *model.UserStats
}

func (m *mockStatsService) Get(_ context.Context, userID int64) (*model.UserStats, error) {
	if m.stats != nil {
		return m.stats, nil
	}
	return &model.UserStats{UserID: userID}, nil
}

func (m *mockStatsService) Feedback(_ context.Context, _ int64, _ int32) ([]model.CorrectionFeedback, error) {
	return nil, nil
}

type mockEditorService struct {
	startFn     func(ctx context.Context, userID int64, documentID *int64) (*model.EditingSession, error)
	getFn       func(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error)
	submitFn    func(ctx context.Context, userID int64, sessionID, text string) (*model.EditingSession, error)
	acceptFn    func(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error)
	rejectFn    func(ctx context.Context, userID int64, sessionID, reason string) (*model.EditingSession, error)
	transformFn func(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error)
	loadFn      func(ctx context.Context, userID int64, sessionID string, documentID int64) (*model.EditingSession, error)
	saveFn      func(ctx context.Context, userID int64, sessionID, title string) (*model.Document, error)
	downloadFn  func(ctx context.Context, userID int64, sessionID string) (string, string, error)
	closeFn     func(ctx context.Context, userID int64, sessionID string) error
}

var _ service.EditorService = (*mockEditorService)(nil)

func (m *mockEditorService) Start(ctx context.Context, userID int64, documentID *int64) (*model.EditingSession, error) {
	if m.startFn != nil {
		return m.startFn(ctx, userID, documentID)
	}
	return &model.EditingSession{ID: "sess-1", UserID: userID, DocumentID: documentID}, nil
}

func (m *mockEditorService) Get(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, sessionID)
	}
	return &model.EditingSession{ID: sessionID, UserID: userID}, nil
}

func (m *mockEditorService) Submit(ctx context.Context, userID int64, sessionID, text string) (*model.EditingSession, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, userID, sessionID, text)
	}
	return &model.EditingSession{ID: sessionID, UserID: userID}, nil
}

func (m *mockEditorService) Accept(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error) {
	if m.acceptFn != nil {
		return m.acceptFn(ctx, userID, sessionID)
	}
	return &model.EditingSession{ID: sessionID, UserID: userID}, nil
}

func (m *mockEditorService) Reject(ctx context.Context, userID int64, sessionID, reason string) (*model.EditingSession, error) {
	if m.rejectFn != nil {
		return m.rejectFn(ctx, userID, sessionID, reason)
	}
	return &model.EditingSession{ID: sessionID, UserID: userID}, nil
}

func (m *mockEditorService) Transform(ctx context.Context, userID int64, sessionID string) (*model.EditingSession, error) {
	if m.transformFn != nil {
		return m.transformFn(ctx, userID, sessionID)
	}
	return &model.EditingSession{ID: sessionID, UserID: userID}, nil
}

func (m *mockEditorService) LoadDocument(ctx context.Context, userID int64, sessionID string, documentID int64) (*model.EditingSession, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, userID, sessionID, documentID)
	}
	return &model.EditingSession{ID: sessionID, UserID: userID, DocumentID: &documentID}, nil
}

func (m *mockEditorService) Save(ctx context.Context, userID int64, sessionID, title string) (*model.Document, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, userID, sessionID, title)
	}
	return &model.Document{ID: 1, OwnerID: userID, Title: title}, nil
}

func (m *mockEditorService) Download(ctx context.Context, userID int64, sessionID string) (string, string, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, userID, sessionID)
	}
	return "untitled.txt", "", nil
}

func (m *mockEditorService) Close(ctx context.Context, userID int64, sessionID string) error {
	if m.closeFn != nil {
		return m.closeFn(ctx, userID, sessionID)
	}
	return nil
}

type mockInvitationService struct {
	inviteFn  func(ctx context.Context, documentID, inviterID int64, username string) (*model.Invitation, error)
	pendingFn func(ctx context.Context, userID int64) ([]model.Invitation, error)
	acceptFn  func(ctx context.Context, token string, userID int64) (*model.Invitation, error)
	declineFn func(ctx context.Context, token string, userID int64) (*model.Invitation, error)
	revokeFn  func(ctx context.Context, invitationID, ownerID int64) (*model.Invitation, error)
}

var _ service.InvitationService = (*mockInvitationService)(nil)

func (m *mockInvitationService) Invite(ctx context.Context, documentID, inviterID int64, username string) (*model.Invitation, error) {
	if m.inviteFn != nil {
		return m.inviteFn(ctx, documentID, inviterID, username)
	}
	return &model.Invitation{ID: 1, DocumentID: documentID, InviterID: inviterID}, nil
}

func (m *mockInvitationService) ListPendingForUser(ctx context.Context, userID int64) ([]model.Invitation, error) {
	if m.pendingFn != nil {
		return m.pendingFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockInvitationService) ListForDocument(_ context.Context, _, _ int64) ([]model.Invitation, error) {
	return nil, nil
}

func (m *mockInvitationService) Accept(ctx context.Context, token string, userID int64) (*model.Invitation, error) {
	if m.acceptFn != nil {
		return m.acceptFn(ctx, token, userID)
	}
	return &model.Invitation{ID: 1, InviteeID: userID, Status: model.InvitationStatusAccepted}, nil
}

func (m *mockInvitationService) Decline(ctx context.Context, token string, userID int64) (*model.Invitation, error) {
	if m.declineFn != nil {
		return m.declineFn(ctx, token, userID)
	}
	return &model.Invitation{ID: 1, InviteeID: userID, Status: model.InvitationStatusDeclined}, nil
}

func (m *mockInvitationService) Revoke(ctx context.Context, invitationID, ownerID int64) (*model.Invitation, error) {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, invitationID, ownerID)
	}
	return &model.Invitation{ID: invitationID, InviterID: ownerID, Status: model.InvitationStatusRevoked}, nil
}

type mockTokenService struct {
	balance    int64
	purchaseFn func(ctx context.Context, userID, amount int64) (int64, error)
}

var _ service.TokenService = (*mockTokenService)(nil)

func (m *mockTokenService) Balance(_ context.Context, _ int64) (int64, error) {
	return m.balance, nil
}

func (m *mockTokenService) Packs() []model.TokenPack {
	return service.TokenPacks
}

func (m *mockTokenService) Purchase(ctx context.Context, userID, amount int64) (int64, error) {
	if m.purchaseFn != nil {
		return m.purchaseFn(ctx, userID, amount)
	}
	return m.balance + amount, nil
}

func (m *mockTokenService) Debit(_ context.Context, _, cost int64, _ model.TokenReason) (int64, error) {
	return m.balance - cost, nil
}

func (m *mockTokenService) Credit(_ context.Context, _, amount int64, _ model.TokenReason) (int64, error) {
	return m.balance + amount, nil
}

func (m *mockTokenService) History(_ context.Context, _ int64, _ int32) ([]model.TokenTransaction, error) {
	return nil, nil
}
