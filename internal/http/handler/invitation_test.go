package handler_test

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"editflow.app/server/internal/http/handler"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/service"
)

var _ = Describe("InvitationHandler", func() {
	var (
		router *gin.Engine
		svc    *mockInvitationService
		user   *model.User
	)

	BeforeEach(func() {
		user = &model.User{ID: 7, Username: "alice", Role: model.RolePaid}
		svc = &mockInvitationService{}
		h := handler.NewInvitationHandler(svc)

		var g *gin.RouterGroup
		router, g = newAuthedRouter(user)
		g.POST("/documents/:id/invitations", h.Create)
		g.GET("/invitations", h.ListPending)
		g.POST("/invitations/accept", h.Accept)
		g.POST("/invitations/decline", h.Decline)
		g.POST("/invitations/:id/revoke", h.Revoke)
	})

	Describe("Create", func() {
		It("returns 201 without exposing the token", func() {
			svc.inviteFn = func(_ context.Context, documentID, inviterID int64, username string) (*model.Invitation, error) {
				Expect(documentID).To(Equal(int64(100)))
				Expect(inviterID).To(Equal(user.ID))
				Expect(username).To(Equal("bob"))
				return &model.Invitation{
					ID:         1,
					DocumentID: documentID,
					InviterID:  inviterID,
					InviteeID:  8,
					Token:      "secret-token",
					Status:     model.InvitationStatusPending,
					ExpiresAt:  time.Now().Add(7 * 24 * time.Hour),
				}, nil
			}

			w := doJSON(router, http.MethodPost, "/documents/100/invitations", map[string]string{"username": "bob"})

			Expect(w.Code).To(Equal(http.StatusCreated))
			resp := decode(w)
			Expect(resp["document_id"]).To(Equal("100"))
			Expect(resp["status"]).To(Equal("pending"))
			Expect(resp).NotTo(HaveKey("token"))
		})

		It("returns 400 for a malformed document id", func() {
			w := doJSON(router, http.MethodPost, "/documents/abc/invitations", map[string]string{"username": "bob"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		DescribeTable("maps invite errors",
			func(err error, status int) {
				svc.inviteFn = func(context.Context, int64, int64, string) (*model.Invitation, error) {
					return nil, err
				}

				w := doJSON(router, http.MethodPost, "/documents/100/invitations", map[string]string{"username": "bob"})

				Expect(w.Code).To(Equal(status))
			},
			Entry("not the owner", service.ErrNotDocumentOwner, http.StatusForbidden),
			Entry("unknown invitee", service.ErrUserNotFound, http.StatusNotFound),
			Entry("self invite", service.ErrSelfInvite, http.StatusBadRequest),
			Entry("already pending", service.ErrInvitePendingExists, http.StatusConflict),
			Entry("already collaborating", service.ErrAlreadyCollaborator, http.StatusConflict),
		)
	})

	Describe("ListPending", func() {
		It("includes the token so the invitee can answer", func() {
			svc.pendingFn = func(_ context.Context, userID int64) ([]model.Invitation, error) {
				return []model.Invitation{{ID: 1, InviteeID: userID, Token: "t1", Status: model.InvitationStatusPending}}, nil
			}

			w := doJSON(router, http.MethodGet, "/invitations", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			invs := decode(w)["invitations"].([]any)
			Expect(invs).To(HaveLen(1))
			Expect(invs[0].(map[string]any)["token"]).To(Equal("t1"))
		})
	})

	Describe("Accept", func() {
		It("requires a token", func() {
			w := doJSON(router, http.MethodPost, "/invitations/accept", map[string]string{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		DescribeTable("reports unusable invitations as gone",
			func(err error, code string) {
				svc.acceptFn = func(context.Context, string, int64) (*model.Invitation, error) {
					return nil, err
				}

				w := doJSON(router, http.MethodPost, "/invitations/accept", map[string]string{"token": "t"})

				Expect(w.Code).To(Equal(http.StatusGone))
				Expect(decode(w)["code"]).To(Equal(code))
			},
			Entry("expired", service.ErrInviteExpired, "invite_expired"),
			Entry("used", service.ErrInviteAlreadyUsed, "invite_used"),
			Entry("revoked", service.ErrInviteRevoked, "invite_revoked"),
		)

		It("refuses invitations addressed to someone else", func() {
			svc.acceptFn = func(context.Context, string, int64) (*model.Invitation, error) {
				return nil, service.ErrInviteNotForUser
			}

			w := doJSON(router, http.MethodPost, "/invitations/accept", map[string]string{"token": "t"})

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	It("declines an invitation", func() {
		w := doJSON(router, http.MethodPost, "/invitations/decline", map[string]string{"token": "t"})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w)["status"]).To(Equal("declined"))
	})

	It("revokes as the inviter", func() {
		var owner int64
		svc.revokeFn = func(_ context.Context, invitationID, ownerID int64) (*model.Invitation, error) {
			owner = ownerID
			return &model.Invitation{ID: invitationID, Status: model.InvitationStatusRevoked}, nil
		}

		w := doJSON(router, http.MethodPost, "/invitations/5/revoke", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(owner).To(Equal(user.ID))
	})
})
