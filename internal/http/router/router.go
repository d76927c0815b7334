package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"editflow.app/server/internal/http/handler"
	"editflow.app/server/internal/http/middleware"
	"editflow.app/server/internal/service"
)

type RouterConfig struct {
	AdminAPIKey string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(services.Auth())

	userHandler := handler.NewUserHandler(services.Users(), services.Stats())
	editorHandler := handler.NewEditorHandler(services.Editor())
	documentHandler := handler.NewDocumentHandler(services.Documents())
	invitationHandler := handler.NewInvitationHandler(services.Invitations())
	tokenHandler := handler.NewTokenHandler(services.Tokens())
	complaintHandler := handler.NewComplaintHandler(services.Complaints())
	blacklistHandler := handler.NewBlacklistHandler(services.Blacklist())
	adminHandler := handler.NewAdminHandler(services.Admin())

	v1 := router.Group("/api/v1")
	{
		RegistrationRouter(v1.Group("/users", middleware.RequireAdminAPIKey(cfg.AdminAPIKey)), userHandler)

		authed := v1.Group("", requireAuth)
		MeRouter(authed.Group("/me"), userHandler)
		EditorRouter(authed.Group("/editor/sessions"), editorHandler)
		DocumentRouter(authed.Group("/documents"), documentHandler, invitationHandler)
		InvitationRouter(authed.Group("/invitations"), invitationHandler)
		TokenRouter(authed.Group("/tokens"), tokenHandler)
		ComplaintRouter(authed.Group("/complaints"), complaintHandler)
		BlacklistRouter(authed.Group("/blacklist"), blacklistHandler)

		AdminRouter(authed.Group("/admin", middleware.RequireSuper()), adminHandler, complaintHandler, blacklistHandler)
	}
}
