package router

import (
	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/handler"
)

func DocumentRouter(rg *gin.RouterGroup, h *handler.DocumentHandler, inv *handler.InvitationHandler) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)

	rg.POST("/:id/invitations", inv.Create)
	rg.GET("/:id/invitations", inv.ListForDocument)
}

func InvitationRouter(rg *gin.RouterGroup, h *handler.InvitationHandler) {
	rg.GET("", h.ListPending)
	rg.POST("/accept", h.Accept)
	rg.POST("/decline", h.Decline)
	rg.POST("/:id/revoke", h.Revoke)
}
