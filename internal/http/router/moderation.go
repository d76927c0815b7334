package router

import (
	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/handler"
)

func ComplaintRouter(rg *gin.RouterGroup, h *handler.ComplaintHandler) {
	rg.POST("", h.File)
	rg.GET("/inbox", h.Inbox)
	rg.POST("/:id/respond", h.Respond)
}

func BlacklistRouter(rg *gin.RouterGroup, h *handler.BlacklistHandler) {
	rg.GET("", h.Words)
	rg.POST("/requests", h.Request)
}

// AdminRouter mounts the superuser endpoints. rg must already require a
// superuser.
func AdminRouter(rg *gin.RouterGroup, admin *handler.AdminHandler, complaints *handler.ComplaintHandler, blacklist *handler.BlacklistHandler) {
	users := rg.Group("/users")
	{
		users.GET("", admin.ListUsers)
		users.PUT("/:id/role", admin.SetRole)
		users.PUT("/:id/suspended", admin.SetSuspended)
		users.DELETE("/:id", admin.DeleteUser)
	}

	c := rg.Group("/complaints")
	{
		c.GET("", complaints.ListOpen)
		c.POST("/:id/resolve", complaints.Resolve)
	}

	bl := rg.Group("/blacklist")
	{
		bl.GET("/requests", blacklist.ListRequests)
		bl.POST("/requests/:id/approve", blacklist.Approve)
		bl.POST("/requests/:id/reject", blacklist.RejectRequest)
		bl.POST("/words", blacklist.AddWord)
		bl.DELETE("/words/:word", blacklist.RemoveWord)
	}
}
