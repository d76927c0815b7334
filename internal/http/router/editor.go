package router

import (
	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/handler"
)

func EditorRouter(rg *gin.RouterGroup, h *handler.EditorHandler) {
	rg.POST("", h.Start)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Close)
	rg.POST("/:id/submit", h.Submit)
	rg.POST("/:id/accept", h.Accept)
	rg.POST("/:id/reject", h.Reject)
	rg.POST("/:id/transform", h.Transform)
	rg.POST("/:id/load", h.LoadDocument)
	rg.POST("/:id/save", h.Save)
	rg.GET("/:id/download", h.Download)
}
