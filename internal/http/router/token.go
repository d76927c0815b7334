package router

import (
	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/handler"
)

func TokenRouter(rg *gin.RouterGroup, h *handler.TokenHandler) {
	rg.GET("", h.Balance)
	rg.GET("/packs", h.Packs)
	rg.POST("/purchase", h.Purchase)
	rg.GET("/history", h.History)
}
