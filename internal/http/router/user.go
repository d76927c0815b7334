package router

import (
	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/handler"
)

func RegistrationRouter(rg *gin.RouterGroup, h *handler.UserHandler) {
	rg.POST("", h.Create)
}

func MeRouter(rg *gin.RouterGroup, h *handler.UserHandler) {
	rg.GET("", h.Me)
	rg.GET("/stats", h.Stats)
	rg.GET("/feedback", h.Feedback)
}
