package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/dto"
	"editflow.app/server/internal/service"
)

type UserHandler struct {
	userService  service.UserService
	statsService service.StatsService
}

func NewUserHandler(userService service.UserService, statsService service.StatsService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		statsService: statsService,
	}
}

// Create registers a user after the external auth provider has signed them
// up. Guarded by the admin API key.
func (h *UserHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		badRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(ctx, req.Username, req.Email)
	if err != nil {
		respondError(c, err, "create user")
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) Stats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statsService.Get(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "get stats")
		return
	}
	c.JSON(http.StatusOK, dto.ToStatsResponse(stats))
}

// Feedback lists the suggestions the user rejected, newest first.
func (h *UserHandler) Feedback(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit := int32(50)
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}

	feedback, err := h.statsService.Feedback(c.Request.Context(), user.ID, limit)
	if err != nil {
		respondError(c, err, "list feedback")
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}
