package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/dto"
	"editflow.app/server/internal/service"
)

// AdminHandler serves the superuser account endpoints. The router puts it
// behind RequireAuth and RequireSuper.
type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)

	users, err := h.adminService.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserResponses(users)})
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "role must be one of free, paid, super")
		return
	}

	user, err := h.adminService.SetRole(c.Request.Context(), actor.ID, userID, req.Role)
	if err != nil {
		respondError(c, err, "set role")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *AdminHandler) SetSuspended(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req dto.SetSuspendedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "suspended is required")
		return
	}

	user, err := h.adminService.SetSuspended(c.Request.Context(), actor.ID, userID, *req.Suspended)
	if err != nil {
		respondError(c, err, "set suspended")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), actor.ID, userID); err != nil {
		respondError(c, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
