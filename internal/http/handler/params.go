package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/http/middleware"
	"editflow.app/server/internal/model"
)

// currentUser returns the user attached by middleware.RequireAuth. Routes
// without that middleware get a 401.
func currentUser(c *gin.Context) (*model.User, bool) {
	user := middleware.GetUser(c.Request.Context())
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "code": "unauthenticated"})
		return nil, false
	}
	return user, true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

// pagination reads limit and offset query parameters. Services clamp the
// values; unparsable ones fall back to zero.
func pagination(c *gin.Context) (limit, offset int32) {
	if v, err := strconv.ParseInt(c.Query("limit"), 10, 32); err == nil {
		limit = int32(v)
	}
	if v, err := strconv.ParseInt(c.Query("offset"), 10, 32); err == nil {
		offset = int32(v)
	}
	return limit, offset
}
