package handler

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"editflow.app/server/internal/checker"
	"editflow.app/server/internal/editor"
	"editflow.app/server/internal/service"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorMappings is checked in order with errors.Is; the first match wins.
var errorMappings = []errorMapping{
	{service.ErrSessionNotFound, http.StatusNotFound, "session_not_found", "editing session not found"},
	{service.ErrUserNotFound, http.StatusNotFound, "user_not_found", "user not found"},
	{service.ErrDocumentNotFound, http.StatusNotFound, "document_not_found", "document not found"},
	{service.ErrInviteNotFound, http.StatusNotFound, "invite_not_found", "invitation not found"},
	{service.ErrComplaintNotFound, http.StatusNotFound, "complaint_not_found", "complaint not found"},
	{service.ErrRequestNotFound, http.StatusNotFound, "request_not_found", "blacklist request not found"},
	{service.ErrWordNotBlacklisted, http.StatusNotFound, "word_not_found", "word is not blacklisted"},

	{service.ErrNotDocumentOwner, http.StatusForbidden, "not_owner", "only the document owner can do this"},
	{service.ErrInviteNotForUser, http.StatusForbidden, "invite_not_for_user", "invitation is addressed to another user"},
	{service.ErrNotComplaintSubject, http.StatusForbidden, "not_complaint_subject", "complaint is addressed to another user"},
	{service.ErrCannotModifySelf, http.StatusForbidden, "cannot_modify_self", "superusers cannot change their own account"},
	{service.ErrUserSuspended, http.StatusForbidden, "suspended", "account suspended"},

	{service.ErrInsufficientTokens, http.StatusPaymentRequired, "insufficient_tokens", "not enough tokens"},
	{service.ErrWordLimitExceeded, http.StatusUnprocessableEntity, "word_limit_exceeded", "text exceeds the free-tier word limit"},
	{service.ErrCooldownActive, http.StatusTooManyRequests, "cooldown_active", "free-tier cooldown is active"},

	{editor.ErrCursorOutOfRange, http.StatusConflict, "no_pending_correction", "every correction has been reviewed"},
	{service.ErrBalanceContention, http.StatusConflict, "balance_contention", "balance changed concurrently, try again"},
	{service.ErrUserExists, http.StatusConflict, "user_exists", "username or email already registered"},
	{service.ErrInvitePendingExists, http.StatusConflict, "invite_pending", "a pending invitation already exists"},
	{service.ErrAlreadyCollaborator, http.StatusConflict, "already_collaborator", "user already collaborates on this document"},
	{service.ErrAlreadyResponded, http.StatusConflict, "already_responded", "complaint already has a response"},
	{service.ErrComplaintResolved, http.StatusConflict, "complaint_resolved", "complaint is already resolved"},
	{service.ErrWordBlacklisted, http.StatusConflict, "word_blacklisted", "word is already blacklisted"},
	{service.ErrRequestPending, http.StatusConflict, "request_pending", "a request for this word is already pending"},
	{service.ErrRequestDecided, http.StatusConflict, "request_decided", "blacklist request was already decided"},

	{service.ErrInviteExpired, http.StatusGone, "invite_expired", "invitation has expired"},
	{service.ErrInviteAlreadyUsed, http.StatusGone, "invite_used", "invitation was already answered"},
	{service.ErrInviteRevoked, http.StatusGone, "invite_revoked", "invitation has been revoked"},

	{service.ErrEmptyText, http.StatusBadRequest, "empty_text", "text must not be blank"},
	{service.ErrInvalidTokenPack, http.StatusBadRequest, "invalid_token_pack", "unsupported token pack"},
	{service.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "amount must be positive"},
	{service.ErrInvalidUsername, http.StatusBadRequest, "invalid_username", "username must not be blank"},
	{service.ErrInvalidRole, http.StatusBadRequest, "invalid_role", "unknown role"},
	{service.ErrSelfInvite, http.StatusBadRequest, "self_invite", "cannot invite yourself"},
	{service.ErrSelfComplaint, http.StatusBadRequest, "self_complaint", "cannot file a complaint against yourself"},
	{service.ErrEmptyNote, http.StatusBadRequest, "empty_note", "note must not be blank"},
	{service.ErrInvalidResolution, http.StatusBadRequest, "invalid_resolution", "unknown complaint resolution"},
	{service.ErrPenaltyRequired, http.StatusBadRequest, "penalty_required", "a penalizing resolution needs a positive token amount"},
	{service.ErrInvalidWord, http.StatusBadRequest, "invalid_word", "word must be a single non-blank token"},

	{editor.ErrInvalidSpan, http.StatusBadGateway, "invalid_upstream_response", "the correction service returned an invalid response"},
	{checker.ErrUpstream, http.StatusBadGateway, "upstream_error", "the correction service is unavailable"},
}

// respondError writes the JSON error body for err. Unknown errors become a
// 500 and are logged with op.
func respondError(c *gin.Context, err error, op string) {
	ctx := c.Request.Context()

	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		seconds := int(math.Ceil(cooldown.Remaining.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "free-tier cooldown is active",
			"code":                "cooldown_active",
			"retry_after_seconds": seconds,
		})
		return
	}

	var saveErr *service.SaveError
	if errors.As(err, &saveErr) {
		slog.ErrorContext(ctx, "failed to save document", "error", saveErr.Err)
		// The text goes back to the client so nothing typed is lost.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to save document",
			"code":  "save_failed",
			"text":  saveErr.Text,
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				slog.WarnContext(ctx, op+" failed", "error", err)
			}
			c.JSON(m.status, gin.H{"error": m.message, "code": m.code})
			return
		}
	}

	slog.ErrorContext(ctx, op+" failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "internal"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": "invalid_request"})
}
