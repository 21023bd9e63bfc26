package controllers

import (
	"net/http"
	"strconv"

	"Huddle/apperrors"
	"Huddle/logger"
	"Huddle/middlewares"

	"github.com/gin-gonic/gin"
)

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.CodeMessageTooLong, apperrors.CodeMessageEmpty, apperrors.CodeInvalidPayload,
		apperrors.CodeCannotReplyToReply:
		return http.StatusBadRequest
	case apperrors.CodeNotAuthorized:
		return http.StatusForbidden
	case apperrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeMessageDeleted, apperrors.CodeAlreadyDeleted:
		return http.StatusConflict
	case apperrors.CodeSequenceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the {error: {code, message, retryAfter}} body. Causes
// of internal errors are logged, never returned.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.Code == apperrors.CodeInternal {
		logger.Error("request failed", "path", c.FullPath(), "error", err)
	}

	body := gin.H{"code": appErr.Code, "message": appErr.Message}
	if secs := appErr.RetryAfterSeconds(); secs > 0 {
		body["retryAfter"] = secs
		c.Header("Retry-After", strconv.Itoa(secs))
	}
	c.AbortWithStatusJSON(statusFor(appErr.Code), gin.H{"error": body})
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthenticated)
	}
	return userID, ok
}
