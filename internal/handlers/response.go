package handler

import (
	"errors"
	"net/http"

	"storefront-backend/internal/apperror"

	"github.com/gin-gonic/gin"
)

// statusByKind is the only place error kinds become HTTP status codes.
var statusByKind = map[apperror.Kind]int{
	apperror.InvalidArgument: http.StatusBadRequest,
	apperror.NotFound:        http.StatusNotFound,
	// The notification poller has always received 400 here; changing it is a
	// product decision.
	apperror.NothingPending:      http.StatusBadRequest,
	apperror.UpstreamUnavailable: http.StatusInternalServerError,
	apperror.Internal:            http.StatusInternalServerError,
}

const internalErrorMessage = "An internal server error occurred"

func statusFor(kind apperror.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// respondError writes the failure envelope. With exposeCause set, internal
// errors carry the raw cause in an "error" field instead of "data".
func respondError(c *gin.Context, err error, exposeCause bool) {
	kind := apperror.KindOf(err)
	status := statusFor(kind)

	message := internalErrorMessage
	var cause error = err
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
		if appErr.Err != nil {
			cause = appErr.Err
		}
	}

	_ = c.Error(err)

	if exposeCause && kind == apperror.Internal {
		c.JSON(status, gin.H{
			"success": false,
			"message": message,
			"error":   cause.Error(),
		})
		return
	}

	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"data":    nil,
	})
}
