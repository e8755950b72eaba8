package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grayola/task-manager/internal/apperr"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindAuth:                http.StatusUnauthorized,
	apperr.KindForbidden:           http.StatusForbidden,
	apperr.KindNotFound:            http.StatusNotFound,
	apperr.KindValidation:          http.StatusBadRequest,
	apperr.KindInsufficientCredits: http.StatusPaymentRequired,
	apperr.KindConflict:            http.StatusConflict,
	apperr.KindRateLimited:         http.StatusTooManyRequests,
	apperr.KindUpload:              http.StatusBadGateway,
	apperr.KindStore:               http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	if code, ok := statusByKind[apperr.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// WriteError writes the {"ok":false} envelope for err. Unclassified errors
// are reported as internal errors without their text.
func WriteError(c *gin.Context, err error) {
	_ = c.Error(err)

	kind := apperr.KindOf(err)
	msg := apperr.MessageOf(err)
	if kind == apperr.KindUnknown {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(StatusFor(err), gin.H{
		"ok":    false,
		"error": msg,
		"kind":  string(kind),
	})
}

// BadRequest writes a 400 for a request that failed to bind.
func BadRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"ok":      false,
		"error":   "invalid request",
		"kind":    string(apperr.KindValidation),
		"details": err.Error(),
	})
}
