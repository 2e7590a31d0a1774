package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/platform/apierr"
)

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusUnprocessableEntity
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeAuthorization:
		return http.StatusForbidden
	case domainagg.CodeUnauthenticated:
		return http.StatusUnauthorized
	case domainagg.CodeUnavailable:
		return http.StatusServiceUnavailable
	case domainagg.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error renders err with the status of its aggregate code. Messages of
// internal failures are not exposed.
func Error(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok && ae.Status != 0 {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errors.New(ae.Error()))
		return
	}
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	status := StatusFor(code)
	msg := domainagg.MessageOf(err)
	if code == domainagg.CodeInternal || code == domainagg.CodeInvariantViolation {
		msg = "Something went wrong, please try again later."
	}
	_ = c.Error(err)
	RespondError(c, status, string(code), errors.New(msg))
}
