// Package handler provides the HTTP surface of hpn-quill.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hpn/hpn-quill/internal/domain"
	"github.com/hpn/hpn-quill/internal/workflow"
)

// Labels for failures that are not provider errors.
const (
	labelInvalidRequest = "invalid_request"
	labelConflict       = "conflict"
	labelDraftNotFound  = "draft_not_found"
	labelInternal       = "internal_error"
)

// ErrorResponse is the envelope returned for every failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusForKind maps the error taxonomy onto HTTP status codes.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindEmptyInput, domain.KindUnsupportedProvider:
		return http.StatusBadRequest
	case domain.KindMissingCredential:
		return http.StatusUnauthorized
	case domain.KindQuotaExceeded:
		return http.StatusPaymentRequired
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// classify turns any handler-visible error into a status and envelope.
func classify(err error) (int, ErrorResponse) {
	var pe *domain.ProviderError
	switch {
	case errors.As(err, &pe):
		return statusForKind(pe.Kind), ErrorResponse{Error: pe.Kind.Label(), Message: pe.Error()}
	case errors.Is(err, workflow.ErrBlankContent):
		return http.StatusBadRequest, ErrorResponse{Error: domain.KindEmptyInput.Label(), Message: "Text is required to continue writing"}
	case errors.Is(err, workflow.ErrBusy), errors.Is(err, workflow.ErrInvalidTransition):
		return http.StatusConflict, ErrorResponse{Error: labelConflict, Message: err.Error()}
	case errors.Is(err, workflow.ErrDraftIndex):
		return http.StatusNotFound, ErrorResponse{Error: labelDraftNotFound, Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: labelInternal, Message: "Internal server error"}
	}
}

// abortWithError writes the envelope for err and stops the chain.
func abortWithError(c *gin.Context, err error) {
	status, body := classify(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// abortInvalid rejects a malformed request body or parameter.
func abortInvalid(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: labelInvalidRequest, Message: message})
}
