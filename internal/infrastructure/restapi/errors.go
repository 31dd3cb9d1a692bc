package restapi

import (
	"errors"
	"net/http"

	"sambv/internal/app/port"
	"sambv/internal/app/service"
	"sambv/internal/client"
	"sambv/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every failed request.
type APIError struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUnknownToken),
		errors.Is(err, service.ErrUnknownVault):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPanelBusy),
		errors.Is(err, service.ErrAlreadyShared):
		return http.StatusConflict
	case errors.Is(err, service.ErrMissingInput),
		errors.Is(err, service.ErrInvalidAddress),
		errors.Is(err, service.ErrInvalidAvatar),
		errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, utils.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoQuote),
		errors.Is(err, service.ErrNoWallet),
		errors.Is(err, service.ErrNothingToShare):
		return http.StatusUnprocessableEntity
	case errors.Is(err, port.ErrOutsideFrame),
		errors.Is(err, service.ErrNotificationsDeclined):
		return http.StatusFailedDependency
	case errors.Is(err, client.ErrQuoteRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, APIError{Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, APIError{Error: err.Error()})
}
