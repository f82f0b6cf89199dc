// Package controllers maps HTTP requests onto the service layer and domain
// errors onto HTTP statuses.
package controllers

import (
	"errors"
	"net/http"

	"github.com/kopisahaja/kopisahaja/app/services"
	"github.com/kopisahaja/kopisahaja/pkg/ctx"
	"github.com/kopisahaja/kopisahaja/pkg/logger"
)

// respondError translates a service error into the JSON envelope.
func respondError(c *ctx.Context, err error) {
	if ve, ok := services.AsValidation(err); ok {
		c.ValidationError(ve.Fields)
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.NotFound()
	case errors.Is(err, services.ErrInvalidTransition):
		c.Error(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized("Invalid credentials")
	case errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrDuplicateUsername):
		c.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidResetToken):
		c.Error(http.StatusBadRequest, err.Error())
	default:
		logger.WithCtx(c.Context()).Error("request failed", "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
	}
}
