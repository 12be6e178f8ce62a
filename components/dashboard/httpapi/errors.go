package httpapi

import (
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
)

type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &statusError{code: http.StatusBadRequest, err: err}
}

func statusFor(err error) int {
	var se *statusError
	switch {
	case errors.As(err, &se):
		return se.code
	case errors.Is(err, dashboard.ErrValidation), errors.Is(err, dashboard.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail renders err as {"error": "..."} with the mapped status.
func (h *Handlers) fail(ctx router.Context, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger().Error("dashboard request failed", zap.Int("status", status), zap.Error(err))
	}
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
