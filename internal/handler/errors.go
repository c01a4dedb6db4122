package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"clinic-booking/internal/logger"
	"clinic-booking/internal/model"
)

// Code maps a domain error onto a gRPC status code.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, model.ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, model.ErrConflict):
		return codes.AlreadyExists
	case errors.Is(err, model.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, model.ErrAuth):
		return codes.Unauthenticated
	case errors.Is(err, model.ErrServiceUnavailable):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// fail converts err to a status error. Auth and internal failures get a
// fixed message so nothing about accounts or internals leaks out.
func (h *Handler) fail(ctx context.Context, err error) error {
	code := Code(err)
	switch code {
	case codes.Unauthenticated:
		return status.Error(code, "invalid credentials")
	case codes.Internal:
		logger.For(ctx, h.log).Error("internal error", zap.Error(err))
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}
