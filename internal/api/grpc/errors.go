package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
)

// toStatus translates service errors into gRPC status errors. Validation and
// overlap failures carry their message back to the caller for inline display;
// anything unexpected is logged and reported generically.
func toStatus(method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		validation *domain.ValidationError
		overlap    *domain.OverlapError
		notFound   *domain.NotFoundError
		transition *domain.InvalidTransitionError
	)
	switch {
	case errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, validation.Error())
	case errors.As(err, &overlap):
		return status.Error(codes.FailedPrecondition, overlap.Error())
	case errors.As(err, &transition):
		return status.Error(codes.FailedPrecondition, transition.Error())
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, notFound.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		logger.Warn("Permission denied", "method", method, "error", err)
		return status.Error(codes.PermissionDenied, "permission denied")
	case errors.Is(err, repository.ErrConflict):
		return status.Error(codes.Aborted, "concurrent update, please retry")
	default:
		logger.Error("Unhandled service error", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
