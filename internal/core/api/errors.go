package api

import (
	"context"
	"errors"

	"github.com/flowbuilder/branchkeeper/internal/core/auth"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Auth errors are mapped in the auth package interceptor.
// ConfigError and malformed requests map to INVALID_ARGUMENT.
// Unknown branches map to NOT_FOUND.
// Database errors map to UNAVAILABLE.

var errMissingTenant = status.Error(codes.Internal, "missing tenant_id in context")

var tenantFromContext = auth.TenantIDFromContext

// toStatus maps domain and store errors onto gRPC status codes.
// Errors that already carry a status pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case types.IsConfigError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, types.ErrBranchNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, types.ErrBranchExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, types.ErrEmptyBranchName), errors.Is(err, types.ErrBranchNameTooLong):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}
