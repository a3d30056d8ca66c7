package grpcserver

import (
	"errors"

	"github.com/ferdousbhai/echo/internal/errs"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var codeOf = []struct {
	err  error
	code codes.Code
}{
	{errs.ErrUnauthenticated, codes.Unauthenticated},
	{errs.ErrForbidden, codes.PermissionDenied},
	{errs.ErrNotFound, codes.NotFound},
	{errs.ErrInvalidState, codes.FailedPrecondition},
	{errs.ErrInvalidArgument, codes.InvalidArgument},
	{errs.ErrAlreadyExists, codes.AlreadyExists},
	{errs.ErrRateLimited, codes.ResourceExhausted},
}

// toStatus maps service errors to gRPC statuses. Unknown errors become
// Internal without their text.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, c := range codeOf {
		if errors.Is(err, c.err) {
			return status.Error(c.code, err.Error())
		}
	}
	return status.Error(codes.Internal, "internal")
}
