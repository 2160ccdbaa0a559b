package api

import (
	"context"
	"errors"

	"github.com/solatis/dosecalc/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps domain errors onto gRPC codes.
// Rule, unit and patient errors map to INVALID_ARGUMENT.
// Unknown drugs map to NOT_FOUND.
// Context timeouts map to DEADLINE_EXCEEDED.
// Anything else came from the store and maps to UNAVAILABLE.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, types.ErrDrugNotFound):
		code = codes.NotFound
	case errors.Is(err, types.ErrConditionParse),
		errors.Is(err, types.ErrFormulaParse),
		errors.Is(err, types.ErrUnsupportedUnit),
		errors.Is(err, types.ErrInvalidPatient):
		code = codes.InvalidArgument
	default:
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}

func invalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}
