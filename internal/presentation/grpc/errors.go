package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/loan-lifecycle/internal/application/usecase"
	vo "github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{vo.ErrNotFound, codes.NotFound},
	{vo.ErrItemNotFound, codes.NotFound},

	{vo.ErrInvalidLoanParameters, codes.InvalidArgument},
	{vo.ErrInvalidApplicant, codes.InvalidArgument},
	{vo.ErrUnknownLoanType, codes.InvalidArgument},
	{vo.ErrUnknownPurpose, codes.InvalidArgument},
	{vo.ErrUnknownDocument, codes.InvalidArgument},
	{vo.ErrUnknownRejectionReason, codes.InvalidArgument},
	{vo.ErrMissingRejectionReason, codes.InvalidArgument},
	{vo.ErrInvalidValue, codes.InvalidArgument},
	{usecase.ErrInvalidRequest, codes.InvalidArgument},

	{vo.ErrConsentIncomplete, codes.FailedPrecondition},
	{vo.ErrApprovalPreconditionUnmet, codes.FailedPrecondition},
	{vo.ErrScoreImmutable, codes.FailedPrecondition},
	{vo.ErrCaseAlreadyDecided, codes.FailedPrecondition},
	{vo.ErrItemAlreadyReviewed, codes.FailedPrecondition},
	{vo.ErrApplicationSubmitted, codes.FailedPrecondition},
	{vo.ErrApplicationNotSubmitted, codes.FailedPrecondition},

	{vo.ErrInvalidStatusTransition, codes.FailedPrecondition},
	{vo.ErrLoanNotActive, codes.FailedPrecondition},
	{vo.ErrInvalidPaymentAmount, codes.InvalidArgument},
	{vo.ErrAdminApprovalNotRequired, codes.PermissionDenied},

	{vo.ErrDuplicateCase, codes.AlreadyExists},
	{vo.ErrVersionConflict, codes.Aborted},

	{context.Canceled, codes.Canceled},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
}

// toStatus converts a use-case error into a gRPC status error. Errors that
// already carry a status pass through; anything unrecognised is Internal.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			return status.Error(m.code, err.Error())
		}
	}
	return status.Error(codes.Internal, "internal error")
}
