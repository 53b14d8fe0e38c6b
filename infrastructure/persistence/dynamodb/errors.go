package dynamodb

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"teamcal-backend/pkg/errors"
)

// isConditionalCheckFailure reports whether err is a failed condition
// expression. Call sites map it themselves, because the same failure
// means "already exists" on a create and "does not exist" on an update
// or delete.
func isConditionalCheckFailure(err error) bool {
	var condFailed *types.ConditionalCheckFailedException
	return stderrors.As(err, &condFailed)
}

// storeError translates an SDK failure into a domain error. Conditional
// check failures must be handled by the call site before this runs.
func storeError(err error, operation string) error {
	// A timed-out call may or may not have been applied on the server.
	// The outcome is unknown, so the error is not marked retryable and
	// no retry is attempted here.
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.NewDomainError(
			errors.DomainTimeoutError,
			"STORE_TIMEOUT",
			"The store operation timed out and its outcome is unknown",
		).WithDetail("operation", operation).WithCause(err)
	}

	var throughputExceeded *types.ProvisionedThroughputExceededException
	if stderrors.As(err, &throughputExceeded) {
		return throttledError(operation, err)
	}

	var requestLimit *types.RequestLimitExceeded
	if stderrors.As(err, &requestLimit) {
		return throttledError(operation, err)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ProvisionedThroughputExceededException", "RequestLimitExceeded":
			return throttledError(operation, err)
		case "ResourceNotFoundException":
			// The table itself is missing, which is a deployment
			// problem rather than a data problem.
			return errors.NewDomainError(
				errors.DomainInfrastructureError,
				"STORE_UNAVAILABLE",
				"The data store table does not exist",
			).WithDetail("operation", operation).WithCause(err)
		}
	}

	return errors.NewDomainError(
		errors.DomainInfrastructureError,
		"STORE_UNAVAILABLE",
		"Failed to reach the data store",
	).WithRetryable(true).WithDetail("operation", operation).WithCause(err)
}

func throttledError(operation string, cause error) error {
	return errors.NewDomainError(
		errors.DomainInfrastructureError,
		"STORE_THROTTLED",
		"The data store throttled the request",
	).WithRetryable(true).WithDetail("operation", operation).WithCause(cause)
}
