package domain

import "errors"

// Sentinel errors used throughout the application.
// Operations wrap them together with the underlying cause, so callers can
// match the kind with errors.Is and still read the diagnostic detail.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	// ErrEncoding is returned by the codec when a value has no DAG-JSON form.
	ErrEncoding = errors.New("encoding error")

	// ErrEncodeRecordFailed: the outbound record could not be serialized.
	// Raised before any network call; retrying the same record will not help.
	ErrEncodeRecordFailed = errors.New("encode record failed")

	// ErrQueueOperationFailed: the transport call failed or was not accepted.
	ErrQueueOperationFailed = errors.New("queue operation failed")

	// ErrDatabaseOperation: a view query failed or returned an unreadable row.
	ErrDatabaseOperation = errors.New("database operation failed")

	ErrInvalidLimit = errors.New("limit must be a positive count")
	ErrInvalidStage = errors.New("invalid stage: must be pending, signed, approved, or rejected")
	ErrMissingPiece = errors.New("piece must be a defined content identifier")
)
