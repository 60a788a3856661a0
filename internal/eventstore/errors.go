package eventstore

import (
	"git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.StorageError("could not open run history database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.StorageError("failed to initialize run history schema").Build()

	// ErrEventAppendFailed indicates appending an event failed.
	ErrEventAppendFailed = errors.StorageError("failed to append run event").Build()

	// ErrEventQueryFailed indicates querying events failed.
	ErrEventQueryFailed = errors.StorageError("failed to query run events").Build()

	// ErrMarshalPayloadFailed indicates JSON marshaling of an event payload failed.
	ErrMarshalPayloadFailed = errors.StorageError("failed to marshal event payload").Build()
)

// wrap attaches cause to one of the sentinels while keeping errors.Is matching.
func wrap(sentinel *errors.ClassifiedError, cause error) error {
	return errors.WrapError(cause, sentinel.Category(), sentinel.Message()).Build()
}
