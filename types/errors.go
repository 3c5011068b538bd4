package types

import "errors"

var (
	// ErrNotFound is returned when a document is not in the held snapshot
	ErrNotFound = errors.New("document not found")

	// ErrStale is returned by a load or search whose response arrived after
	// a newer request was dispatched; its result was discarded
	ErrStale = errors.New("superseded by a newer request")

	// ErrClosed is returned by a controller after Close
	ErrClosed = errors.New("controller closed")
)

// fieldErrorer is implemented by errors that carry per-field messages
type fieldErrorer interface {
	FieldErrors() FieldErrors
}

// FieldErrorsOf extracts the per-field messages carried anywhere in err's
// chain. It returns nil when there are none.
func FieldErrorsOf(err error) FieldErrors {
	var fe fieldErrorer
	if errors.As(err, &fe) {
		return fe.FieldErrors()
	}
	return nil
}
