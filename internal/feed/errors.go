package feed

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidIdentifier is returned when a user, video or target id does not parse.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrStoreUnavailable wraps any failure of the underlying store (timeouts,
	// connection errors, open circuit). It is never retried by the engine.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidPage is returned for negative limit or offset.
	ErrInvalidPage = errors.New("invalid page")

	// ErrUnknownVideo is returned by writes that reference a video that does not exist.
	ErrUnknownVideo = errors.New("unknown video")

	// ErrInvalidVote is returned for vote values other than -1, 0 and 1.
	ErrInvalidVote = errors.New("vote value must be -1, 0 or 1")
)

// DecodeError reports a store row that cannot be mapped onto model.Video.
// It signals a data/schema mismatch and is not retried.
type DecodeError struct {
	Field string
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("decode %s %q", e.Field, e.Value)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err carries a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// StoreError classifies a failure coming back from the store. Decode errors
// and sentinel errors defined by this package pass through with op context;
// everything else becomes ErrStoreUnavailable.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDecodeError(err) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrUnknownVideo) ||
		errors.Is(err, ErrInvalidVote) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// ParseID parses a user-supplied identifier. kind names the field for the error message.
func ParseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, kind, raw)
	}
	return id, nil
}
