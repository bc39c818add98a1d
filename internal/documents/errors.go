package documents

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/docpages/internal/records"
	"github.com/JaimeStill/docpages/internal/transform"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrPageNotFound     = errors.New("page not found")
	ErrNoPages          = errors.New("document requires at least one page")
	ErrInvalidReference = errors.New("invalid folder reference")
	ErrConflict         = errors.New("document changed since it was loaded")
	ErrValidation       = errors.New("validation failed")
	// ErrRemoteIO wraps blob or record store failures.
	ErrRemoteIO = errors.New("remote store failure")
	// ErrConsistencyViolation reports a detected invariant break, such as a
	// page count that disagrees with the stored pages.
	ErrConsistencyViolation = errors.New("document consistency violation")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNoPages), errors.Is(err, ErrInvalidReference), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrRemoteIO):
		return http.StatusBadGateway
	case errors.Is(err, transform.ErrInvalidArgument), errors.Is(err, transform.ErrImageCodec):
		return transform.MapHTTPStatus(err)
	default:
		return http.StatusInternalServerError
	}
}

// recordError translates record store errors into this package's taxonomy.
// notFound lets callers distinguish a missing page from a missing document.
func recordError(err error, notFound error) error {
	switch {
	case errors.Is(err, records.ErrNotFound):
		return notFound
	case errors.Is(err, records.ErrConflict):
		return ErrConflict
	case errors.Is(err, records.ErrInvalidReference):
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	default:
		return fmt.Errorf("%w: %w", ErrRemoteIO, err)
	}
}

func blobError(err error) error {
	return fmt.Errorf("%w: %w", ErrRemoteIO, err)
}
