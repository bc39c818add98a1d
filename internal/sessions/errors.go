package sessions

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/JaimeStill/docpages/internal/transform"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrPageNotFound    = errors.New("page not in session")
	ErrPageUnreadable  = errors.New("page image could not be decoded")
	ErrSaveInProgress  = errors.New("session save in progress")
	ErrTooManySessions = errors.New("too many open sessions")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSaveInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrPageUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, transform.ErrInvalidArgument), errors.Is(err, transform.ErrImageCodec):
		return transform.MapHTTPStatus(err)
	default:
		return documents.MapHTTPStatus(err)
	}
}
