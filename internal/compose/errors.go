package compose

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/docpages/internal/documents"
)

var (
	// ErrInsufficientInput is returned when a merge names fewer than two
	// distinct documents.
	ErrInsufficientInput = errors.New("merge requires at least two documents")
	ErrEmptySelection    = errors.New("no pages selected")
	// ErrNoExportableContent is returned when every selected page failed
	// to decode.
	ErrNoExportableContent = errors.New("no decodable pages")
	ErrUnknownPage         = errors.New("page not part of the selected documents")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientInput),
		errors.Is(err, ErrEmptySelection),
		errors.Is(err, ErrUnknownPage),
		errors.Is(err, ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoExportableContent):
		return http.StatusUnprocessableEntity
	default:
		return documents.MapHTTPStatus(err)
	}
}
