package imports

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/docpages/internal/documents"
)

var (
	ErrNoFiles         = errors.New("no files provided")
	ErrInvalidFile     = errors.New("invalid file")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrInvalidPDF      = errors.New("invalid pdf")
	ErrRenderFailed    = errors.New("page render failed")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoFiles), errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrInvalidPDF):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRenderFailed):
		return http.StatusInternalServerError
	default:
		return documents.MapHTTPStatus(err)
	}
}
