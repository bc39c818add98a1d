package transform

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrImageCodec      = errors.New("image codec error")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrImageCodec):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
