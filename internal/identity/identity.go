// Package identity resolves the owner a request acts for. Authentication
// happens upstream; the gateway forwards the authenticated owner in a
// header and every call below the HTTP edge receives it explicitly.
package identity

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

const Header = "X-Owner-ID"

var (
	ErrMissingOwner = errors.New("owner identity missing")
	ErrInvalidOwner = errors.New("owner identity invalid")
)

func FromRequest(r *http.Request) (uuid.UUID, error) {
	v := r.Header.Get(Header)
	if v == "" {
		return uuid.Nil, ErrMissingOwner
	}

	id, err := uuid.Parse(v)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidOwner, v)
	}
	return id, nil
}

func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrMissingOwner) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrInvalidOwner) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
