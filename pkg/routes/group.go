// Package routes registers grouped handlers on a mux and documents them in an OpenAPI spec.
package routes

import (
	"net/http"

	"github.com/JaimeStill/docpages/pkg/openapi"
)

// Group collects routes under a shared prefix. Children nest beneath the parent prefix.
type Group struct {
	Prefix      string
	Tags        []string
	Description string
	Routes      []Route
	Children    []Group
	Schemas     map[string]*openapi.Schema
}

type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
