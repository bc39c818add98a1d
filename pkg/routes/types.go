package routes

import (
	"net/http"

	"github.com/JaimeStill/docpages/pkg/openapi"
)

// Mux is satisfied by *http.ServeMux.
type Mux interface {
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
}

// Spec is the subset of *openapi.Spec used during registration.
type Spec interface {
	AddOperation(path, method string, op *openapi.Operation)
	AddSchemas(schemas map[string]*openapi.Schema)
}
