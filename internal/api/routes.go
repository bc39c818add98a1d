package api

import (
	"net/http"

	"github.com/JaimeStill/docpages/pkg/openapi"
	"github.com/JaimeStill/docpages/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, basePath string, spec *openapi.Spec, domain *Domain) {
	routes.Register(
		mux,
		basePath,
		spec,
		domain.Documents.Handler().Routes(),
		domain.Sessions.Handler().Routes(),
		domain.Compose.Handler().Routes(),
		domain.Imports.Handler().Routes(),
		domain.Folders.Handler().Routes(),
		domain.Tags.Handler().Routes(),
	)
}
