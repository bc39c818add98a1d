package documents

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/docpages/internal/identity"
	"github.com/JaimeStill/docpages/internal/records"
	"github.com/JaimeStill/docpages/pkg/handlers"
	"github.com/JaimeStill/docpages/pkg/pagination"
	"github.com/JaimeStill/docpages/pkg/routes"
	"github.com/google/uuid"
)

type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "documents"),
		pagination: pagination,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/documents",
		Tags:        []string{"Documents"},
		Description: "Documents and their ordered pages",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: Spec.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: Spec.Delete},
			{Method: "GET", Pattern: "/{id}/pages", Handler: h.Pages, OpenAPI: Spec.Pages},
			{Method: "GET", Pattern: "/{id}/pages/{pageId}/image", Handler: h.PageImage, OpenAPI: Spec.PageImage},
			{Method: "GET", Pattern: "/{id}/pages/{pageId}/thumbnail", Handler: h.PageThumbnail, OpenAPI: Spec.PageThumbnail},
		},
		Schemas: Spec.Schemas(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, err := identity.FromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, identity.MapHTTPStatus(err), err)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := records.DocumentFiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), owner, page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Find(r.Context(), owner, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.DecodeJSON[UpdateCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Update(r.Context(), owner, id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), owner, id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Pages(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	detail, err := h.sys.Pages(r.Context(), owner, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, detail)
}

func (h *Handler) PageImage(w http.ResponseWriter, r *http.Request) {
	h.pageBytes(w, r, h.sys.PageImage)
}

func (h *Handler) PageThumbnail(w http.ResponseWriter, r *http.Request) {
	h.pageBytes(w, r, h.sys.PageThumbnail)
}

type pageReader func(ctx context.Context, owner, id, pageID uuid.UUID, fresh bool) ([]byte, error)

// pageBytes serves a page blob. ?fresh=true bypasses the read cache.
func (h *Handler) pageBytes(w http.ResponseWriter, r *http.Request, read pageReader) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	pageID, err := uuid.Parse(r.PathValue("pageId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	fresh, _ := strconv.ParseBool(r.URL.Query().Get("fresh"))

	data, err := read(r.Context(), owner, id, pageID, fresh)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Cache-Control", "private, no-cache")
	handlers.RespondBytes(w, pageContentType, "", data)
}

// target resolves the owner and the {id} path value.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	owner, err := identity.FromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, identity.MapHTTPStatus(err), err)
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}
