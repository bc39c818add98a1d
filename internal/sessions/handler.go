package sessions

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docpages/internal/identity"
	"github.com/JaimeStill/docpages/internal/transform"
	"github.com/JaimeStill/docpages/pkg/handlers"
	"github.com/JaimeStill/docpages/pkg/routes"
	"github.com/google/uuid"
)

type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "sessions"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/sessions",
		Tags:        []string{"Sessions"},
		Description: "Page edit sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Open, OpenAPI: Spec.Open},
			{Method: "GET", Pattern: "/{id}", Handler: h.Get, OpenAPI: Spec.Get},
			{Method: "POST", Pattern: "/{id}/save", Handler: h.Save, OpenAPI: Spec.Save},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Close, OpenAPI: Spec.Close},
		},
		Children: []routes.Group{
			{
				Prefix: "/{id}/pages/{pageId}",
				Tags:   []string{"Sessions"},
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/operations", Handler: h.Apply, OpenAPI: Spec.Apply},
					{Method: "POST", Pattern: "/revert", Handler: h.Revert, OpenAPI: Spec.Revert},
					{Method: "GET", Pattern: "/preview", Handler: h.Preview, OpenAPI: Spec.Preview},
				},
			},
		},
		Schemas: Spec.Schemas(),
	}
}

type openRequest struct {
	DocumentID uuid.UUID `json:"document_id"`
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	owner, err := identity.FromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, identity.MapHTTPStatus(err), err)
		return
	}

	req, err := handlers.DecodeJSON[openRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	view, err := h.sys.Open(r.Context(), owner, req.DocumentID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, view)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	view, err := h.sys.Get(owner, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	owner, id, pageID, ok := h.pageTarget(w, r)
	if !ok {
		return
	}

	op, err := handlers.DecodeJSON[transform.Operation](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	view, err := h.sys.Apply(owner, id, pageID, op)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) Revert(w http.ResponseWriter, r *http.Request) {
	owner, id, pageID, ok := h.pageTarget(w, r)
	if !ok {
		return
	}

	view, err := h.sys.Revert(owner, id, pageID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	owner, id, pageID, ok := h.pageTarget(w, r)
	if !ok {
		return
	}

	data, err := h.sys.Preview(owner, id, pageID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	handlers.RespondBytes(w, "image/jpeg", "", data)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	result, err := h.sys.Save(r.Context(), owner, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.sys.Close(owner, id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

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

func (h *Handler) pageTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, uuid.UUID, bool) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}

	pageID, err := uuid.Parse(r.PathValue("pageId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return owner, id, pageID, true
}
