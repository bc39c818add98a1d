package tags

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docpages/internal/identity"
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
		logger: logger.With("handler", "tags"),
	}
}

// Routes serves the tag collection and the per-document tag links.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Schemas: Spec.Schemas(),
		Children: []routes.Group{
			{
				Prefix:      "/tags",
				Tags:        []string{"Tags"},
				Description: "Document tags",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
					{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: Spec.Create},
					{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: Spec.Delete},
				},
			},
			{
				Prefix: "/documents/{id}/tags",
				Tags:   []string{"Tags"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.DocumentTags, OpenAPI: Spec.DocumentTags},
					{Method: "PUT", Pattern: "/{tagId}", Handler: h.Attach, OpenAPI: Spec.Attach},
					{Method: "DELETE", Pattern: "/{tagId}", Handler: h.Detach, OpenAPI: Spec.Detach},
				},
			},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner, err := identity.FromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, identity.MapHTTPStatus(err), err)
		return
	}

	tags, err := h.sys.List(r.Context(), owner)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, tags)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := identity.FromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, identity.MapHTTPStatus(err), err)
		return
	}

	cmd, err := handlers.DecodeJSON[Command](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	tag, err := h.sys.Create(r.Context(), owner, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, tag)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.ids(w, r, "id")
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), owner, id[0]); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DocumentTags(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.ids(w, r, "id")
	if !ok {
		return
	}

	tags, err := h.sys.DocumentTags(r.Context(), owner, id[0])
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, tags)
}

func (h *Handler) Attach(w http.ResponseWriter, r *http.Request) {
	owner, ids, ok := h.ids(w, r, "id", "tagId")
	if !ok {
		return
	}

	if err := h.sys.Attach(r.Context(), owner, ids[0], ids[1]); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Detach(w http.ResponseWriter, r *http.Request) {
	owner, ids, ok := h.ids(w, r, "id", "tagId")
	if !ok {
		return
	}

	if err := h.sys.Detach(r.Context(), owner, ids[0], ids[1]); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ids resolves the owner and parses each named path value as a UUID.
func (h *Handler) ids(w http.ResponseWriter, r *http.Request, names ...string) (uuid.UUID, []uuid.UUID, bool) {
	owner, err := identity.FromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, identity.MapHTTPStatus(err), err)
		return uuid.Nil, nil, false
	}

	out := make([]uuid.UUID, len(names))
	for i, name := range names {
		id, err := uuid.Parse(r.PathValue(name))
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return uuid.Nil, nil, false
		}
		out[i] = id
	}
	return owner, out, true
}
