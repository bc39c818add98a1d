package compose

import (
	"archive/zip"
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

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
		logger: logger.With("handler", "compose"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/compose",
		Tags:        []string{"Compose"},
		Description: "Merge, extract, and export documents",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/merge/preview", Handler: h.PlanMerge, OpenAPI: Spec.PlanMerge},
			{Method: "POST", Pattern: "/merge", Handler: h.Merge, OpenAPI: Spec.Merge},
			{Method: "POST", Pattern: "/extract", Handler: h.Extract, OpenAPI: Spec.Extract},
			{Method: "POST", Pattern: "/export/{id}", Handler: h.Export, OpenAPI: Spec.Export},
		},
		Schemas: Spec.Schemas(),
	}
}

type planRequest struct {
	DocumentIDs []uuid.UUID `json:"document_ids"`
}

func (h *Handler) PlanMerge(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	req, err := handlers.DecodeJSON[planRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	plan, err := h.sys.PlanMerge(r.Context(), owner, req.DocumentIDs)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, plan)
}

func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.DecodeJSON[MergeCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	detail, err := h.sys.Merge(r.Context(), owner, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, detail)
}

func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.DecodeJSON[ExtractCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	detail, err := h.sys.Extract(r.Context(), owner, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, detail)
}

// Export writes a single output file as is; several files are bundled
// into a zip archive.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	format := Format(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatPDF
	}

	out, err := h.sys.Export(r.Context(), owner, id, format)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("X-Export-Pages", strconv.Itoa(out.Pages))
	w.Header().Set("X-Export-Skipped", strconv.Itoa(out.Skipped))

	if len(out.Files) == 1 {
		f := out.Files[0]
		handlers.RespondBytes(w, f.ContentType, f.Name, f.Data)
		return
	}

	archive, err := zipFiles(out.Files)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondBytes(w, "application/zip", out.Name+".zip", archive)
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	owner, err := identity.FromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, identity.MapHTTPStatus(err), err)
		return uuid.Nil, false
	}
	return owner, true
}

func zipFiles(files []File) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Store})
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(f.Data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
