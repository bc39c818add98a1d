package imports

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/docpages/internal/identity"
	"github.com/JaimeStill/docpages/pkg/handlers"
	"github.com/JaimeStill/docpages/pkg/routes"
	"github.com/google/uuid"
)

type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "imports"),
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/imports",
		Tags:        []string{"Imports"},
		Description: "Create documents from captured images and PDF files",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/images", Handler: h.Images, OpenAPI: Spec.Images},
			{Method: "POST", Pattern: "/pdf", Handler: h.PDF, OpenAPI: Spec.PDF},
		},
	}
}

func (h *Handler) Images(w http.ResponseWriter, r *http.Request) {
	owner, form, ok := h.parse(w, r)
	if !ok {
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFiles)
		return
	}

	files := make([][]byte, len(headers))
	for i, fh := range headers {
		data, err := readFile(fh)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		files[i] = data
	}

	name := form.name
	if name == "" {
		name = baseName(headers[0].Filename)
	}

	detail, err := h.sys.Images(r.Context(), owner, ImagesCommand{
		Name:     name,
		FolderID: form.folderID,
		Files:    files,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, detail)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	owner, form, ok := h.parse(w, r)
	if !ok {
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFiles)
		return
	}

	data, err := readFile(headers[0])
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if ct := detectContentType(headers[0].Header.Get("Content-Type"), data); ct != "application/pdf" {
		handlers.RespondError(w, h.logger, http.StatusUnsupportedMediaType, ErrUnsupportedType)
		return
	}

	name := form.name
	if name == "" {
		name = baseName(headers[0].Filename)
	}

	detail, err := h.sys.PDF(r.Context(), owner, PDFCommand{
		Name:     name,
		FolderID: form.folderID,
		Data:     data,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, detail)
}

type formFields struct {
	name     string
	folderID *uuid.UUID
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (uuid.UUID, formFields, bool) {
	owner, err := identity.FromRequest(r)
	if err != nil {
		handlers.RespondError(w, h.logger, identity.MapHTTPStatus(err), err)
		return uuid.Nil, formFields{}, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || r.ContentLength > h.maxUploadSize {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		} else {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		}
		return uuid.Nil, formFields{}, false
	}

	fields := formFields{name: strings.TrimSpace(r.FormValue("name"))}
	if v := r.FormValue("folder_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return uuid.Nil, formFields{}, false
		}
		fields.folderID = &id
	}
	return owner, fields, true
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, ErrInvalidFile
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, ErrInvalidFile
	}
	return data, nil
}

func detectContentType(header string, data []byte) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func baseName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}
