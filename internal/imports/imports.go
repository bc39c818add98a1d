// Package imports turns captured images and PDF files into new documents.
// It is the only producer of documents from outside bytes; every page it
// hands the repository has already been decoded.
package imports

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/JaimeStill/docpages/internal/config"
	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/JaimeStill/docpages/internal/transform"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Creator is the slice of the document repository imports need.
type Creator interface {
	Create(ctx context.Context, owner uuid.UUID, cmd documents.CreateCommand) (*documents.Detail, error)
}

// ImagesCommand creates one page per file, in order.
type ImagesCommand struct {
	Name     string
	FolderID *uuid.UUID
	Files    [][]byte
}

type PDFCommand struct {
	Name     string
	FolderID *uuid.UUID
	Data     []byte
}

type System interface {
	Handler() *Handler
	Images(ctx context.Context, owner uuid.UUID, cmd ImagesCommand) (*documents.Detail, error)
	// PDF rasterizes every page of the file at the configured density.
	PDF(ctx context.Context, owner uuid.UUID, cmd PDFCommand) (*documents.Detail, error)
}

type importer struct {
	docs          Creator
	raster        Rasterizer
	pages         config.PagesConfig
	maxUploadSize int64
	logger        *slog.Logger
}

func New(docs Creator, raster Rasterizer, pages config.PagesConfig, maxUploadSize int64, logger *slog.Logger) System {
	return &importer{
		docs:          docs,
		raster:        raster,
		pages:         pages,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("system", "imports"),
	}
}

func (i *importer) Handler() *Handler {
	return NewHandler(i, i.logger, i.maxUploadSize)
}

func (i *importer) Images(ctx context.Context, owner uuid.UUID, cmd ImagesCommand) (*documents.Detail, error) {
	if len(cmd.Files) == 0 {
		return nil, ErrNoFiles
	}

	imgs, err := decode(cmd.Files)
	if err != nil {
		return nil, err
	}

	detail, err := i.docs.Create(ctx, owner, documents.CreateCommand{
		Name:     cmd.Name,
		FolderID: cmd.FolderID,
		Pages:    imgs,
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("images imported", "id", detail.Document.ID, "page_count", len(imgs))
	return detail, nil
}

func (i *importer) PDF(ctx context.Context, owner uuid.UUID, cmd PDFCommand) (*documents.Detail, error) {
	if len(cmd.Data) == 0 {
		return nil, ErrNoFiles
	}

	count, err := api.PageCount(bytes.NewReader(cmd.Data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}

	path, cleanup, err := spool(cmd.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer cleanup()

	rendered, err := i.raster.Rasterize(ctx, path, count, i.pages.PDFDPI)
	if err != nil {
		return nil, err
	}

	imgs, err := decode(rendered)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	detail, err := i.docs.Create(ctx, owner, documents.CreateCommand{
		Name:     cmd.Name,
		FolderID: cmd.FolderID,
		Pages:    imgs,
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("pdf imported", "id", detail.Document.ID, "page_count", count, "dpi", i.pages.PDFDPI)
	return detail, nil
}

// decode fails on the first unreadable file; a capture with a broken page
// is rejected whole.
func decode(files [][]byte) ([]*image.NRGBA, error) {
	imgs := make([]*image.NRGBA, len(files))
	for n, data := range files {
		img, _, err := transform.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", n+1, err)
		}
		imgs[n] = img
	}
	return imgs, nil
}
