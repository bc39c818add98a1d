// Package folders organizes an owner's documents into a folder tree.
package folders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/docpages/internal/records"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type Folder = records.Folder

var (
	ErrNotFound         = errors.New("folder not found")
	ErrDuplicate        = errors.New("folder name already exists")
	ErrInvalidReference = errors.New("invalid parent folder")
	ErrValidation       = errors.New("validation error")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidReference), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Command creates or replaces a folder. A nil ParentID places the folder
// at the root.
type Command struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

func (c Command) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 120)),
	)
}

type System interface {
	Handler() *Handler
	Create(ctx context.Context, owner uuid.UUID, cmd Command) (*Folder, error)
	List(ctx context.Context, owner uuid.UUID) ([]Folder, error)
	Find(ctx context.Context, owner, id uuid.UUID) (*Folder, error)
	Update(ctx context.Context, owner, id uuid.UUID, cmd Command) (*Folder, error)
	// Delete removes the folder and its descendants; their documents move
	// to the root.
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

type repo struct {
	recs   records.Folders
	logger *slog.Logger
}

func New(recs records.Folders, logger *slog.Logger) System {
	return &repo{
		recs:   recs,
		logger: logger.With("system", "folders"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Create(ctx context.Context, owner uuid.UUID, cmd Command) (*Folder, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	f, err := r.recs.CreateFolder(ctx, owner, records.FolderCommand{Name: cmd.Name, ParentID: cmd.ParentID})
	if err != nil {
		return nil, recordError(err)
	}
	return f, nil
}

func (r *repo) List(ctx context.Context, owner uuid.UUID) ([]Folder, error) {
	folders, err := r.recs.ListFolders(ctx, owner)
	if err != nil {
		return nil, recordError(err)
	}
	return folders, nil
}

func (r *repo) Find(ctx context.Context, owner, id uuid.UUID) (*Folder, error) {
	f, err := r.recs.FindFolder(ctx, owner, id)
	if err != nil {
		return nil, recordError(err)
	}
	return f, nil
}

func (r *repo) Update(ctx context.Context, owner, id uuid.UUID, cmd Command) (*Folder, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if cmd.ParentID != nil && *cmd.ParentID == id {
		return nil, fmt.Errorf("%w: folder cannot contain itself", ErrInvalidReference)
	}

	f, err := r.recs.UpdateFolder(ctx, owner, id, records.FolderCommand{Name: cmd.Name, ParentID: cmd.ParentID})
	if err != nil {
		return nil, recordError(err)
	}

	r.logger.Info("folder updated", "id", id, "owner_id", owner)
	return f, nil
}

func (r *repo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := r.recs.DeleteFolder(ctx, owner, id); err != nil {
		return recordError(err)
	}
	return nil
}

func recordError(err error) error {
	switch {
	case errors.Is(err, records.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, records.ErrDuplicate):
		return ErrDuplicate
	case errors.Is(err, records.ErrInvalidReference):
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	default:
		return err
	}
}
