// Package tags labels documents with owner-defined tags.
package tags

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/JaimeStill/docpages/internal/records"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type Tag = records.Tag

var (
	ErrNotFound         = errors.New("tag not found")
	ErrDuplicate        = errors.New("tag name already exists")
	ErrInvalidReference = errors.New("unknown document or tag")
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

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Command struct {
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

func (c Command) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 64)),
		validation.Field(&c.Color, validation.NilOrNotEmpty, validation.Match(hexColor)),
	)
}

type System interface {
	Handler() *Handler
	Create(ctx context.Context, owner uuid.UUID, cmd Command) (*Tag, error)
	List(ctx context.Context, owner uuid.UUID) ([]Tag, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	// Attach is idempotent.
	Attach(ctx context.Context, owner, documentID, tagID uuid.UUID) error
	Detach(ctx context.Context, owner, documentID, tagID uuid.UUID) error
	DocumentTags(ctx context.Context, owner, documentID uuid.UUID) ([]Tag, error)
}

type repo struct {
	recs   records.Tags
	logger *slog.Logger
}

func New(recs records.Tags, logger *slog.Logger) System {
	return &repo{
		recs:   recs,
		logger: logger.With("system", "tags"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Create(ctx context.Context, owner uuid.UUID, cmd Command) (*Tag, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	t, err := r.recs.CreateTag(ctx, owner, records.TagCommand{Name: cmd.Name, Color: cmd.Color})
	if err != nil {
		return nil, recordError(err)
	}
	return t, nil
}

func (r *repo) List(ctx context.Context, owner uuid.UUID) ([]Tag, error) {
	tags, err := r.recs.ListTags(ctx, owner)
	if err != nil {
		return nil, recordError(err)
	}
	return tags, nil
}

func (r *repo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := r.recs.DeleteTag(ctx, owner, id); err != nil {
		return recordError(err)
	}
	return nil
}

func (r *repo) Attach(ctx context.Context, owner, documentID, tagID uuid.UUID) error {
	if err := r.recs.AttachTag(ctx, owner, documentID, tagID); err != nil {
		return recordError(err)
	}
	r.logger.Info("tag attached", "document_id", documentID, "tag_id", tagID)
	return nil
}

func (r *repo) Detach(ctx context.Context, owner, documentID, tagID uuid.UUID) error {
	if err := r.recs.DetachTag(ctx, owner, documentID, tagID); err != nil {
		return recordError(err)
	}
	return nil
}

func (r *repo) DocumentTags(ctx context.Context, owner, documentID uuid.UUID) ([]Tag, error) {
	tags, err := r.recs.DocumentTags(ctx, owner, documentID)
	if err != nil {
		return nil, recordError(err)
	}
	return tags, nil
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
