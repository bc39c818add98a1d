package records

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/JaimeStill/docpages/pkg/query"
	"github.com/JaimeStill/docpages/pkg/repository"
	"github.com/google/uuid"
)

type Tags interface {
	CreateTag(ctx context.Context, owner uuid.UUID, cmd TagCommand) (*Tag, error)
	ListTags(ctx context.Context, owner uuid.UUID) ([]Tag, error)
	DeleteTag(ctx context.Context, owner, id uuid.UUID) error
	// AttachTag is idempotent. Both records must belong to owner.
	AttachTag(ctx context.Context, owner, documentID, tagID uuid.UUID) error
	DetachTag(ctx context.Context, owner, documentID, tagID uuid.UUID) error
	DocumentTags(ctx context.Context, owner, documentID uuid.UUID) ([]Tag, error)
}

type tagRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTags(db *sql.DB, logger *slog.Logger) Tags {
	return &tagRepo{
		db:     db,
		logger: logger.With("system", "records", "records", "tags"),
	}
}

func (r *tagRepo) CreateTag(ctx context.Context, owner uuid.UUID, cmd TagCommand) (*Tag, error) {
	q := `INSERT INTO tags(id, owner_id, name, color)
		VALUES($1, $2, $3, $4)
		RETURNING ` + tagColumns

	t, err := repository.QueryOne(ctx, r.db, q, []any{uuid.New(), owner, cmd.Name, cmd.Color}, scanTag)
	if err != nil {
		return nil, mapError(err)
	}

	r.logger.Info("tag created", "id", t.ID, "owner_id", owner)
	return &t, nil
}

func (r *tagRepo) ListTags(ctx context.Context, owner uuid.UUID) ([]Tag, error) {
	q, args := query.
		NewBuilder(tagProjection, query.SortField{Field: "Name"}).
		WhereEquals("OwnerId", owner).
		BuildAll()

	return repository.QueryMany(ctx, r.db, q, args, scanTag)
}

func (r *tagRepo) DeleteTag(ctx context.Context, owner, id uuid.UUID) error {
	q := `DELETE FROM tags WHERE id = $1 AND owner_id = $2`
	if err := repository.ExecExpectOne(ctx, r.db, q, id, owner); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *tagRepo) AttachTag(ctx context.Context, owner, documentID, tagID uuid.UUID) error {
	q := `INSERT INTO document_tags(document_id, tag_id)
		SELECT d.id, t.id FROM documents d, tags t
		WHERE d.id = $1 AND d.owner_id = $3 AND t.id = $2 AND t.owner_id = $3
		ON CONFLICT DO NOTHING`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := r.checkOwned(ctx, tx, owner, documentID, tagID); err != nil {
			return struct{}{}, err
		}
		_, err := tx.ExecContext(ctx, q, documentID, tagID, owner)
		return struct{}{}, err
	})

	return mapError(err)
}

func (r *tagRepo) DetachTag(ctx context.Context, owner, documentID, tagID uuid.UUID) error {
	q := `DELETE FROM document_tags dt
		USING documents d
		WHERE dt.document_id = d.id AND d.owner_id = $3
			AND dt.document_id = $1 AND dt.tag_id = $2`

	if err := repository.ExecExpectOne(ctx, r.db, q, documentID, tagID, owner); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *tagRepo) DocumentTags(ctx context.Context, owner, documentID uuid.UUID) ([]Tag, error) {
	q := `SELECT t.id, t.owner_id, t.name, t.color, t.created_at
		FROM tags t
		JOIN document_tags dt ON dt.tag_id = t.id
		WHERE dt.document_id = $1 AND t.owner_id = $2
		ORDER BY t.name`

	return repository.QueryMany(ctx, r.db, q, []any{documentID, owner}, scanTag)
}

// checkOwned distinguishes a missing document (not found) from a tag
// owned by someone else (invalid reference).
func (r *tagRepo) checkOwned(ctx context.Context, tx *sql.Tx, owner, documentID, tagID uuid.UUID) error {
	var docOK, tagOK bool
	err := tx.QueryRowContext(ctx,
		`SELECT
			EXISTS(SELECT 1 FROM documents WHERE id = $1 AND owner_id = $3),
			EXISTS(SELECT 1 FROM tags WHERE id = $2 AND owner_id = $3)`,
		documentID, tagID, owner,
	).Scan(&docOK, &tagOK)
	if err != nil {
		return err
	}

	switch {
	case !docOK:
		return ErrNotFound
	case !tagOK:
		return ErrInvalidReference
	}
	return nil
}
