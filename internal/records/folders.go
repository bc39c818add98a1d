package records

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/JaimeStill/docpages/pkg/query"
	"github.com/JaimeStill/docpages/pkg/repository"
	"github.com/google/uuid"
)

type Folders interface {
	CreateFolder(ctx context.Context, owner uuid.UUID, cmd FolderCommand) (*Folder, error)
	ListFolders(ctx context.Context, owner uuid.UUID) ([]Folder, error)
	FindFolder(ctx context.Context, owner, id uuid.UUID) (*Folder, error)
	// UpdateFolder renames and reparents. A parent that would create a
	// cycle is an invalid reference.
	UpdateFolder(ctx context.Context, owner, id uuid.UUID, cmd FolderCommand) (*Folder, error)
	// DeleteFolder removes the folder and its descendants. Documents inside
	// are kept and lose their folder reference.
	DeleteFolder(ctx context.Context, owner, id uuid.UUID) error
}

type folderRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewFolders(db *sql.DB, logger *slog.Logger) Folders {
	return &folderRepo{
		db:     db,
		logger: logger.With("system", "records", "records", "folders"),
	}
}

func (r *folderRepo) CreateFolder(ctx context.Context, owner uuid.UUID, cmd FolderCommand) (*Folder, error) {
	q := `INSERT INTO folders(id, owner_id, parent_id, name)
		VALUES($1, $2, $3, $4)
		RETURNING ` + folderColumns

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Folder, error) {
		if err := checkFolder(ctx, tx, owner, cmd.ParentID); err != nil {
			return Folder{}, err
		}
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), owner, cmd.ParentID, cmd.Name}, scanFolder)
	})

	if err != nil {
		return nil, mapError(err)
	}

	r.logger.Info("folder created", "id", f.ID, "owner_id", owner)
	return &f, nil
}

func (r *folderRepo) ListFolders(ctx context.Context, owner uuid.UUID) ([]Folder, error) {
	q, args := query.
		NewBuilder(folderProjection, query.SortField{Field: "Name"}).
		WhereEquals("OwnerId", owner).
		BuildAll()

	return repository.QueryMany(ctx, r.db, q, args, scanFolder)
}

func (r *folderRepo) FindFolder(ctx context.Context, owner, id uuid.UUID) (*Folder, error) {
	q, args := query.
		NewBuilder(folderProjection).
		WhereEquals("OwnerId", owner).
		BuildSingle("Id", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFolder)
	if err != nil {
		return nil, mapError(err)
	}
	return &f, nil
}

func (r *folderRepo) UpdateFolder(ctx context.Context, owner, id uuid.UUID, cmd FolderCommand) (*Folder, error) {
	cycleQ := `WITH RECURSIVE ancestors AS (
			SELECT id, parent_id FROM folders WHERE id = $1 AND owner_id = $2
			UNION
			SELECT f.id, f.parent_id FROM folders f JOIN ancestors a ON f.id = a.parent_id
		)
		SELECT EXISTS(SELECT 1 FROM ancestors WHERE id = $3)`

	updateQ := `UPDATE folders SET name = $1, parent_id = $2, updated_at = NOW()
		WHERE id = $3 AND owner_id = $4
		RETURNING ` + folderColumns

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Folder, error) {
		if cmd.ParentID != nil {
			if err := checkFolder(ctx, tx, owner, cmd.ParentID); err != nil {
				return Folder{}, err
			}

			var cycle bool
			if err := tx.QueryRowContext(ctx, cycleQ, *cmd.ParentID, owner, id).Scan(&cycle); err != nil {
				return Folder{}, err
			}
			if cycle {
				return Folder{}, ErrInvalidReference
			}
		}
		return repository.QueryOne(ctx, tx, updateQ, []any{cmd.Name, cmd.ParentID, id, owner}, scanFolder)
	})

	if err != nil {
		return nil, mapError(err)
	}
	return &f, nil
}

func (r *folderRepo) DeleteFolder(ctx context.Context, owner, id uuid.UUID) error {
	q := `DELETE FROM folders WHERE id = $1 AND owner_id = $2`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, id, owner)
	})

	if err != nil {
		return mapError(err)
	}

	r.logger.Info("folder deleted", "id", id, "owner_id", owner)
	return nil
}
