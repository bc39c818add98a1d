package main

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

//go:embed seeds/*.json
var seedFiles embed.FS

func init() {
	registerSeeder(&FolderSeeder{})
	registerSeeder(&TagSeeder{})
}

type FolderSeed struct {
	Name     string       `json:"name"`
	Children []FolderSeed `json:"children,omitempty"`
}

type TagSeed struct {
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

type LibrarySeedData struct {
	Folders []FolderSeed `json:"folders"`
	Tags    []TagSeed    `json:"tags"`
}

// seedFile overrides the embedded library.json when set.
var seedFile string

func loadSeedData() (*LibrarySeedData, error) {
	var content []byte
	var err error

	if seedFile != "" {
		content, err = os.ReadFile(seedFile)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	} else {
		content, err = seedFiles.ReadFile("seeds/library.json")
		if err != nil {
			return nil, fmt.Errorf("read embedded seed file: %w", err)
		}
	}

	var data LibrarySeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

type FolderSeeder struct{}

func (s *FolderSeeder) Name() string { return "folders" }

func (s *FolderSeeder) Description() string {
	return "Seeds a starter folder tree"
}

// Seed is idempotent: existing folders with the same name and parent are reused.
func (s *FolderSeeder) Seed(ctx context.Context, tx *sql.Tx, owner uuid.UUID) error {
	data, err := loadSeedData()
	if err != nil {
		return err
	}
	return s.saveAll(ctx, tx, owner, nil, data.Folders)
}

func (s *FolderSeeder) saveAll(ctx context.Context, tx *sql.Tx, owner uuid.UUID, parent *uuid.UUID, folders []FolderSeed) error {
	for _, f := range folders {
		id, err := s.saveFolder(ctx, tx, owner, parent, f.Name)
		if err != nil {
			return fmt.Errorf("save folder %s: %w", f.Name, err)
		}
		if err := s.saveAll(ctx, tx, owner, &id, f.Children); err != nil {
			return err
		}
	}
	return nil
}

func (s *FolderSeeder) saveFolder(ctx context.Context, tx *sql.Tx, owner uuid.UUID, parent *uuid.UUID, name string) (uuid.UUID, error) {
	const query = `
		INSERT INTO folders (id, owner_id, parent_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT ON CONSTRAINT folders_unique_name DO UPDATE SET
			updated_at = folders.updated_at
		RETURNING id`

	var id uuid.UUID
	err := tx.QueryRowContext(ctx, query, uuid.New(), owner, parent, name).Scan(&id)
	return id, err
}

type TagSeeder struct{}

func (s *TagSeeder) Name() string { return "tags" }

func (s *TagSeeder) Description() string {
	return "Seeds starter tags"
}

func (s *TagSeeder) Seed(ctx context.Context, tx *sql.Tx, owner uuid.UUID) error {
	data, err := loadSeedData()
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO tags (id, owner_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (owner_id, name) DO UPDATE SET
			color = EXCLUDED.color`

	for _, t := range data.Tags {
		if _, err := tx.ExecContext(ctx, query, uuid.New(), owner, t.Name, t.Color); err != nil {
			return fmt.Errorf("save tag %s: %w", t.Name, err)
		}
	}
	return nil
}
