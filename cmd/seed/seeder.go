// Package main provides the seed command for populating an owner's library
// with starter folders and tags. Seeders run individually or together
// within a single transaction.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

type Seeder interface {
	Name() string
	Description() string

	// Seed runs inside tx so several seeders commit or roll back together.
	Seed(ctx context.Context, tx *sql.Tx, owner uuid.UUID) error
}

var seeders = map[string]Seeder{}

func registerSeeder(s Seeder) {
	seeders[s.Name()] = s
}

func getSeeder(name string) (Seeder, bool) {
	s, ok := seeders[name]
	return s, ok
}

// listSeeders returns registered seeders sorted by name.
func listSeeders() []Seeder {
	result := make([]Seeder, 0, len(seeders))
	for _, s := range seeders {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

func runSeeder(ctx context.Context, db *sql.DB, owner uuid.UUID, name string) error {
	seeder, ok := getSeeder(name)
	if !ok {
		return fmt.Errorf("seeder not found: %s", name)
	}
	return inTx(ctx, db, func(tx *sql.Tx) error {
		if err := seeder.Seed(ctx, tx, owner); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
		return nil
	})
}

// runAllSeeders rolls back every seeder when any one fails.
func runAllSeeders(ctx context.Context, db *sql.DB, owner uuid.UUID) error {
	return inTx(ctx, db, func(tx *sql.Tx) error {
		for _, s := range listSeeders() {
			if err := s.Seed(ctx, tx, owner); err != nil {
				return fmt.Errorf("seed %s: %w", s.Name(), err)
			}
		}
		return nil
	})
}

func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
