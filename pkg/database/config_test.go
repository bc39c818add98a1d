package database_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/docpages/pkg/database"
)

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &database.Config{Name: "docpages", User: "docpages"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("Port = %d, want 5432", cfg.Port)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("SSLMode = %q, want disable", cfg.SSLMode)
	}
	if cfg.ConnTimeoutDuration().Seconds() != 5 {
		t.Errorf("ConnTimeoutDuration() = %v, want 5s", cfg.ConnTimeoutDuration())
	}
}

func TestConfig_Finalize_RequiresNameAndUser(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
	}{
		{"missing name", database.Config{User: "u"}},
		{"missing user", database.Config{Name: "n"}},
		{"bad timeout", database.Config{Name: "n", User: "u", ConnTimeout: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("Finalize() error = nil, want error")
			}
		})
	}
}

func TestConfig_Finalize_Env(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_PORT", "6543")
	t.Setenv("TEST_DB_AUTO_MIGRATE", "true")

	cfg := &database.Config{Name: "n", User: "u"}
	env := &database.Env{Host: "TEST_DB_HOST", Port: "TEST_DB_PORT", AutoMigrate: "TEST_DB_AUTO_MIGRATE"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "db.internal" || cfg.Port != 6543 || !cfg.AutoMigrate {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestConfig_Dsn(t *testing.T) {
	cfg := &database.Config{Host: "h", Port: 1, Name: "n", User: "u", Password: "p", SSLMode: "require"}

	want := "host=h port=1 dbname=n user=u password=p sslmode=require"
	if got := cfg.Dsn(); got != want {
		t.Errorf("Dsn() = %q, want %q", got, want)
	}
}

func TestConfig_URL(t *testing.T) {
	cfg := &database.Config{Host: "h", Port: 5432, Name: "docs", User: "u", Password: "p@ss", SSLMode: "disable"}

	got := cfg.URL()
	if !strings.HasPrefix(got, "pgx5://u:p%40ss@h:5432/docs") {
		t.Errorf("URL() = %q", got)
	}
	if !strings.HasSuffix(got, "sslmode=disable") {
		t.Errorf("URL() = %q, missing sslmode", got)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := &database.Config{Host: "a", Port: 1, Name: "n"}
	cfg.Merge(&database.Config{Host: "b", AutoMigrate: true})

	if cfg.Host != "b" || cfg.Port != 1 || cfg.Name != "n" || !cfg.AutoMigrate {
		t.Errorf("Merge() result = %+v", cfg)
	}
}
