package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	dir := repoMigrationsDir(t)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", e.Name(), err)
		}
		s := string(b)
		if !strings.Contains(s, "-- +goose Up") {
			t.Fatalf("%s missing '-- +goose Up'", e.Name())
		}
		if !strings.Contains(s, "-- +goose Down") {
			t.Fatalf("%s missing '-- +goose Down'", e.Name())
		}
	}
}

func TestBooksMigration_StoresDocumentsAsJSONB(t *testing.T) {
	b, err := os.ReadFile(filepath.Join(repoMigrationsDir(t), "00001_create_books.sql"))
	if err != nil {
		t.Fatalf("read books migration: %v", err)
	}
	s := string(b)
	for _, want := range []string{"doc        JSONB", "jsonb_path_ops", "id         UUID PRIMARY KEY"} {
		if !strings.Contains(s, want) {
			t.Errorf("books migration missing %q", want)
		}
	}
}
