package database

import (
	"testing"
)

func TestMigrationSource(t *testing.T) {
	ms, err := MigrationSource().FindMigrations()
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}
	if len(ms) == 0 {
		t.Fatal("expected at least one migration")
	}

	first := ms[0]
	if first.Id != "0001_create_report_runs.sql" {
		t.Errorf("unexpected first migration %q", first.Id)
	}
	if len(first.Up) == 0 || len(first.Down) == 0 {
		t.Error("expected both up and down statements")
	}
}
