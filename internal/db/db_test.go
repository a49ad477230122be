package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	d, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return d
}

func TestOpen_CreatesSchema(t *testing.T) {
	d := openTestDB(t, filepath.Join(t.TempDir(), "nested", "studio.db"))
	defer d.Close()

	for _, table := range []string{"jobs", "_migrations"} {
		var name string
		err := d.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_WALEnabled(t *testing.T) {
	d := openTestDB(t, filepath.Join(t.TempDir(), "studio.db"))
	defer d.Close()

	var mode string
	if err := d.Conn().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %s, want wal", mode)
	}
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.db")
	openTestDB(t, path).Close()

	d := openTestDB(t, path)
	defer d.Close()

	var count int
	if err := d.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations error = %v", err)
	}
	if count != 1 {
		t.Errorf("migration count = %d, want 1", count)
	}
}

func TestOpen_FailsInterruptedJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.db")

	d1 := openTestDB(t, path)
	_, err := d1.Conn().Exec(`
		INSERT INTO jobs (id, kind, status, created_at, updated_at)
		VALUES ('running-job', 'remix', 'running', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z'),
		       ('done-job', 'remix', 'completed', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')
	`)
	if err != nil {
		t.Fatalf("insert jobs error = %v", err)
	}
	d1.Close()

	d2 := openTestDB(t, path)
	defer d2.Close()

	var status, errMsg string
	if err := d2.Conn().QueryRow("SELECT status, error FROM jobs WHERE id = 'running-job'").Scan(&status, &errMsg); err != nil {
		t.Fatalf("query job error = %v", err)
	}
	if status != "failed" || errMsg != "interrupted by restart" {
		t.Errorf("running job = %s/%s, want failed/interrupted by restart", status, errMsg)
	}

	if err := d2.Conn().QueryRow("SELECT status FROM jobs WHERE id = 'done-job'").Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != "completed" {
		t.Errorf("completed job status = %s", status)
	}
}
