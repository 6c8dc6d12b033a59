package migration

import (
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/stackspledge/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test migration %s: %v", name, err)
		}
	}
	return dir
}

func newTestRunner(t *testing.T, files map[string]string) (*Runner, *sql.DB, string) {
	t.Helper()
	db := setupTestDB(t)
	dir := setupTestMigrations(t, files)
	return NewRunner(db, os.DirFS(dir), DriverSQLite), db, dir
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return count == 1
}

func TestGetCurrentVersion(t *testing.T) {
	runner, _, _ := newTestRunner(t, map[string]string{"001_test.sql": "CREATE TABLE test (id INTEGER);"})

	if v, err := runner.GetCurrentVersion(); err != nil || v != 0 {
		t.Fatalf("GetCurrentVersion() = %d, %v; want 0", v, err)
	}
	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if v, err := runner.GetCurrentVersion(); err != nil || v != 5 {
		t.Errorf("GetCurrentVersion() = %d, %v; want 5", v, err)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	runner, _, _ := newTestRunner(t, map[string]string{
		"003_another.sql": "CREATE TABLE test2 (id INTEGER);",
		"001_init.sql":    "CREATE TABLE test1 (id INTEGER);",
		"002_update.sql":  "ALTER TABLE test1 ADD COLUMN name TEXT;",
		"README.md":       "ignored",
	})

	got, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}
	want := []struct {
		version int
		name    string
	}{{1, "init"}, {2, "update"}, {3, "another"}}
	if len(got) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Version != w.version || got[i].Name != w.name {
			t.Errorf("migration %d = %d/%s, want %d/%s", i, got[i].Version, got[i].Name, w.version, w.name)
		}
	}
}

func TestReadMigrationFiles_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{name: "no underscore", files: map[string]string{"001init.sql": "SELECT 1;"}, wantErr: "invalid migration filename"},
		{name: "zero version", files: map[string]string{"000_init.sql": "SELECT 1;"}, wantErr: "version must be at least 1"},
		{name: "not a number", files: map[string]string{"abc_init.sql": "SELECT 1;"}, wantErr: "invalid version number"},
		{name: "duplicate", files: map[string]string{"001_init.sql": "SELECT 1;", "001_other.sql": "SELECT 1;"}, wantErr: "duplicate migration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, _, _ := newTestRunner(t, tt.files)
			_, err := runner.ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadMigrationFiles() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyMigrationsIncremental(t *testing.T) {
	runner, db, dir := newTestRunner(t, map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
	})

	var logs []string
	count, err := runner.ApplyMigrations(func(s string) { logs = append(logs, s) })
	if err != nil || count != 1 {
		t.Fatalf("ApplyMigrations (1st) = %d, %v; want 1", count, err)
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}

	if err := os.WriteFile(filepath.Join(dir, "002_posts.sql"), []byte("CREATE TABLE posts (id INTEGER PRIMARY KEY);"), 0644); err != nil {
		t.Fatalf("failed to write new migration: %v", err)
	}

	st, err := runner.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.Current != 1 || st.Latest != 2 || len(st.Pending) != 1 {
		t.Errorf("Status() = %+v, want current 1, latest 2, one pending", st)
	}

	count, err = runner.ApplyMigrations(nil)
	if err != nil || count != 1 {
		t.Fatalf("ApplyMigrations (2nd) = %d, %v; want 1", count, err)
	}
	if !tableExists(t, db, "users") || !tableExists(t, db, "posts") {
		t.Error("expected users and posts tables")
	}

	count, err = runner.ApplyMigrations(nil)
	if err != nil || count != 0 {
		t.Errorf("ApplyMigrations (3rd) = %d, %v; want no-op", count, err)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	runner, db, _ := newTestRunner(t, map[string]string{
		"001_init.sql": `
			CREATE TABLE users (id INTEGER PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	})

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}
	if v, _ := runner.GetCurrentVersion(); v != 0 {
		t.Errorf("expected version 0 after failed migration, got %d", v)
	}
	if tableExists(t, db, "users") {
		t.Error("table should not exist after failed migration")
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	runner, _, _ := newTestRunner(t, map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);",
	})

	if err := runner.SetVersion(10); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Error("ValidateVersion should have failed with newer database version")
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Error("ApplyMigrations should have failed with newer database version")
	}
}

func TestBind(t *testing.T) {
	q := "INSERT INTO kv (key, value) VALUES (?, ?)"
	if got := NewRunner(nil, nil, DriverSQLite).bind(q); got != q {
		t.Errorf("sqlite bind = %q", got)
	}
	if got := NewRunner(nil, nil, DriverPostgres).bind(q); got != "INSERT INTO kv (key, value) VALUES ($1, $2)" {
		t.Errorf("postgres bind = %q", got)
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}
	db := setupTestDB(t)
	runner := NewRunner(db, sub, DriverSQLite)

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	for _, table := range []string{"kv", "pledge_cache", "transactions"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s was not created", table)
		}
	}

	pgSub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}
	pgFiles, err := NewRunner(nil, pgSub, DriverPostgres).ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles(postgres) failed: %v", err)
	}
	sqliteFiles, _ := runner.ReadMigrationFiles()
	if len(pgFiles) != len(sqliteFiles) {
		t.Errorf("postgres has %d migrations, sqlite has %d", len(pgFiles), len(sqliteFiles))
	}
}
