package testutil

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/storage/database"
)

// PrepareDB opens & migrates the test database, then empties every table.
// Skipped unless ENV=TEST, since a PostgreSQL server is needed.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() || strings.ToUpper(os.Getenv("ENV")) != "TEST" {
		t.Skip("database tests need ENV=TEST and a PostgreSQL server")
	}

	conf := core.NewConfig()
	if err := database.CreateIfNotExist(conf); err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	ResetDB(t, db)
	return db
}

// ResetDB empties every table.
func ResetDB(t *testing.T, db core.DBExecutor) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), `TRUNCATE admins, access_codes, goals, scores, subjects, students, teachers, schools RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("ResetDB(): %v", err)
	}
}
