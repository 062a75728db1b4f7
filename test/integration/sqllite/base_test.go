package sqllite

import (
	"database/sql"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/vendhub/vendhub/internal/migrations"

	_ "github.com/mattn/go-sqlite3"
)

var dbSeq int32 = 0

// runTestWithSetup gives each test its own SQLite file with the full schema
// applied, and points the dialect helpers at SQLLITE via the environment.
func runTestWithSetup(t *testing.T, testFunc func(t *testing.T, db *sql.DB)) {
	seq := atomic.AddInt32(&dbSeq, 1)
	filename := fmt.Sprintf("vendhub-test-%d.db", seq)
	defer os.Remove(filename)

	os.Setenv("VHM_DATABASE_TYPE", "SQLLITE")
	os.Setenv("VHM_DATABASE_SQLLITE_FILE_NAME", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	schema, err := migrations.FS.ReadFile("sqllite3/000001_init.up.sql")
	if err != nil {
		t.Fatalf("Failed to read embedded schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	testFunc(t, db)
}
