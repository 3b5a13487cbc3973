// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"database/sql"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/rs/zerolog"
)

// SetupServer returns test server that cleans up database after each integration test.
//
// Redis is left out unless an option sets it back; the cache and the run lock
// have their own tests against miniredis.
func SetupServer(t *testing.T, opts ...func(*configpkg.Config)) *httpserver.Server {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Fatalf(`configpkg.Load("../../configs") returned error: %v`, err)
	}

	config.RedisAddress = ""
	for _, opt := range opts {
		opt(&config)
	}

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.GetLogger(config)

	db := SetupDB(t, config.DBDriver, config.DBSource)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	t.Cleanup(func() { server.Close() })

	return server
}

// Flush flushes asset tables without droping. Seeded asset types are kept.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec(`TRUNCATE TABLE asset_changes, asset_holdings, assets CASCADE`); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// SetupTX starts a transaction that is rolled back once the test is complete.
func SetupTX(t *testing.T, driver, source string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}
