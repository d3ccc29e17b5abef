// Package integration exercises the ledger against a real PostgreSQL
// instance started with testcontainers. All tests share one container;
// each test opens its own connection and truncates the ledger tables
// before running.
package integration

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/posledger/backend/internal/infrastructure/migration"
)

const pgImage = "postgres:16-alpine"

var sharedPG struct {
	mu        sync.Mutex
	container testcontainers.Container
	dsn       string
}

// LedgerDB is one test's connection to the shared database.
type LedgerDB struct {
	DB *gorm.DB
	t  *testing.T
}

// NewSharedTestDB connects to the shared PostgreSQL container, starting
// it and applying migrations on first use. The connection is closed when
// the test finishes; the container stays up for the rest of the package.
func NewSharedTestDB(t *testing.T) *LedgerDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	sharedPG.mu.Lock()
	defer sharedPG.mu.Unlock()

	if sharedPG.container == nil {
		startSharedContainer(t)
	}

	db, err := gorm.Open(gormpostgres.Open(sharedPG.dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	t.Cleanup(func() { sqlDB.Close() })

	return &LedgerDB{DB: db, t: t}
}

// CleanTables empties the ledger tables. Payments go first so the
// foreign key to credit_sales never blocks the truncate.
func (d *LedgerDB) CleanTables() {
	d.t.Helper()

	for _, table := range []string{"credit_payments", "credit_sales", "users"} {
		err := d.DB.Exec("TRUNCATE TABLE " + table + " CASCADE").Error
		require.NoError(d.t, err, "truncate %s", table)
	}
}

func startSharedContainer(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, pgImage,
		tcpostgres.WithDatabase("posledger_it"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger-it"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "container connection string")

	migrateUp(t, dsn)

	sharedPG.container = container
	sharedPG.dsn = dsn
}

// migrateUp applies the repository's migrations through the same
// migration wrapper the migrate CLI uses.
func migrateUp(t *testing.T, dsn string) {
	t.Helper()

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer sqlDB.Close()

	m, err := migration.New(sqlDB, migrationsDir(t), zap.NewNop())
	require.NoError(t, err, "build migrator")
	require.NoError(t, m.Up(), "apply migrations")
}

// migrationsDir resolves the migrations directory relative to this file,
// which sits two levels below the repository root.
func migrationsDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok, "resolve caller path")
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// stopSharedContainer terminates the shared container, if one was started.
func stopSharedContainer() {
	sharedPG.mu.Lock()
	defer sharedPG.mu.Unlock()

	if sharedPG.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sharedPG.container.Terminate(ctx)
	sharedPG.container = nil
	sharedPG.dsn = ""
}
