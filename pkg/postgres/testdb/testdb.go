// Package testdb runs the library schema in a throwaway PostgreSQL container.
//
// One container is shared by every test of a test binary, so tests that use
// it must not run in parallel. Stop it from TestMain:
//
//	func TestMain(m *testing.M) {
//	    code := m.Run()
//	    testdb.Terminate()
//	    os.Exit(code)
//	}
package testdb

import (
	"context"
	"embed"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Astemirdum/library-management/pkg/postgres"
)

const image = "postgres:16-alpine"

type Postgres struct {
	Container *tcpostgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

var (
	shared     *Postgres
	sharedErr  error
	sharedOnce sync.Once
)

// SetupShared starts the container on first use and applies migrations.
// Skipped with -short.
func SetupShared(t *testing.T, migrations embed.FS) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests are skipped in short mode")
	}
	sharedOnce.Do(func() {
		shared, sharedErr = start(context.Background(), migrations)
	})
	require.NoError(t, sharedErr)
	return shared
}

func start(ctx context.Context, migrations embed.FS) (*Postgres, error) {
	container, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase("library"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "tcpostgres.Run")
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, errors.Wrap(err, "ConnectionString")
	}

	pool, err := postgres.NewPostgresDBFromDSN(ctx, dsn, 20, migrations)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &Postgres{Container: container, Pool: pool, DSN: dsn}, nil
}

// Terminate closes the pool and removes the shared container.
func Terminate() {
	if shared == nil {
		return
	}
	shared.Pool.Close()
	_ = shared.Container.Terminate(context.Background())
}

// Truncate empties tables and resets their identities.
func Truncate(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err, "truncate %v", tables)
}
