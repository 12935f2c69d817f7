//go:build integration

// Package pgtest starts a throwaway PostgreSQL container with the
// application schema applied.
package pgtest

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"library-backend/internal/infrastructure/migration"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DB is a migrated database plus a pool connected to it.
type DB struct {
	Pool *pgxpool.Pool
	DSN  string
}

// New starts postgres:16-alpine, applies migrations/ and registers cleanup.
func New(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("library_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migration.Open(dsn, migrationsPath())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &DB{Pool: pool, DSN: dsn}
}

// migrationsPath resolves the repository's migrations directory from this file.
func migrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// SeedUser inserts an account and returns its id.
func (db *DB) SeedUser(t *testing.T, username, role string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, 'x', $3) RETURNING id`,
		username, username+"@example.com", role,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedClient inserts a client with the given 11 digit PESEL.
func (db *DB) SeedClient(t *testing.T, first, last, pesel string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO clients (first_name, last_name, pesel, email, phone_number)
		 VALUES ($1, $2, $3, $4, '500600700') RETURNING id`,
		first, last, pesel, pesel+"@example.com",
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedBook inserts a book with stock copies on the shelf.
func (db *DB) SeedBook(t *testing.T, title string, stock int) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO books (title, author, release_date, genre, price, stock)
		 VALUES ($1, 'Stanislaw Lem', '1961-01-01', 'Science Fiction', 29.90, $2) RETURNING id`,
		title, stock,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// Stock reads a book's current stock.
func (db *DB) Stock(t *testing.T, bookID uuid.UUID) int {
	t.Helper()
	var stock int
	err := db.Pool.QueryRow(context.Background(), `SELECT stock FROM books WHERE id = $1`, bookID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

// Count runs a COUNT(*) query.
func (db *DB) Count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}
